package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/log"
)

func newListCmd(a *app) *cobra.Command {
	var month, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses in insertion order",
		Long: `List expenses in insertion order, optionally narrowed to a month
and/or a category.

Example:
  ledger list --month 2024-03 --category FOOD`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.ledger.Store()
			var (
				ym  core.YearMonth
				err error
			)
			if month != "" {
				if ym, err = core.ParseYearMonth(month); err != nil {
					return err
				}
			}

			var records []core.Expense
			switch {
			case category != "":
				c, err := parseCategory(category)
				if err != nil {
					return err
				}
				records = store.ByCategory(c)
				if month != "" {
					records = inMonth(records, ym)
				}
			case month != "":
				records = store.ByMonth(ym.Year, ym.Month)
			default:
				records = store.List()
			}

			out := cmd.OutOrStdout()
			writeExpenses(out, records)
			fmt.Fprintf(out, "%d expenses, total %s\n", len(records), money(core.Sum(records)))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "only this month, YYYY-MM")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	return cmd
}

func newTotalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Print the sum of all expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.ledger.Store()
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %s (%d expenses)\n", money(store.Total()), store.Len())
			return nil
		},
	}
}

func newMonthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "month YYYY-MM",
		Short: "Summarise one month by category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ym, err := core.ParseYearMonth(args[0])
			if err != nil {
				return err
			}
			ov := a.reports.MonthOverview(ym)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s across %d expenses\n", ov.YearMonth, money(ov.Total), ov.Count)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, ca := range ov.ByCategory {
				fmt.Fprintf(tw, "%s\t%s\n", ca.Category.DisplayName(), money(ca.Amount))
			}
			return tw.Flush()
		},
	}
}

func newTrendCmd(a *app) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print monthly totals up to the current month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := months
			if !cmd.Flags().Changed("months") {
				n = a.cfg.TrendMonths
			}
			if n < 1 {
				return fmt.Errorf("--months must be at least 1, got %d", n)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, p := range a.reports.Trend(n) {
				fmt.Fprintf(tw, "%s\t%s\n", p.YearMonth, money(p.Total))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&months, "months", 0, "number of months (default $TREND_MONTHS)")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "categories",
		Short:       "List the expense categories",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipLedger: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range core.Categories() {
				fmt.Fprintf(tw, "%s\t%s\n", c.Name(), c.DisplayName())
			}
			return tw.Flush()
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Push the ledger to the configured mirrors",
		Long: `Push the whole ledger to every configured mirror. Today that is the
Google Sheets tab named by GOOGLE_SPREADSHEET_ID and GOOGLE_SHEET_NAME.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.Export(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d expenses to %v\n", a.ledger.Store().Len(), a.ledger.Mirrors())
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Replace the ledger with the content of a mirror",
		Long: `Read the ledger back from the first mirror that supports it and save it
in place of the local copy. Rows must carry the ids written by "ledger export".

Requires GOOGLE_SPREADSHEET_ID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.FromContext(cmd.Context())
			changed, err := a.ledger.Import(cmd.Context())
			if err != nil {
				return err
			}
			if !changed {
				logger.Debug("Import found nothing new")
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger already up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d expenses\n", a.ledger.Store().Len())
			return nil
		},
	}
}

func writeExpenses(w io.Writer, records []core.Expense) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tDATE\tCATEGORY\tDESCRIPTION")
	for _, e := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID(), e.Name, money(e.Amount), e.Date, e.Category.Name(), e.Description)
	}
	tw.Flush()
}

func inMonth(records []core.Expense, ym core.YearMonth) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, e := range records {
		if core.YearMonthOf(e.Date) == ym {
			out = append(out, e)
		}
	}
	return out
}

func money(d decimal.Decimal) string {
	return "$" + core.FormatAmount(d)
}
