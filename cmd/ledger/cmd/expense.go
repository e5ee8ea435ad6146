package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ledger/internal/core"
)

func newAddCmd(a *app) *cobra.Command {
	var date, description string

	cmd := &cobra.Command{
		Use:   "add NAME AMOUNT CATEGORY",
		Short: "Record a new expense",
		Long: `Record a new expense and save the ledger.

CATEGORY is a machine name as printed by "ledger categories".
The date defaults to today.

Example:
  ledger add "Lunch, Fri" 12.50 FOOD --date 2024-03-01 -d "with the team"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return err
			}
			category, err := parseCategory(args[2])
			if err != nil {
				return err
			}
			day := core.DateOf(a.now())
			if date != "" {
				if day, err = core.ParseDate(date); err != nil {
					return err
				}
			}

			stored, err := a.ledger.Add(cmd.Context(), core.NewExpense(args[0], amount, day, category, description))
			if err != nil {
				return err
			}
			if err := a.ledger.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s\n", stored.ID(), stored)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-form note")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var name, amount, date, category, description string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of an existing expense",
		Long: `Change fields of an existing expense. Only the flags given are applied.

Example:
  ledger update 3f2c... --amount 14.00 --category ENTERTAINMENT`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok := a.ledger.Store().Get(args[0])
			if !ok {
				return fmt.Errorf("expense %s not found", args[0])
			}

			flags := cmd.Flags()
			var err error
			if flags.Changed("name") {
				e.Name = name
			}
			if flags.Changed("amount") {
				if e.Amount, err = core.ParseAmount(amount); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				if e.Date, err = core.ParseDate(date); err != nil {
					return err
				}
			}
			if flags.Changed("category") {
				if e.Category, err = parseCategory(category); err != nil {
					return err
				}
			}
			if flags.Changed("description") {
				e.Description = description
			}

			ok, err = a.ledger.Update(cmd.Context(), e)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("expense %s not found", args[0])
			}
			if err := a.ledger.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s\n", e.ID(), e)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&date, "date", "", "new date, YYYY-MM-DD")
	cmd.Flags().StringVar(&category, "category", "", "new category machine name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.ledger.Remove(cmd.Context(), args[0]) {
				return fmt.Errorf("expense %s not found", args[0])
			}
			if err := a.ledger.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

// parseCategory accepts machine names in any case.
func parseCategory(s string) (core.Category, error) {
	return core.ParseCategory(strings.ToUpper(strings.TrimSpace(s)))
}
