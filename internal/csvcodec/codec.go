// Package csvcodec converts expense collections to and from the ledger's
// comma separated file format.
//
// The format is a header row followed by one row per expense:
//
//	ID,Name,Amount,Date,Category,Description
//
// A field is wrapped in double quotes only when it contains a comma, a
// double quote, a carriage return or a newline; quotes inside a quoted field
// are doubled. Every other value, including values with surrounding spaces,
// is written verbatim.
package csvcodec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"ledger/internal/core"
)

const fieldCount = 6

// Header lists the column names, in file order.
var Header = []string{"ID", "Name", "Amount", "Date", "Category", "Description"}

// DecodeError reports a row that could not be turned into an expense.
type DecodeError struct {
	Line  int // physical line the row starts on, 1-based
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("field %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("line %d: field %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Row formats e as the six column values of a data row, unquoted.
func Row(e core.Expense) []string {
	return []string{
		e.ID(),
		e.Name,
		core.FormatAmount(e.Amount),
		e.Date.String(),
		e.Category.Name(),
		e.Description,
	}
}

// Encode writes the header and one row per record, in the given order.
func Encode(w io.Writer, records []core.Expense) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, Header); err != nil {
		return err
	}
	for _, e := range records {
		if err := writeRow(bw, Row(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(f)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func quote(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Decode reads a header row followed by expense rows. Rows with fewer than
// six fields are skipped. Any other malformed row aborts the whole decode
// with a *DecodeError and no records are returned.
func Decode(r io.Reader) ([]core.Expense, error) {
	sc := newScanner(r)

	if _, _, err := sc.next(); err != nil {
		if errors.Is(err, io.EOF) {
			return []core.Expense{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	out := []core.Expense{}
	for {
		fields, line, err := sc.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(fields) < fieldCount {
			continue
		}
		e, err := parseRow(fields, line)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

var (
	// ErrShortRow is returned by ParseRow for rows with fewer than six values.
	ErrShortRow = errors.New("row has fewer than six fields")
	// ErrMissingID rejects rows with a blank ID column. Such a row would be
	// matched by any expense that was never assigned an id.
	ErrMissingID = errors.New("missing id")
)

// ParseRow is the inverse of Row. Errors carry no line number.
func ParseRow(fields []string) (core.Expense, error) {
	if len(fields) < fieldCount {
		return core.Expense{}, ErrShortRow
	}
	return parseRow(fields, 0)
}

func parseRow(fields []string, line int) (core.Expense, error) {
	if strings.TrimSpace(fields[0]) == "" {
		return core.Expense{}, &DecodeError{Line: line, Field: Header[0], Value: fields[0], Err: ErrMissingID}
	}
	amount, err := core.ParseStoredAmount(fields[2])
	if err != nil {
		return core.Expense{}, &DecodeError{Line: line, Field: Header[2], Value: fields[2], Err: err}
	}
	date, err := core.ParseDate(fields[3])
	if err != nil {
		return core.Expense{}, &DecodeError{Line: line, Field: Header[3], Value: fields[3], Err: err}
	}
	category, err := core.ParseCategory(fields[4])
	if err != nil {
		return core.Expense{}, &DecodeError{Line: line, Field: Header[4], Value: fields[4], Err: err}
	}
	return core.Restore(fields[0], core.NewExpense(fields[1], amount, date, category, fields[5])), nil
}

// scanner splits input into logical rows. A double quote outside quotes
// opens a quoted section; inside one, a doubled quote is a literal quote and
// a single quote closes it. Commas and newlines only separate outside quotes.
type scanner struct {
	r    *bufio.Reader
	line int
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReader(r), line: 1}
}

// next returns the fields of the next row and the line it started on. It
// returns io.EOF once the input holds no more rows. Input is scanned byte by
// byte so field content passes through unchanged, valid UTF-8 or not.
func (s *scanner) next() ([]string, int, error) {
	start := s.line
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
		started  bool
		pendCR   bool
	)

	flushCR := func() {
		if pendCR {
			field.WriteByte('\r')
			pendCR = false
		}
	}

	for {
		c, err := s.r.ReadByte()
		if errors.Is(err, io.EOF) {
			if !started {
				return nil, start, io.EOF
			}
			return append(fields, field.String()), start, nil
		}
		if err != nil {
			return nil, start, err
		}
		started = true

		if c == '\n' {
			s.line++
			if !inQuotes {
				pendCR = false
				return append(fields, field.String()), start, nil
			}
		}
		flushCR()

		switch {
		case c == '"' && inQuotes:
			nc, err := s.r.ReadByte()
			switch {
			case err == nil && nc == '"':
				field.WriteByte('"')
			case err == nil:
				inQuotes = false
				if uerr := s.r.UnreadByte(); uerr != nil {
					return nil, start, uerr
				}
			case errors.Is(err, io.EOF):
				inQuotes = false
			default:
				return nil, start, err
			}
		case c == '"':
			inQuotes = true
		case c == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		case c == '\r' && !inQuotes:
			pendCR = true
		default:
			field.WriteByte(c)
		}
	}
}
