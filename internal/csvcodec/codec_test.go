package csvcodec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ledger/internal/core"
)

func record(id, name, amount string, date core.Date, c core.Category, desc string) core.Expense {
	return core.Restore(id, core.NewExpense(name, core.MustAmount(amount), date, c, desc))
}

func encodeString(t *testing.T, records []core.Expense) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.String()
}

func TestEncodeFormat(t *testing.T) {
	got := encodeString(t, []core.Expense{
		record("id-1", "Lunch, Fri", "12.5", core.NewDate(2024, 3, 1), core.Food, `a "quick" bite`),
		record("id-2", "Rent", "1200", core.NewDate(2024, 2, 28), core.Housing, ""),
		record("id-3", "  padded ", "3.456", core.NewDate(2024, 1, 9), core.Personal, "two\nlines"),
	})
	want := "ID,Name,Amount,Date,Category,Description\n" +
		"id-1,\"Lunch, Fri\",12.50,2024-03-01,FOOD,\"a \"\"quick\"\" bite\"\n" +
		"id-2,Rent,1200.00,2024-02-28,HOUSING,\n" +
		"id-3,  padded ,3.46,2024-01-09,PERSONAL,\"two\nlines\"\n"
	if got != want {
		t.Fatalf("unexpected encoding:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeEmptyCollection(t *testing.T) {
	if got := encodeString(t, nil); got != "ID,Name,Amount,Date,Category,Description\n" {
		t.Fatalf("unexpected encoding %q", got)
	}
}

func TestRoundTripSpecialCharacters(t *testing.T) {
	in := []core.Expense{
		record("a", "Lunch, Fri", "12.5", core.NewDate(2024, 3, 1), core.Food, `a "quick" bite`),
		record("b", `"quoted"`, "0.1", core.NewDate(2023, 12, 31), core.Travel, "line one\nline two, with comma"),
		record("c", "plain", "99.99", core.NewDate(2024, 2, 29), core.Other, ""),
		record("d", " lead and trail ", "007", core.NewDate(2020, 1, 1), core.Education, `""`),
		record("e", "cr\r\nlf", "1", core.NewDate(2021, 5, 5), core.Shopping, ",,,"),
		record("f", "12345", "-3", core.NewDate(2021, 5, 6), core.Entertainment, "\n"),
	}

	out, err := Decode(strings.NewReader(encodeString(t, in)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d records, got %d", len(in), len(out))
	}
	for i := range in {
		if !out[i].Equal(in[i]) {
			t.Fatalf("record %d mismatch:\n got %+v\nwant %+v", i, out[i], in[i])
		}
	}
}

func TestRoundTripRoundsAmountToCents(t *testing.T) {
	in := []core.Expense{record("a", "x", "3.14159", core.NewDate(2024, 1, 1), core.Food, "")}
	out, err := Decode(strings.NewReader(encodeString(t, in)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out[0].Amount.Equal(core.MustAmount("3.14")) {
		t.Fatalf("expected 3.14, got %s", out[0].Amount)
	}
}

func TestDecodeSkipsHeaderWithoutValidating(t *testing.T) {
	in := "whatever,header,this,is\nid-1,Coffee,3.20,2024-03-02,FOOD,\n"
	out, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].ID() != "id-1" || out[0].Name != "Coffee" {
		t.Fatalf("unexpected records %+v", out)
	}
}

func TestDecodeSkipsShortRows(t *testing.T) {
	in := strings.Join([]string{
		"ID,Name,Amount,Date,Category,Description",
		"",
		"id-1,too,few,fields",
		"id-2,Bus,2.80,2024-03-02,TRANSPORTATION,ticket",
		"id-3,Extra,1.00,2024-03-03,OTHER,desc,ignored,columns",
		"",
	}, "\n")
	out, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].ID() != "id-2" || out[1].ID() != "id-3" || out[1].Description != "desc" {
		t.Fatalf("unexpected records %+v", out)
	}
}

func TestDecodeCRLF(t *testing.T) {
	in := "ID,Name,Amount,Date,Category,Description\r\nid-1,Tea,1.5,2024-03-02,FOOD,hot\r\nid-2,Cab,9,2024-03-03,TRAVEL,\r\n"
	out, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].Description != "hot" || out[1].Description != "" {
		t.Fatalf("unexpected records %+v", out)
	}
}

func TestDecodeQuoteToggling(t *testing.T) {
	in := "h\nid-1,a\"b,c\"d,1,2024-03-02,FOOD,\"\"\n"
	out, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Name != "ab,cd" || out[0].Description != "" {
		t.Fatalf("unexpected records %+v", out)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name  string
		row   string
		field string
		err   error
	}{
		{"unknown category", "id-1,x,1.00,2024-03-02,GROCERIES,", "Category", core.ErrUnknownCategory},
		{"display name as category", "id-1,x,1.00,2024-03-02,Food & Dining,", "Category", core.ErrUnknownCategory},
		{"bad amount", "id-1,x,twelve,2024-03-02,FOOD,", "Amount", core.ErrInvalidAmount},
		{"bad date", "id-1,x,1.00,02/03/2024,FOOD,", "Date", core.ErrInvalidDate},
		{"decimal comma", "id-1,x,\"12,50\",2024-03-02,FOOD,", "Amount", core.ErrInvalidAmount},
		{"missing id", ",x,1.00,2024-03-02,FOOD,", "ID", ErrMissingID},
		{"blank id", "  ,x,1.00,2024-03-02,FOOD,", "ID", ErrMissingID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := "ID,Name,Amount,Date,Category,Description\n" +
				"ok-1,fine,1.00,2024-03-01,FOOD,\n" +
				tc.row + "\n"
			out, err := Decode(strings.NewReader(in))
			if err == nil {
				t.Fatalf("expected error")
			}
			if out != nil {
				t.Fatalf("expected no partial result, got %v", out)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			var de *DecodeError
			if !errors.As(err, &de) || de.Field != tc.field || de.Line != 3 {
				t.Fatalf("unexpected decode error %#v", de)
			}
		})
	}
}

func TestRoundTripPreservesRawBytes(t *testing.T) {
	in := []core.Expense{
		record("a", "a\xffb", "1", core.NewDate(2024, 1, 1), core.Other, "\xc3\x28,caf\u00e9"),
		record("b", "\u20ac\"\x80", "2", core.NewDate(2024, 1, 2), core.Food, ""),
	}
	out, err := Decode(strings.NewReader(encodeString(t, in)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].Description != in[i].Description {
			t.Errorf("record %d: got %q/%q, want %q/%q",
				i, out[i].Name, out[i].Description, in[i].Name, in[i].Description)
		}
	}
}

func TestDecodeErrorLineCountsQuotedNewlines(t *testing.T) {
	in := "ID,Name,Amount,Date,Category,Description\n" +
		"id-1,\"multi\nline\",1.00,2024-03-01,FOOD,\n" +
		"id-2,x,1.00,2024-03-01,NOPE,\n"
	_, err := Decode(strings.NewReader(in))
	var de *DecodeError
	if !errors.As(err, &de) || de.Line != 4 {
		t.Fatalf("expected error on line 4, got %v", err)
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	out, err := Decode(strings.NewReader(""))
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("expected empty collection, got %v, %v", out, err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	in := []core.Expense{
		record("id-1", "Lunch, Fri", "12.5", core.NewDate(2024, 3, 1), core.Food, `a "quick" bite`),
	}
	if err := Save(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Lunch, Fri" || out[0].Description != `a "quick" bite` {
		t.Fatalf("unexpected records %+v", out)
	}

	// a second save replaces the whole file
	if err := Save(nil, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err = Load(path)
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty file after overwrite, got %v, %v", out, err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	out, err := Load(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty collection, got %v", out)
	}
}

func TestLoadUnknownCategoryFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	content := "ID,Name,Amount,Date,Category,Description\n" +
		"id-1,Coffee,3.20,2024-03-02,FOOD,\n" +
		"id-2,Mystery,1.00,2024-03-02,ALIENS,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := Load(path)
	if err == nil || !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected unknown category error, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no records, got %v", out)
	}
}

func TestSaveIntoMissingDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing-dir", "expenses.csv")
	if err := Save([]core.Expense{record("a", "x", "1", core.NewDate(2024, 1, 1), core.Food, "")}, path); err == nil {
		t.Fatalf("expected error saving into a missing directory")
	}
}

func TestDefaultPath(t *testing.T) {
	if resolve("") != DefaultPath || resolve("x.csv") != "x.csv" {
		t.Fatalf("unexpected path resolution")
	}
}

func TestParseRow(t *testing.T) {
	want := record("id-9", "Bus", "2.40", core.NewDate(2024, 5, 2), core.Transportation, "")
	got, err := ParseRow(Row(want))
	if err != nil {
		t.Fatalf("ParseRow: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := ParseRow([]string{"a", "b"}); !errors.Is(err, ErrShortRow) {
		t.Fatalf("expected ErrShortRow, got %v", err)
	}

	_, err = ParseRow([]string{"x", "Bus", "abc", "2024-05-02", "TRANSPORTATION", ""})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if strings.HasPrefix(de.Error(), "line") {
		t.Errorf("row errors should not carry a line: %q", de.Error())
	}
}
