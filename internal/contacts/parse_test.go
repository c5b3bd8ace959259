package contacts

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	in := strings.NewReader(
		"Name,Phone,Due_Amount,Due_Date\n" +
			"Arjun,9123456789,2000,2025-06-01\n" +
			",,,\n" +
			"Meera,9988776655,1500,2025-06-10\n")

	got, skipped, err := ParseCSV(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d contacts, want 2", len(got))
	}
	if skipped != 0 {
		t.Fatalf("skipped %d, want 0 (fully blank rows are not counted)", skipped)
	}
	want := Contact{Name: "Arjun", Phone: "9123456789", DueAmount: "2000", DueDate: "2025-06-01"}
	if got[0] != want {
		t.Fatalf("got %+v, want %+v", got[0], want)
	}
	if got[1].Name != "Meera" {
		t.Fatalf("blank row not skipped, got %+v", got[1])
	}
}

func TestParseCSVSkipsIncompleteRows(t *testing.T) {
	in := strings.NewReader(
		"name,phone,due_amount,due_date\n" +
			"Arjun,9123456789,2000,2025-06-01\n" +
			"NoPhone,,1500,2025-06-10\n" +
			"Short,9988776655\n")

	got, skipped, err := ParseCSV(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Arjun" {
		t.Fatalf("got %+v, want only Arjun", got)
	}
	if skipped != 2 {
		t.Fatalf("skipped %d, want 2", skipped)
	}
}

func TestParseCSVMissingColumns(t *testing.T) {
	in := strings.NewReader("name,phone\nArjun,9123456789\n")

	_, _, err := ParseCSV(in)
	if err == nil || !strings.Contains(err.Error(), "due_amount") {
		t.Fatalf("expected missing-column error, got %v", err)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"name", "phone", "due_amount", "due_date"},
		{"Arjun", "9123456789", "2000", "2025-06-01"},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	got, skipped, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 || skipped != 0 {
		t.Fatalf("got %d contacts (%d skipped), want 1 (0 skipped)", len(got), skipped)
	}
	if got[0].Phone != "9123456789" || got[0].DueAmount != "2000" {
		t.Fatalf("got %+v", got[0])
	}
}

func TestParseFileDispatch(t *testing.T) {
	in := strings.NewReader("name,phone,due_amount,due_date\nArjun,91234,2000,2025-06-01\n")
	got, _, err := ParseFile("borrowers.CSV", in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d contacts, want 1", len(got))
	}

	_, _, err = ParseFile("borrowers.pdf", strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
