package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Contact is one borrower row from an uploaded sheet.
type Contact struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	DueAmount string `json:"due_amount"`
	DueDate   string `json:"due_date"`
}

var requiredColumns = []string{"name", "phone", "due_amount", "due_date"}

var ErrUnsupportedFormat = errors.New("contacts: unsupported file format, expected .csv or .xlsx")

// ParseFile reads an uploaded contact sheet. The format is chosen from
// the filename extension. Header matching is case-insensitive. Rows
// missing any required field are skipped and counted, not fatal.
func ParseFile(filename string, r io.Reader) (parsed []Contact, skipped int, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, 0, ErrUnsupportedFormat
	}
}

func ParseCSV(r io.Reader) ([]Contact, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("contacts: read csv: %w", err)
	}
	return fromRows(rows)
}

func ParseXLSX(r io.Reader) ([]Contact, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("contacts: open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, errors.New("contacts: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("contacts: read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]Contact, int, error) {
	if len(rows) == 0 {
		return nil, 0, errors.New("contacts: file is empty")
	}

	idx, err := columnIndex(rows[0])
	if err != nil {
		return nil, 0, err
	}

	var skipped int
	out := make([]Contact, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		ct := Contact{
			Name:      cell(row, idx["name"]),
			Phone:     cell(row, idx["phone"]),
			DueAmount: cell(row, idx["due_amount"]),
			DueDate:   cell(row, idx["due_date"]),
		}
		if ct.Name == "" || ct.Phone == "" || ct.DueAmount == "" || ct.DueDate == "" {
			skipped++
			continue
		}
		out = append(out, ct)
	}
	return out, skipped, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("contacts: missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
