// Package importer reads task tables (CSV, XLSX) and project documents
// (JSON) into domain values, reporting integrity problems as warnings
// rather than failing wherever the data can still be accepted.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Table is a header row plus data rows, as read from a spreadsheet.
// Rows may be shorter than Header; missing cells read as "".
type Table struct {
	Header []string
	Rows   [][]string
}

// Cell returns row r's value under column c, or "".
func (t *Table) Cell(r, c int) string {
	if c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[r][c])
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses comma-separated text. A leading byte-order mark is
// ignored and rows may have differing lengths.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return newTable(records)
}

// ReadXLSX reads the named sheet, or the first sheet when sheet is empty.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return newTable(rows)
}

// ReadTable dispatches on a tabular format.
func ReadTable(r io.Reader, format domain.Format) (*Table, error) {
	switch format {
	case domain.FormatCSV:
		return ReadCSV(r)
	case domain.FormatXLSX:
		return ReadXLSX(r, "")
	}
	return nil, domain.Invalid(nil, "format", "%s is not a tabular format", format)
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, domain.Invalid(nil, "header", "table is empty")
	}
	t := &Table{Header: records[0]}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
