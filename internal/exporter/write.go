package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/importer"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
	"github.com/alexanderramin/wbsctl/internal/wbs"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// SheetName is the worksheet XLSX exports write to.
const SheetName = "WBS"

// Snapshot is the document form of an export: the project itself plus its
// schedule view at the baseline.
type Snapshot struct {
	Project *domain.Project         `json:"project" yaml:"project"`
	Summary scheduler.Summary       `json:"summary" yaml:"summary"`
	Metrics []scheduler.TaskMetrics `json:"metrics" yaml:"metrics"`
}

// NewSnapshot evaluates p at the baseline in opts.
func NewSnapshot(p *domain.Project, opts Options) Snapshot {
	baseline := opts.baseline()
	s := Snapshot{Project: p, Summary: scheduler.Summarize(p, baseline)}
	for _, n := range wbs.Walk(p.Tasks) {
		s.Metrics = append(s.Metrics, scheduler.Evaluate(n.Task, p.Departments, baseline))
	}
	return s
}

// Write renders p to w in format.
func Write(w io.Writer, p *domain.Project, format domain.Format, opts Options) error {
	switch format {
	case domain.FormatCSV:
		return WriteCSV(w, Rows(p, opts))
	case domain.FormatXLSX:
		return WriteXLSX(w, Rows(p, opts))
	case domain.FormatJSON:
		return WriteJSON(w, p)
	case domain.FormatYAML:
		return WriteYAML(w, NewSnapshot(p, opts))
	}
	return domain.Invalid(nil, "format", "unsupported format %q", format)
}

func WriteCSV(w io.Writer, t *importer.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes t as a single-sheet workbook with a bold, frozen header
// row. Cells in progress and derived columns are stored as numbers; every
// other cell stays text.
func WriteXLSX(w io.Writer, t *importer.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	numeric := make([]bool, len(t.Header))
	for i, h := range t.Header {
		numeric[i] = importer.NumericColumn(h)
	}
	if err := setRow(f, 1, t.Header, nil); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, i+2, row, numeric); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(max(len(t.Header), 1), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string, numeric []bool) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("row %d: %w", n, err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
		if i < len(numeric) && numeric[i] {
			if num, err := strconv.Atoi(v); err == nil {
				row[i] = num
			}
		}
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("row %d: %w", n, err)
	}
	return nil
}

// WriteJSON writes p as an importable project document.
func WriteJSON(w io.Writer, p *domain.Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	return nil
}

func WriteYAML(w io.Writer, s Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return enc.Close()
}
