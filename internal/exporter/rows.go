// Package exporter renders a project as a task table (CSV, XLSX) or as a
// full snapshot document (JSON, YAML).
package exporter

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/importer"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

// Options controls table rendering.
type Options struct {
	// Baseline is the day derived columns are computed at. Empty means today.
	Baseline    string
	// Indent prefixes task names with two spaces per level.
	Indent      bool
	// OmitDerived drops the planned, overall, gap and duration columns.
	OmitDerived bool
}

func (o Options) baseline() string {
	if o.Baseline == "" {
		return domain.FormatDay(domain.Today())
	}
	return o.Baseline
}

// Rows lays out p's tasks in pre-order under the import column set, so
// the table reads back through importer.Convert.
func Rows(p *domain.Project, opts Options) *importer.Table {
	header := append([]string{}, importer.TaskColumns...)
	for _, d := range p.Departments {
		header = append(header, importer.ProgressColumn(d.Name))
	}
	if !opts.OmitDerived {
		header = append(header, importer.DerivedColumns...)
	}

	baseline := opts.baseline()
	t := &importer.Table{Header: header}
	for _, n := range wbs.Walk(p.Tasks) {
		task := n.Task
		name := task.Name
		if opts.Indent {
			name = strings.Repeat("  ", n.Depth) + name
		}
		row := []string{
			task.ID, task.ParentKey(), name, task.DeliverableName, task.StartDate,
			task.EndDate, task.Assignee, string(task.Status), task.Notes,
		}
		for _, d := range p.Departments {
			row = append(row, strconv.Itoa(task.DepartmentProgress[d.ID]))
		}
		if !opts.OmitDerived {
			m := scheduler.Evaluate(task, p.Departments, baseline)
			row = append(row,
				strconv.Itoa(m.Planned),
				strconv.Itoa(m.Overall),
				strconv.Itoa(m.Gap),
				strconv.Itoa(m.DurationDays))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
