package importer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
	"github.com/google/uuid"
)

// Result is a converted table: the recomputed task forest, the department
// ledger extended with any departments the table introduced, and the
// integrity warnings collected along the way.
type Result struct {
	Tasks       []domain.Task
	Departments domain.Departments
	Warnings    []domain.Warning
}

type columnMap struct {
	fixed    map[string]int
	progress map[int]string // column -> department id
}

// Convert maps table rows onto tasks. The input ledger is not modified.
// Call ValidateTable first; Convert assumes a name column exists.
func Convert(t *Table, departments domain.Departments) (*Result, error) {
	if errs := ValidateTable(t); len(errs) > 0 {
		return nil, domain.Invalid(nil, "table", "%v", errs[0])
	}

	res := &Result{Departments: departments.Clone()}
	cols := res.mapColumns(t.Header)

	tasks := make([]domain.Task, 0, len(t.Rows))
	for r := range t.Rows {
		tasks = append(tasks, res.convertRow(t, r, cols))
	}

	var warnings []domain.Warning
	res.Tasks, warnings = wbs.Recompute(tasks, res.Departments)
	res.Warnings = append(res.Warnings, warnings...)
	return res, nil
}

func (res *Result) warn(kind domain.WarningKind, ref, format string, args ...any) {
	res.Warnings = append(res.Warnings, domain.Warning{Kind: kind, Ref: ref, Detail: fmt.Sprintf(format, args...)})
}

func (res *Result) mapColumns(header []string) columnMap {
	known := make(map[string]string, len(TaskColumns))
	for _, c := range TaskColumns {
		known[headerKey(c)] = c
	}
	derived := make(map[string]bool, len(DerivedColumns))
	for _, c := range DerivedColumns {
		derived[headerKey(c)] = true
	}

	cols := columnMap{fixed: map[string]int{}, progress: map[int]string{}}
	for i, h := range header {
		key := headerKey(h)
		switch {
		case key == "":
		case known[key] != "":
			cols.fixed[known[key]] = i
		case derived[key]:
		default:
			name, ok := progressDepartment(h)
			if !ok {
				res.warn(domain.WarnUnknownColumn, h, "column %q ignored", h)
				continue
			}
			cols.progress[i] = res.department(name).ID
		}
	}
	return cols
}

// department resolves name against the ledger, adding it when absent. New
// departments weigh 1 while the total stays within the cap, 0 otherwise.
func (res *Result) department(name string) domain.Department {
	if d, ok := res.Departments.Resolve(name); ok {
		return d
	}
	for _, d := range res.Departments {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	d := domain.Department{ID: uuid.New().String(), Name: name, Weight: domain.DefaultDepartmentWeight}
	if res.Departments.TotalWeight()+d.Weight > domain.MaxTotalWeight {
		d.Weight = 0
	}
	res.Departments = append(res.Departments, d)
	res.warn(domain.WarnNewDepartment, name, "department created with weight %g", d.Weight)
	return d
}

func (res *Result) convertRow(t *Table, r int, cols columnMap) domain.Task {
	cell := func(col string) string {
		i, ok := cols.fixed[col]
		if !ok {
			return ""
		}
		return t.Cell(r, i)
	}

	id := cell(ColID)
	if id == "" {
		id = uuid.New().String()
	}
	task := domain.Task{
		ID:                 id,
		ParentID:           domain.StrPtr(cell(ColParentID)),
		Name:               domain.CoalesceStr(cell(ColName), domain.DefaultTaskName),
		DeliverableName:    domain.CoalesceStr(cell(ColDeliverableName), domain.DefaultDeliverableName),
		Assignee:           cell(ColAssignee),
		Notes:              cell(ColNotes),
		StartDate:          res.date(id, cell(ColStartDate)),
		EndDate:            res.date(id, cell(ColEndDate)),
		Status:             res.status(id, cell(ColStatus)),
		DepartmentProgress: make(map[string]int, len(res.Departments)),
		Deliverables:       []domain.Deliverable{},
	}
	for _, d := range res.Departments {
		task.DepartmentProgress[d.ID] = 0
	}
	for i, deptID := range cols.progress {
		task.DepartmentProgress[deptID] = res.progress(id, t.Cell(r, i))
	}
	return task
}

func (res *Result) date(ref, raw string) string {
	if raw == "" {
		return ""
	}
	day, ok := domain.NormalizeDay(raw)
	if !ok {
		res.warn(domain.WarnInvalidDate, ref, "date %q kept as entered", raw)
		return raw
	}
	return day
}

func (res *Result) status(ref, raw string) domain.Status {
	if raw == "" {
		return domain.StatusNotStarted
	}
	s, ok := domain.ParseStatus(raw)
	if !ok {
		res.warn(domain.WarnUnknownStatus, ref, "status %q read as %s", raw, domain.StatusNotStarted)
		return domain.StatusNotStarted
	}
	return s
}

// progress reads a percentage. Missing or unparseable values are 0; values
// outside [0,100], including ones too large for any integer, are clamped.
func (res *Result) progress(ref, raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(v) {
		return 0
	}
	n := domain.PercentFromFloat(v)
	if v < 0 || v > 100 {
		res.warn(domain.WarnProgressClamped, ref, "progress %s clamped to %d", raw, n)
	}
	return n
}
