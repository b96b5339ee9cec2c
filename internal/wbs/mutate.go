package wbs

import (
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/google/uuid"
)

// TaskDraft carries the user-supplied fields of a new task. Blank fields
// take defaults.
type TaskDraft struct {
	Name            string
	Assignee        string
	DeliverableName string
	Notes           string
	StartDate       string
	EndDate         string
	Status          domain.Status
}

// TaskPatch is a partial update. Nil fields are left unchanged. Progress
// keys may be department names or ids.
type TaskPatch struct {
	Name               *string
	Assignee           *string
	DeliverableName    *string
	Notes              *string
	Status             *domain.Status
	StartDate          *string
	EndDate            *string
	DepartmentProgress map[string]int
	IsExpanded         *bool
}

func (d TaskDraft) build(p *domain.Project, start, end string) (domain.Task, error) {
	t := domain.Task{
		ID:                 "new-" + uuid.New().String(),
		Name:               domain.CoalesceStr(strings.TrimSpace(d.Name), domain.DefaultTaskName),
		Assignee:           d.Assignee,
		DeliverableName:    domain.CoalesceStr(strings.TrimSpace(d.DeliverableName), domain.DefaultDeliverableName),
		Notes:              d.Notes,
		StartDate:          start,
		EndDate:            end,
		Status:             domain.StatusNotStarted,
		DepartmentProgress: make(map[string]int, len(p.Departments)),
		Deliverables:       []domain.Deliverable{},
	}
	if d.Status != "" {
		st, err := parseStatusField(string(d.Status))
		if err != nil {
			return domain.Task{}, err
		}
		t.Status = st
	}
	for _, field := range []struct {
		name string
		val  string
		dst  *string
	}{{"startDate", d.StartDate, &t.StartDate}, {"endDate", d.EndDate, &t.EndDate}} {
		if field.val == "" {
			continue
		}
		day, ok := domain.NormalizeDay(field.val)
		if !ok {
			return domain.Task{}, domain.Invalid(nil, field.name, "invalid date %q (expected YYYY-MM-DD)", field.val)
		}
		*field.dst = day
	}
	for _, dep := range p.Departments {
		t.DepartmentProgress[dep.ID] = 0
	}
	return t, nil
}

// AddTask appends a new root task. Dates default to today.
// It returns the new snapshot and the id the task received.
func AddTask(p *domain.Project, draft TaskDraft, today time.Time) (*domain.Project, string, error) {
	day := domain.FormatDay(today)
	t, err := draft.build(p, day, day)
	if err != nil {
		return nil, "", err
	}
	next := p.Clone()
	next.Tasks = append(next.Tasks, t)
	return commit(next, len(next.Tasks)-1)
}

// AddSubTask inserts a new task directly after parentID in the sequence,
// which makes it the parent's first child. Dates default to the parent's
// and the parent is expanded.
func AddSubTask(p *domain.Project, parentID string, draft TaskDraft) (*domain.Project, string, error) {
	f := BuildForest(p.Tasks)
	pi, ok := f.Index(parentID)
	if !ok {
		return nil, "", domain.NotFound("task", parentID)
	}
	parent := p.Tasks[pi]
	t, err := draft.build(p, parent.StartDate, parent.EndDate)
	if err != nil {
		return nil, "", err
	}
	t.ParentID = &parent.ID

	next := p.Clone()
	next.Tasks[pi].IsExpanded = true
	next.Tasks = slices.Insert(next.Tasks, pi+1, t)
	return commit(next, pi+1)
}

// DeleteTask removes the task and all of its descendants.
func DeleteTask(p *domain.Project, id string) (*domain.Project, error) {
	f := BuildForest(p.Tasks)
	i, ok := f.Index(id)
	if !ok {
		return nil, domain.NotFound("task", id)
	}
	doomed := make(map[int]bool)
	for _, k := range f.Subtree(i) {
		doomed[k] = true
	}

	next := p.Clone()
	kept := make([]domain.Task, 0, len(next.Tasks)-len(doomed))
	for k, t := range next.Tasks {
		if !doomed[k] {
			kept = append(kept, t)
		}
	}
	next.Tasks = kept
	next.Tasks, _ = Recompute(next.Tasks, next.Departments)
	return next, nil
}

// MoveTask makes dragged a sibling of target, placed immediately before it.
// The dragged subtree moves along. An empty targetID moves the task to the
// end of the root group. Moving a task onto itself or into its own subtree
// is rejected.
func MoveTask(p *domain.Project, draggedID, targetID string) (*domain.Project, error) {
	if draggedID == targetID {
		return nil, domain.Invalid(domain.ErrIllegalMove, "target", "cannot move task %q onto itself", draggedID)
	}
	f := BuildForest(p.Tasks)
	di, ok := f.Index(draggedID)
	if !ok {
		return nil, domain.NotFound("task", draggedID)
	}

	next := p.Clone()
	dragged := next.Tasks[di]
	rest := slices.Delete(slices.Clone(next.Tasks), di, di+1)

	if targetID == "" {
		dragged.ParentID = nil
		next.Tasks = append(rest, dragged)
	} else {
		ti, ok := f.Index(targetID)
		if !ok {
			return nil, domain.NotFound("task", targetID)
		}
		if f.IsAncestor(di, ti) {
			return nil, domain.Invalid(domain.ErrIllegalMove, "target", "cannot move task %q into its own sub-task %q", draggedID, targetID)
		}
		target := next.Tasks[ti]
		dragged.ParentID = nil
		if target.ParentID != nil {
			pid := *target.ParentID
			dragged.ParentID = &pid
		}
		at := ti
		if di < ti {
			at--
		}
		next.Tasks = slices.Insert(rest, at, dragged)
	}

	next.Tasks, _ = Recompute(next.Tasks, next.Departments)
	return next, nil
}

// UpdateTask applies patch to a single task. Dates and department progress
// of a task with sub-tasks are derived and cannot be set directly.
func UpdateTask(p *domain.Project, id string, patch TaskPatch) (*domain.Project, error) {
	f := BuildForest(p.Tasks)
	i, ok := f.Index(id)
	if !ok {
		return nil, domain.NotFound("task", id)
	}
	if !f.IsLeaf(i) {
		switch {
		case patch.StartDate != nil:
			return nil, domain.Invalid(domain.ErrReadOnlyField, "startDate", "start date of %q is derived from its sub-tasks", id)
		case patch.EndDate != nil:
			return nil, domain.Invalid(domain.ErrReadOnlyField, "endDate", "end date of %q is derived from its sub-tasks", id)
		case len(patch.DepartmentProgress) > 0:
			return nil, domain.Invalid(domain.ErrReadOnlyField, "departmentProgress", "progress of %q is derived from its sub-tasks", id)
		}
	}

	next := p.Clone()
	t := &next.Tasks[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.Invalid(domain.ErrEmptyName, "name", "task name cannot be empty")
		}
		t.Name = name
	}
	if patch.Assignee != nil {
		t.Assignee = strings.TrimSpace(*patch.Assignee)
	}
	if patch.DeliverableName != nil {
		t.DeliverableName = strings.TrimSpace(*patch.DeliverableName)
	}
	if patch.Notes != nil {
		t.Notes = *patch.Notes
	}
	if patch.Status != nil {
		st, err := parseStatusField(string(*patch.Status))
		if err != nil {
			return nil, err
		}
		t.Status = st
	}
	if patch.StartDate != nil {
		day, ok := domain.NormalizeDay(*patch.StartDate)
		if !ok {
			return nil, domain.Invalid(nil, "startDate", "invalid date %q (expected YYYY-MM-DD)", *patch.StartDate)
		}
		t.StartDate = day
	}
	if patch.EndDate != nil {
		day, ok := domain.NormalizeDay(*patch.EndDate)
		if !ok {
			return nil, domain.Invalid(nil, "endDate", "invalid date %q (expected YYYY-MM-DD)", *patch.EndDate)
		}
		t.EndDate = day
	}
	for ref, v := range patch.DepartmentProgress {
		dep, ok := next.Departments.Resolve(ref)
		if !ok {
			return nil, domain.NotFound("department", ref)
		}
		t.DepartmentProgress[dep.ID] = domain.ClampPercent(v)
	}
	if patch.IsExpanded != nil {
		t.IsExpanded = *patch.IsExpanded
	}

	next.Tasks, _ = Recompute(next.Tasks, next.Departments)
	return next, nil
}

// ToggleExpand flips the expanded flag of a task.
func ToggleExpand(p *domain.Project, id string) (*domain.Project, error) {
	f := BuildForest(p.Tasks)
	i, ok := f.Index(id)
	if !ok {
		return nil, domain.NotFound("task", id)
	}
	next := p.Clone()
	next.Tasks[i].IsExpanded = !next.Tasks[i].IsExpanded
	return next, nil
}

func parseStatusField(s string) (domain.Status, error) {
	if st := domain.Status(s); st.Valid() {
		return st, nil
	}
	st, ok := domain.ParseStatus(s)
	if !ok {
		return "", domain.Invalid(nil, "status", "unknown status %q", s)
	}
	return st, nil
}

// commit recomputes next and reports the new id of the task that sat at
// index at before renumbering.
func commit(next *domain.Project, at int) (*domain.Project, string, error) {
	tasks, _, moved := recompute(next.Tasks, next.Departments)
	next.Tasks = tasks
	return next, tasks[moved[at]].ID, nil
}
