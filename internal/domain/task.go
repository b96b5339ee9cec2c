package domain

import "maps"

// Task is one row of the work breakdown. ID and ParentID are positional
// and rewritten whenever the hierarchy changes. Leaf tasks own their dates
// and department progress; for parent tasks those fields are derived.
type Task struct {
	ID                 string         `json:"id" yaml:"id"`
	ParentID           *string        `json:"parentId" yaml:"parentId"`
	Name               string         `json:"name" yaml:"name"`
	Assignee           string         `json:"assignee" yaml:"assignee"`
	DeliverableName    string         `json:"deliverableName" yaml:"deliverableName"`
	Notes              string         `json:"notes" yaml:"notes"`
	StartDate          string         `json:"startDate" yaml:"startDate"`
	EndDate            string         `json:"endDate" yaml:"endDate"`
	Status             Status         `json:"status" yaml:"status"`
	DepartmentProgress map[string]int `json:"departmentProgress" yaml:"departmentProgress"`
	Deliverables       []Deliverable  `json:"deliverables" yaml:"deliverables,omitempty"`
	IsExpanded         bool           `json:"isExpanded" yaml:"isExpanded"`
}

const (
	DefaultTaskName        = "New Task"
	DefaultDeliverableName = "Not specified"
)

// IsRoot reports whether the task has no parent reference.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil || *t.ParentID == ""
}

// ParentKey returns the parent id or "" for a root.
func (t *Task) ParentKey() string {
	if t.ParentID == nil {
		return ""
	}
	return *t.ParentID
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.ParentID != nil {
		pid := *t.ParentID
		c.ParentID = &pid
	}
	c.DepartmentProgress = maps.Clone(t.DepartmentProgress)
	if c.DepartmentProgress == nil {
		c.DepartmentProgress = map[string]int{}
	}
	if t.Deliverables != nil {
		c.Deliverables = make([]Deliverable, len(t.Deliverables))
		for i, d := range t.Deliverables {
			c.Deliverables[i] = d.Clone()
		}
	}
	return c
}

// CloneTasks deep-copies a task sequence.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// StrPtr returns a pointer to s, or nil when s is empty.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
