package testutil

import (
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/google/uuid"
)

// Project options
type ProjectOption func(*domain.Project)

// WithDepartment appends a department with a fixed id so tests can address
// progress maps directly.
func WithDepartment(id, name string, weight float64) ProjectOption {
	return func(p *domain.Project) {
		p.Departments = append(p.Departments, domain.Department{ID: id, Name: name, Weight: weight})
	}
}

// WithoutDepartments clears the default ledger.
func WithoutDepartments() ProjectOption {
	return func(p *domain.Project) {
		p.Departments = domain.Departments{}
	}
}

func WithTasks(tasks ...domain.Task) ProjectOption {
	return func(p *domain.Project) {
		p.Tasks = append(p.Tasks, tasks...)
	}
}

func WithMembers(members ...domain.TeamMember) ProjectOption {
	return func(p *domain.Project) {
		p.Team = append(p.Team, members...)
	}
}

func WithDescription(desc, kind, goal string) ProjectOption {
	return func(p *domain.Project) {
		p.Description = desc
		p.Type = kind
		p.Goal = goal
	}
}

// NewTestProject builds a project with no departments unless options add
// some.
func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Tasks:       []domain.Task{},
		Departments: domain.Departments{},
		Team:        []domain.TeamMember{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithDates(start, end string) TaskOption {
	return func(t *domain.Task) {
		t.StartDate = start
		t.EndDate = end
	}
}

func WithProgress(departmentID string, v int) TaskOption {
	return func(t *domain.Task) {
		t.DepartmentProgress[departmentID] = v
	}
}

func WithStatus(s domain.Status) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithAssignee(name string) TaskOption {
	return func(t *domain.Task) {
		t.Assignee = name
	}
}

func WithName(name string) TaskOption {
	return func(t *domain.Task) {
		t.Name = name
	}
}

// NewTestTask builds a task with the given id and parent ("" for a root).
func NewTestTask(id, parentID string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:                 id,
		ParentID:           domain.StrPtr(parentID),
		Name:               "Task " + id,
		DeliverableName:    domain.DefaultDeliverableName,
		StartDate:          "2025-01-01",
		EndDate:            "2025-01-31",
		Status:             domain.StatusNotStarted,
		DepartmentProgress: map[string]int{},
		Deliverables:       []domain.Deliverable{},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewTestMember builds an org chart member.
func NewTestMember(id, parentID, name string) domain.TeamMember {
	return domain.TeamMember{ID: id, ParentID: domain.StrPtr(parentID), Name: name, Role: "Engineer"}
}

// TaskIDs lists task ids in sequence order.
func TaskIDs(tasks []domain.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

// TaskNames lists task names in sequence order.
func TaskNames(tasks []domain.Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

// FindTask returns the first task with id, or nil.
func FindTask(tasks []domain.Task, id string) *domain.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}
