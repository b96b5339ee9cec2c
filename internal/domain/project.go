package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project is the unit of persistence: one document per project holding the
// task forest, the department ledger and the descriptive sections.
type Project struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Period      string       `json:"period" yaml:"period"`
	Type        string       `json:"type" yaml:"type"`
	Goal        string       `json:"goal" yaml:"goal"`
	Tasks       []Task       `json:"tasks" yaml:"tasks"`
	Departments Departments  `json:"departments" yaml:"departments"`
	Charter     Charter      `json:"charter" yaml:"charter"`
	Team        []TeamMember `json:"team" yaml:"team"`
	Revision    int64        `json:"revision" yaml:"revision"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt"`
}

type Charter struct {
	Background   string `json:"background" yaml:"background"`
	Scope        string `json:"scope" yaml:"scope"`
	Stakeholders string `json:"stakeholders" yaml:"stakeholders"`
	Budget       string `json:"budget" yaml:"budget"`
	Milestones   string `json:"milestones" yaml:"milestones"`
	Risks        string `json:"risks" yaml:"risks"`
}

// TeamMember is a node of the project org chart. Unlike tasks, member ids
// are stable across moves.
type TeamMember struct {
	ID       string  `json:"id" yaml:"id"`
	ParentID *string `json:"parentId" yaml:"parentId"`
	Name     string  `json:"name" yaml:"name"`
	Role     string  `json:"role" yaml:"role"`
}

const DefaultDepartmentName = "General"

// NewProject returns an empty project with the default department ledger.
func NewProject(name string, now time.Time) *Project {
	return &Project{
		ID:          uuid.New().String(),
		Name:        name,
		Tasks:       []Task{},
		Departments: Departments{{ID: uuid.New().String(), Name: DefaultDepartmentName, Weight: DefaultDepartmentWeight}},
		Team:        []TeamMember{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DisplayID returns a short prefix of ID for display.
func (p *Project) DisplayID() string {
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// Matches reports whether query occurs, case-insensitively, in the name,
// description, type or goal. An empty query matches everything.
func (p *Project) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{p.Name, p.Description, p.Type, p.Goal} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy suitable for copy-on-write mutation.
func (p *Project) Clone() *Project {
	c := *p
	c.Tasks = CloneTasks(p.Tasks)
	c.Departments = p.Departments.Clone()
	c.Team = make([]TeamMember, len(p.Team))
	for i, m := range p.Team {
		c.Team[i] = m
		if m.ParentID != nil {
			pid := *m.ParentID
			c.Team[i].ParentID = &pid
		}
	}
	return &c
}

// Normalize fills in defaults for fields that older or hand-edited
// documents may omit. Departments without an id get one, and progress keys
// that still carry a department name are re-keyed to its id.
func (p *Project) Normalize() {
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	if p.Team == nil {
		p.Team = []TeamMember{}
	}
	if p.Departments == nil {
		p.Departments = Departments{}
	}
	byName := make(map[string]string, len(p.Departments))
	for i := range p.Departments {
		if p.Departments[i].ID == "" {
			p.Departments[i].ID = uuid.New().String()
		}
		if p.Departments[i].Weight < 0 {
			p.Departments[i].Weight = 0
		}
		byName[p.Departments[i].Name] = p.Departments[i].ID
	}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.DepartmentProgress == nil {
			t.DepartmentProgress = map[string]int{}
		}
		if t.Deliverables == nil {
			t.Deliverables = []Deliverable{}
		}
		if !t.Status.Valid() {
			t.Status, _ = ParseStatus(string(t.Status))
		}
		for key, v := range t.DepartmentProgress {
			if id, ok := byName[key]; ok && id != key {
				if _, taken := t.DepartmentProgress[id]; !taken {
					t.DepartmentProgress[id] = v
				}
				delete(t.DepartmentProgress, key)
			}
		}
	}
}

// Principal is the authenticated owner on whose behalf a request runs.
type Principal struct {
	ID string
}

// ProjectKey addresses one project document in a store.
type ProjectKey struct {
	Owner     string
	ProjectID string
}

// Path is the hierarchical store key, users/{owner}/projects/{id}.
func (k ProjectKey) Path() string {
	return fmt.Sprintf("users/%s/projects/%s", k.Owner, k.ProjectID)
}

// OwnerPrefix is the key prefix under which all of an owner's projects live.
func OwnerPrefix(owner string) string {
	return fmt.Sprintf("users/%s/projects", owner)
}
