package wbs

import (
	"math"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/google/uuid"
)

// weightSlack absorbs float error from fractional weights such as 33.3.
const weightSlack = 1e-9

func sanitizeWeight(w float64) float64 {
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	return w
}

// AddDepartment registers a department and seeds it at 0 on every task.
func AddDepartment(p *domain.Project, name string, weight float64) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid(domain.ErrEmptyName, "name", "department name cannot be empty")
	}
	if p.Departments.ByName(name) >= 0 {
		return nil, domain.Invalid(domain.ErrDuplicateName, "name", "department %q already exists", name)
	}
	weight = sanitizeWeight(weight)
	if total := p.Departments.TotalWeight() + weight; total > domain.MaxTotalWeight+weightSlack {
		return nil, domain.Invalid(domain.ErrWeightExceeded, "weight", "total department weight would be %g", total)
	}

	next := p.Clone()
	dep := domain.Department{ID: uuid.New().String(), Name: name, Weight: weight}
	next.Departments = append(next.Departments, dep)
	for i := range next.Tasks {
		next.Tasks[i].DepartmentProgress[dep.ID] = 0
	}
	next.Tasks, _ = Recompute(next.Tasks, next.Departments)
	return next, nil
}

// RenameDepartment changes a department's display name. Task progress is
// keyed by department id, so no task is touched.
func RenameDepartment(p *domain.Project, oldName, newName string) (*domain.Project, error) {
	i := p.Departments.ByName(oldName)
	if i < 0 {
		return nil, domain.NotFound("department", oldName)
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domain.Invalid(domain.ErrEmptyName, "name", "department name cannot be empty")
	}
	next := p.Clone()
	if newName == oldName {
		return next, nil
	}
	if p.Departments.ByName(newName) >= 0 {
		return nil, domain.Invalid(domain.ErrDuplicateName, "name", "department %q already exists", newName)
	}
	next.Departments[i].Name = newName
	return next, nil
}

// RemoveDepartment drops a department and its progress entry from every
// task, then recomputes.
func RemoveDepartment(p *domain.Project, name string) (*domain.Project, error) {
	i := p.Departments.ByName(name)
	if i < 0 {
		return nil, domain.NotFound("department", name)
	}
	next := p.Clone()
	id := next.Departments[i].ID
	next.Departments = append(next.Departments[:i:i], next.Departments[i+1:]...)
	for k := range next.Tasks {
		delete(next.Tasks[k].DepartmentProgress, id)
	}
	next.Tasks, _ = Recompute(next.Tasks, next.Departments)
	return next, nil
}

// SetDepartmentWeight changes a weight. Negative input is treated as 0.
func SetDepartmentWeight(p *domain.Project, name string, weight float64) (*domain.Project, error) {
	i := p.Departments.ByName(name)
	if i < 0 {
		return nil, domain.NotFound("department", name)
	}
	weight = sanitizeWeight(weight)
	others := p.Departments.TotalWeight() - p.Departments[i].Weight
	if total := others + weight; total > domain.MaxTotalWeight+weightSlack {
		return nil, domain.Invalid(domain.ErrWeightExceeded, "weight", "total department weight would be %g", total)
	}
	next := p.Clone()
	next.Departments[i].Weight = weight
	next.Tasks, _ = Recompute(next.Tasks, next.Departments)
	return next, nil
}
