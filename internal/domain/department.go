package domain

const (
	// MaxTotalWeight caps the sum of department weights in a project.
	MaxTotalWeight = 100.0
	// DefaultDepartmentWeight applies when a department is added without one.
	DefaultDepartmentWeight = 1.0
)

// Department is a contributing function whose progress is tracked per task.
// Task progress maps are keyed by ID, so renaming touches only Name.
type Department struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
}

type Departments []Department

// TotalWeight sums all department weights.
func (ds Departments) TotalWeight() float64 {
	var total float64
	for _, d := range ds {
		total += d.Weight
	}
	return total
}

// ByName returns the index of the department called name, or -1.
func (ds Departments) ByName(name string) int {
	for i, d := range ds {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// ByID returns the index of the department with id, or -1.
func (ds Departments) ByID(id string) int {
	for i, d := range ds {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Resolve finds a department by name first, then by id.
func (ds Departments) Resolve(ref string) (Department, bool) {
	if i := ds.ByName(ref); i >= 0 {
		return ds[i], true
	}
	if i := ds.ByID(ref); i >= 0 {
		return ds[i], true
	}
	return Department{}, false
}

func (ds Departments) Clone() Departments {
	if ds == nil {
		return Departments{}
	}
	out := make(Departments, len(ds))
	copy(out, ds)
	return out
}
