package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject_DefaultDepartment(t *testing.T) {
	p := NewProject("Launch", time.Now().UTC())
	require.Len(t, p.Departments, 1)
	assert.Equal(t, "General", p.Departments[0].Name)
	assert.Equal(t, 1.0, p.Departments[0].Weight)
	assert.NotEmpty(t, p.Departments[0].ID)
	assert.Empty(t, p.Tasks)
	assert.Empty(t, p.Team)
}

func TestProjectMatches(t *testing.T) {
	p := &Project{Name: "Factory Retrofit", Description: "Line 3 upgrade", Type: "Capex", Goal: "Reduce scrap", Period: "2025 Q3"}

	cases := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"retrofit", true},
		{"LINE 3", true},
		{"capex", true},
		{"scrap", true},
		{"2025", false},
		{"warehouse", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.Matches(tc.query), "query %q", tc.query)
	}
}

func TestDisplayID(t *testing.T) {
	p := &Project{ID: "550e8400-e29b-41d4-a716-446655440000"}
	assert.Equal(t, "550e8400", p.DisplayID())

	short := &Project{ID: "abc"}
	assert.Equal(t, "abc", short.DisplayID())
}

func TestProjectClone_IsDeep(t *testing.T) {
	parent := "1"
	p := &Project{
		Tasks: []Task{
			{ID: "1", DepartmentProgress: map[string]int{"d1": 10}},
			{ID: "1.1", ParentID: &parent, DepartmentProgress: map[string]int{"d1": 20}},
		},
		Departments: Departments{{ID: "d1", Name: "Design", Weight: 1}},
		Team:        []TeamMember{{ID: "m1", ParentID: &parent}},
	}
	c := p.Clone()

	c.Tasks[0].DepartmentProgress["d1"] = 99
	*c.Tasks[1].ParentID = "9"
	c.Departments[0].Name = "Changed"
	*c.Team[0].ParentID = "x"

	assert.Equal(t, 10, p.Tasks[0].DepartmentProgress["d1"])
	assert.Equal(t, "1", *p.Tasks[1].ParentID)
	assert.Equal(t, "Design", p.Departments[0].Name)
	assert.Equal(t, "1", *p.Team[0].ParentID)
}

func TestNormalize_RekeysLegacyProgressAndFillsDefaults(t *testing.T) {
	p := &Project{
		Departments: Departments{{Name: "Design", Weight: 2}, {Name: "Build", Weight: -1}},
		Tasks: []Task{
			{ID: "1", Status: "in_progress", DepartmentProgress: map[string]int{"Design": 40}},
			{ID: "2", Status: "bogus"},
		},
	}
	p.Normalize()

	design := p.Departments[0]
	require.NotEmpty(t, design.ID)
	assert.Equal(t, 0.0, p.Departments[1].Weight)
	assert.Equal(t, map[string]int{design.ID: 40}, p.Tasks[0].DepartmentProgress)
	assert.Equal(t, StatusInProgress, p.Tasks[0].Status)
	assert.Equal(t, StatusNotStarted, p.Tasks[1].Status)
	assert.NotNil(t, p.Tasks[1].DepartmentProgress)
	assert.NotNil(t, p.Tasks[1].Deliverables)
	assert.NotNil(t, p.Team)
}

func TestProjectKeyPath(t *testing.T) {
	k := ProjectKey{Owner: "u1", ProjectID: "p1"}
	assert.Equal(t, "users/u1/projects/p1", k.Path())
	assert.Equal(t, "users/u1/projects", OwnerPrefix("u1"))
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"Not Started": StatusNotStarted,
		"not_started": StatusNotStarted,
		"InProgress":  StatusInProgress,
		"completed":   StatusCompleted,
		"On Hold":     StatusOnHold,
	}
	for in, want := range cases {
		got, ok := ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := ParseStatus("whatever")
	assert.False(t, ok)
	assert.Equal(t, StatusNotStarted, got)
}

func TestParseDay(t *testing.T) {
	d, ok := ParseDay("2025-03-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDay("2025-03-15T17:45:00Z")
	require.True(t, ok)
	assert.Equal(t, "2025-03-15", FormatDay(d))

	_, ok = ParseDay("2025/3/1")
	assert.True(t, ok)

	_, ok = ParseDay("soon")
	assert.False(t, ok)
	_, ok = ParseDay("")
	assert.False(t, ok)

	s, ok := NormalizeDay("2025.03.01")
	assert.True(t, ok)
	assert.Equal(t, "2025-03-01", s)
}

func TestValidationError_Unwrap(t *testing.T) {
	err := Invalid(ErrWeightExceeded, "weight", "total would be %.0f", 120.0)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrWeightExceeded))
	assert.Equal(t, "weight: total would be 120", err.Error())

	nf := NotFound("task", "1.2")
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.Contains(t, nf.Error(), `"1.2"`)
}

func TestDeliverableNextVersion(t *testing.T) {
	d := Deliverable{}
	assert.Equal(t, 1, d.NextVersion())
	d.Versions = []DeliverableVersion{{Version: 1}, {Version: 3}, {Version: 2}}
	assert.Equal(t, 4, d.NextVersion())
}
