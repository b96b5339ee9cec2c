package wbs

import (
	"math/rand"
	"testing"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoDepartments = domain.Departments{
	{ID: "des", Name: "Design", Weight: 60},
	{ID: "eng", Name: "Engineering", Weight: 40},
}

func TestOverallProgress(t *testing.T) {
	tests := []struct {
		name     string
		progress map[string]int
		depts    domain.Departments
		want     int
	}{
		{"weighted mean", map[string]int{"des": 50, "eng": 100}, twoDepartments, 70},
		{"absent key does not count", map[string]int{"des": 50}, twoDepartments, 50},
		{"no keys", map[string]int{}, twoDepartments, 0},
		{"zero weights", map[string]int{"des": 80}, domain.Departments{{ID: "des", Weight: 0}}, 0},
		{"zero weight department ignored", map[string]int{"des": 80, "eng": 20},
			domain.Departments{{ID: "des", Weight: 0}, {ID: "eng", Weight: 5}}, 20},
		{"rounds half up", map[string]int{"a": 50, "b": 51},
			domain.Departments{{ID: "a", Weight: 1}, {ID: "b", Weight: 2}}, 51},
		{"no departments", map[string]int{"x": 100}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := testutil.NewTestTask("1", "")
			task.DepartmentProgress = tt.progress
			assert.Equal(t, tt.want, OverallProgress(task, tt.depts))
		})
	}
}

func TestOverallProgress_Bounds(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		depts := domain.Departments{
			{ID: "a", Weight: float64(r.Intn(50))},
			{ID: "b", Weight: float64(r.Intn(50))},
		}
		task := testutil.NewTestTask("1", "",
			testutil.WithProgress("a", r.Intn(101)),
			testutil.WithProgress("b", r.Intn(101)))
		got := OverallProgress(task, depts)

		lo, hi := 100, 0
		for _, d := range depts {
			if d.Weight > 0 {
				v := task.DepartmentProgress[d.ID]
				lo, hi = min(lo, v), max(hi, v)
			}
		}
		if hi < lo {
			assert.Equal(t, 0, got)
			continue
		}
		assert.GreaterOrEqual(t, got, lo)
		assert.LessOrEqual(t, got, hi)
	}
}

func TestRollupProgress_MeanOfChildren(t *testing.T) {
	tasks := []domain.Task{
		testutil.NewTestTask("1", "", testutil.WithProgress("des", 5), testutil.WithProgress("stale", 9)),
		testutil.NewTestTask("1.1", "1", testutil.WithProgress("des", 100), testutil.WithProgress("eng", 20)),
		testutil.NewTestTask("1.2", "1", testutil.WithProgress("des", 50)),
	}
	out := RollupProgress(tasks, twoDepartments)

	assert.Equal(t, map[string]int{"des": 75, "eng": 10}, out[0].DepartmentProgress)
	assert.Equal(t, 100, out[1].DepartmentProgress["des"], "leaves untouched")
	assert.Equal(t, 5, tasks[0].DepartmentProgress["des"], "input untouched")
}

func TestRollupProgress_NestedAndRounding(t *testing.T) {
	depts := domain.Departments{{ID: "a", Name: "A", Weight: 1}}
	tasks := []domain.Task{
		testutil.NewTestTask("1", ""),
		testutil.NewTestTask("1.1", "1"),
		testutil.NewTestTask("1.1.1", "1.1", testutil.WithProgress("a", 1)),
		testutil.NewTestTask("1.1.2", "1.1", testutil.WithProgress("a", 2)),
		testutil.NewTestTask("1.2", "1", testutil.WithProgress("a", 100)),
	}
	out := RollupProgress(tasks, depts)

	assert.Equal(t, 2, out[1].DepartmentProgress["a"], "1.5 rounds up")
	assert.Equal(t, 51, out[0].DepartmentProgress["a"], "(2+100)/2")
}

func TestRollupDates_Extremes(t *testing.T) {
	tasks := []domain.Task{
		testutil.NewTestTask("1", "", testutil.WithDates("2024-06-01", "2024-06-02")),
		testutil.NewTestTask("1.1", "1", testutil.WithDates("2025-01-05", "2025-01-20")),
		testutil.NewTestTask("1.2", "1", testutil.WithDates("2025-01-01", "2025-02-10")),
		testutil.NewTestTask("1.3", "1", testutil.WithDates("bad", "")),
	}
	out := RollupDates(tasks)

	assert.Equal(t, "2025-01-01", out[0].StartDate)
	assert.Equal(t, "2025-02-10", out[0].EndDate)
	assert.Equal(t, "bad", out[3].StartDate, "leaf kept verbatim")
}

func TestRollupDates_IndependentBoundsAndFallback(t *testing.T) {
	tasks := []domain.Task{
		testutil.NewTestTask("1", "", testutil.WithDates("2024-06-01", "2024-06-30")),
		testutil.NewTestTask("1.1", "1", testutil.WithDates("2025-03-01", "")),
		testutil.NewTestTask("2", "", testutil.WithDates("2024-01-01", "2024-01-31")),
		testutil.NewTestTask("2.1", "2", testutil.WithDates("", "nope")),
	}
	out := RollupDates(tasks)

	assert.Equal(t, "2025-03-01", out[0].StartDate)
	assert.Equal(t, "2024-06-30", out[0].EndDate, "no valid child end keeps own")
	assert.Equal(t, "2024-01-01", out[2].StartDate)
	assert.Equal(t, "2024-01-31", out[2].EndDate)
}

func TestRollupDates_ParentSpansAllDescendants(t *testing.T) {
	tasks := []domain.Task{
		testutil.NewTestTask("1", ""),
		testutil.NewTestTask("1.1", "1"),
		testutil.NewTestTask("1.1.1", "1.1", testutil.WithDates("2023-12-24", "2024-01-02")),
		testutil.NewTestTask("1.2", "1", testutil.WithDates("2024-02-01", "2024-09-09")),
	}
	out := RollupDates(tasks)

	assert.Equal(t, "2023-12-24", out[0].StartDate)
	assert.Equal(t, "2024-09-09", out[0].EndDate)
	assert.Equal(t, "2023-12-24", out[1].StartDate)
}

func TestRecompute_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for round := 0; round < 30; round++ {
		tasks := randomForest(r, 1+r.Intn(30))
		for i := range tasks {
			tasks[i].DepartmentProgress["des"] = r.Intn(101)
			if r.Intn(4) == 0 {
				tasks[i].StartDate = "not a date"
			}
		}
		once, _ := Recompute(tasks, twoDepartments)
		twice, warnings := Recompute(once, twoDepartments)
		require.Equal(t, once, twice)
		assert.Empty(t, warnings, "a recomputed forest is consistent")
	}
}

func TestRefresh_ReportsWarnings(t *testing.T) {
	p := testutil.NewTestProject("P", testutil.WithTasks(
		testutil.NewTestTask("1", ""),
		testutil.NewTestTask("9", "404"),
	))
	warnings := Refresh(p)
	assert.Equal(t, []string{"1", "2"}, testutil.TaskIDs(p.Tasks))
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnOrphanPromoted, warnings[0].Kind)
}
