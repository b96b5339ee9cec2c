package scheduler

import (
	"testing"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectProgress_DurationWeighted(t *testing.T) {
	tasks := []domain.Task{
		// 10 days at 100
		testutil.NewTestTask("1", "", testutil.WithDates("2025-01-01", "2025-01-10"),
			testutil.WithProgress("des", 100), testutil.WithProgress("eng", 100)),
		testutil.NewTestTask("1.1", "1", testutil.WithDates("2025-01-01", "2025-01-10")),
		// 30 days at 0
		testutil.NewTestTask("2", "", testutil.WithDates("2025-02-01", "2025-03-02"),
			testutil.WithProgress("des", 0), testutil.WithProgress("eng", 0)),
		// no span, ignored
		testutil.NewTestTask("3", "", testutil.WithDates("", ""),
			testutil.WithProgress("des", 100), testutil.WithProgress("eng", 100)),
	}
	assert.Equal(t, 25, ProjectProgress(tasks, departments))
	assert.Equal(t, 0, ProjectProgress(nil, departments))
}

func TestSummarize(t *testing.T) {
	p := testutil.NewTestProject("Launch",
		testutil.WithDepartment("des", "Design", 50),
		testutil.WithDepartment("eng", "Engineering", 30),
		testutil.WithTasks(
			testutil.NewTestTask("1", "", testutil.WithDates("2025-01-01", "2025-01-11"),
				testutil.WithStatus(domain.StatusInProgress),
				testutil.WithProgress("des", 10), testutil.WithProgress("eng", 10)),
			testutil.NewTestTask("2", "", testutil.WithDates("2025-01-01", "2025-01-11"),
				testutil.WithStatus(domain.StatusInProgress),
				testutil.WithProgress("des", 45), testutil.WithProgress("eng", 45)),
			testutil.NewTestTask("3", "", testutil.WithDates("2025-01-05", "2025-02-01"),
				testutil.WithStatus(domain.StatusCompleted),
				testutil.WithProgress("des", 100), testutil.WithProgress("eng", 100)),
			testutil.NewTestTask("4", "", testutil.WithDates("2025-03-01", "2025-03-31")),
		),
	)

	s := Summarize(p, "2025-01-06")

	assert.Equal(t, 4, s.TotalTasks)
	assert.Equal(t, 80.0, s.TotalWeight)
	assert.Equal(t, map[domain.Status]int{
		domain.StatusNotStarted: 1,
		domain.StatusInProgress: 2,
		domain.StatusCompleted:  1,
		domain.StatusOnHold:     0,
	}, s.StatusCounts)
	assert.Equal(t, 2, s.Delayed)
	require.Len(t, s.Attention, 2)
	assert.Equal(t, "1", s.Attention[0].Task.ID, "critical first")
	assert.Equal(t, domain.RiskCritical, s.Attention[0].Metrics.Risk)
	assert.Equal(t, "2", s.Attention[1].Task.ID)
	assert.Equal(t, "2025-01-01", s.Start)
	assert.Equal(t, "2025-03-31", s.End)
}

func TestCanonicalSort(t *testing.T) {
	mk := func(id, end string, risk domain.RiskLevel, gap int) Attention {
		return Attention{
			Task:    testutil.NewTestTask(id, "", testutil.WithDates("2025-01-01", end)),
			Metrics: TaskMetrics{TaskID: id, Risk: risk, Gap: gap},
		}
	}
	items := []Attention{
		mk("4", "bad", domain.RiskAtRisk, -5),
		mk("3", "2025-02-01", domain.RiskAtRisk, -5),
		mk("2", "2025-01-15", domain.RiskAtRisk, -5),
		mk("1", "2025-03-01", domain.RiskAtRisk, -9),
		mk("5", "2025-03-01", domain.RiskCritical, -1),
	}
	CanonicalSort(items)

	var ids []string
	for _, it := range items {
		ids = append(ids, it.Task.ID)
	}
	assert.Equal(t, []string{"5", "1", "2", "3", "4"}, ids)
}
