package scheduler

import (
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

const day = 24 * time.Hour

// PlannedProgress is the share of a task's calendar span that has elapsed
// at baseline, as a whole percentage. Before start it is 0, on or after
// end it is 100. Unparseable or inverted ranges yield 0.
func PlannedProgress(start, end, baseline string) int {
	s, okS := domain.ParseDay(start)
	e, okE := domain.ParseDay(end)
	b, okB := domain.ParseDay(baseline)
	if !okS || !okE || !okB || e.Before(s) {
		return 0
	}
	if b.Before(s) {
		return 0
	}
	if !b.Before(e) {
		return 100
	}
	total := e.Sub(s)
	return domain.RoundHalfUp(float64(b.Sub(s)) / float64(total) * 100)
}

// DurationDays counts calendar days from start to end inclusive.
func DurationDays(start, end string) int {
	s, okS := domain.ParseDay(start)
	e, okE := domain.ParseDay(end)
	if !okS || !okE || e.Before(s) {
		return 0
	}
	return int(e.Sub(s)/day) + 1
}

// Gap is overall progress minus planned progress. Negative means behind.
func Gap(t domain.Task, departments domain.Departments, baseline string) int {
	return wbs.OverallProgress(t, departments) - PlannedProgress(t.StartDate, t.EndDate, baseline)
}

func IsDelayed(t domain.Task, departments domain.Departments, baseline string) bool {
	return Gap(t, departments, baseline) < 0
}

// TaskMetrics is the derived schedule view of one task at a baseline day.
type TaskMetrics struct {
	TaskID       string           `json:"taskId" yaml:"taskId"`
	Overall      int              `json:"overallProgress" yaml:"overallProgress"`
	Planned      int              `json:"plannedProgress" yaml:"plannedProgress"`
	Gap          int              `json:"gap" yaml:"gap"`
	DurationDays int              `json:"durationDays" yaml:"durationDays"`
	Delayed      bool             `json:"delayed" yaml:"delayed"`
	Risk         domain.RiskLevel `json:"risk" yaml:"risk"`
}

// Evaluate computes every schedule metric for t at baseline.
func Evaluate(t domain.Task, departments domain.Departments, baseline string) TaskMetrics {
	overall := wbs.OverallProgress(t, departments)
	planned := PlannedProgress(t.StartDate, t.EndDate, baseline)
	m := TaskMetrics{
		TaskID:       t.ID,
		Overall:      overall,
		Planned:      planned,
		Gap:          overall - planned,
		DurationDays: DurationDays(t.StartDate, t.EndDate),
	}
	m.Delayed = m.Gap < 0
	m.Risk = ComputeRisk(RiskInput{
		Baseline: baseline,
		EndDate:  t.EndDate,
		Overall:  overall,
		Gap:      m.Gap,
		Status:   t.Status,
	}).Level
	return m
}
