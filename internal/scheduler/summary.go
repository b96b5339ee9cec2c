package scheduler

import (
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

// Summary is the project dashboard at a baseline day.
type Summary struct {
	Baseline     string                `json:"baseline" yaml:"baseline"`
	Overall      int                   `json:"overallProgress" yaml:"overallProgress"`
	TotalTasks   int                   `json:"totalTasks" yaml:"totalTasks"`
	StatusCounts map[domain.Status]int `json:"statusCounts" yaml:"statusCounts"`
	Delayed      int                   `json:"delayedTasks" yaml:"delayedTasks"`
	TotalWeight  float64               `json:"totalDepartmentWeight" yaml:"totalDepartmentWeight"`
	Start        string                `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	End          string                `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Attention    []Attention           `json:"-" yaml:"-"`
}

// ProjectProgress weights each top-level task's overall progress by its
// duration in days. Tasks without a valid span are skipped.
func ProjectProgress(tasks []domain.Task, departments domain.Departments) int {
	var sum float64
	var days int
	for _, t := range wbs.TopLevel(tasks) {
		d := DurationDays(t.StartDate, t.EndDate)
		if d <= 0 {
			continue
		}
		sum += float64(wbs.OverallProgress(t, departments) * d)
		days += d
	}
	if days == 0 {
		return 0
	}
	return domain.RoundHalfUp(sum / float64(days))
}

// Summarize evaluates every task in p at baseline. Delayed tasks are
// collected into Attention in canonical order.
func Summarize(p *domain.Project, baseline string) Summary {
	s := Summary{
		Baseline:     baseline,
		Overall:      ProjectProgress(p.Tasks, p.Departments),
		TotalTasks:   len(p.Tasks),
		StatusCounts: make(map[domain.Status]int, len(domain.Statuses)),
		TotalWeight:  p.Departments.TotalWeight(),
	}
	for _, st := range domain.Statuses {
		s.StatusCounts[st] = 0
	}
	for _, t := range p.Tasks {
		s.StatusCounts[t.Status]++
		m := Evaluate(t, p.Departments, baseline)
		if m.Delayed {
			s.Delayed++
			s.Attention = append(s.Attention, Attention{Task: t, Metrics: m})
		}
	}
	CanonicalSort(s.Attention)

	for _, t := range wbs.TopLevel(p.Tasks) {
		if st, ok := domain.NormalizeDay(t.StartDate); ok && (s.Start == "" || st < s.Start) {
			s.Start = st
		}
		if en, ok := domain.NormalizeDay(t.EndDate); ok && en > s.End {
			s.End = en
		}
	}
	return s
}
