package wbs

import (
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// OverallProgress is the weighted mean of a task's department progress.
// Only departments with positive weight whose key is present on the task
// count toward numerator and denominator. Returns 0 when nothing counts.
func OverallProgress(t domain.Task, departments domain.Departments) int {
	var sum, weight float64
	for _, d := range departments {
		if d.Weight <= 0 {
			continue
		}
		v, ok := t.DepartmentProgress[d.ID]
		if !ok {
			continue
		}
		sum += float64(v) * d.Weight
		weight += d.Weight
	}
	if weight == 0 {
		return 0
	}
	return domain.ClampPercent(domain.RoundHalfUp(sum / weight))
}

// RollupProgress replaces each parent's department progress with the
// unweighted mean of its direct children, per department. A child missing
// a department counts as 0. Leaves are left as they are.
func RollupProgress(tasks []domain.Task, departments domain.Departments) []domain.Task {
	out := domain.CloneTasks(tasks)
	rollupProgress(BuildForest(out), out, departments)
	return out
}

func rollupProgress(f *Forest, tasks []domain.Task, departments domain.Departments) {
	for _, i := range f.BottomUp() {
		kids := f.Children[i]
		if len(kids) == 0 {
			continue
		}
		m := make(map[string]int, len(departments))
		for _, d := range departments {
			var sum int
			for _, c := range kids {
				sum += tasks[c].DepartmentProgress[d.ID]
			}
			m[d.ID] = domain.RoundHalfUp(float64(sum) / float64(len(kids)))
		}
		tasks[i].DepartmentProgress = m
	}
}

// RollupDates sets each parent's start to the earliest valid child start
// and its end to the latest valid child end. A bound with no valid child
// value keeps the parent's own value.
func RollupDates(tasks []domain.Task) []domain.Task {
	out := domain.CloneTasks(tasks)
	rollupDates(BuildForest(out), out)
	return out
}

func rollupDates(f *Forest, tasks []domain.Task) {
	for _, i := range f.BottomUp() {
		kids := f.Children[i]
		if len(kids) == 0 {
			continue
		}
		var minStart, maxEnd time.Time
		var haveStart, haveEnd bool
		for _, c := range kids {
			if s, ok := domain.ParseDay(tasks[c].StartDate); ok && (!haveStart || s.Before(minStart)) {
				minStart, haveStart = s, true
			}
			if e, ok := domain.ParseDay(tasks[c].EndDate); ok && (!haveEnd || e.After(maxEnd)) {
				maxEnd, haveEnd = e, true
			}
		}
		if haveStart {
			tasks[i].StartDate = domain.FormatDay(minStart)
		}
		if haveEnd {
			tasks[i].EndDate = domain.FormatDay(maxEnd)
		}
	}
}
