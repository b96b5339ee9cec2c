package scheduler

import (
	"sort"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// RiskPriority returns a sort priority (lower = more urgent).
func RiskPriority(r domain.RiskLevel) int {
	switch r {
	case domain.RiskCritical:
		return 0
	case domain.RiskAtRisk:
		return 1
	default:
		return 2
	}
}

// Attention is a task that needs follow-up, with its metrics.
type Attention struct {
	Task    domain.Task `json:"task" yaml:"task"`
	Metrics TaskMetrics `json:"metrics" yaml:"metrics"`
}

// CanonicalSort orders attention items deterministically:
// 1. Risk: critical > at_risk > on_track
// 2. Gap: most behind first
// 3. End date: earliest first (unparseable last)
// 4. Task ID: lexical ascending
func CanonicalSort(items []Attention) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if pa, pb := RiskPriority(a.Metrics.Risk), RiskPriority(b.Metrics.Risk); pa != pb {
			return pa < pb
		}
		if a.Metrics.Gap != b.Metrics.Gap {
			return a.Metrics.Gap < b.Metrics.Gap
		}
		ea, okA := domain.ParseDay(a.Task.EndDate)
		eb, okB := domain.ParseDay(b.Task.EndDate)
		switch {
		case okA && okB && !ea.Equal(eb):
			return ea.Before(eb)
		case okA != okB:
			return okA
		}
		return a.Task.ID < b.Task.ID
	})
}
