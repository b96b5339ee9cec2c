package scheduler

import (
	"math"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// CriticalGap is the gap at or below which a delayed task is critical.
const CriticalGap = -20

type RiskInput struct {
	Baseline string
	EndDate  string
	Overall  int
	Gap      int
	Status   domain.Status
}

type RiskResult struct {
	Level domain.RiskLevel
	// DaysLeft is nil when either the end date or the baseline is unparseable.
	DaysLeft *int
}

func ComputeRisk(input RiskInput) RiskResult {
	var result RiskResult
	end, okE := domain.ParseDay(input.EndDate)
	base, okB := domain.ParseDay(input.Baseline)
	if okE && okB {
		daysLeft := int(math.Round(end.Sub(base).Hours() / 24))
		result.DaysLeft = &daysLeft
	}

	// Finished work cannot be late.
	if input.Overall >= 100 || input.Status == domain.StatusCompleted {
		result.Level = domain.RiskOnTrack
		return result
	}

	switch {
	case result.DaysLeft != nil && *result.DaysLeft < 0:
		result.Level = domain.RiskCritical
	case input.Gap <= CriticalGap:
		result.Level = domain.RiskCritical
	case input.Gap < 0:
		result.Level = domain.RiskAtRisk
	case result.DaysLeft != nil && *result.DaysLeft <= 3 && input.Overall < 50:
		result.Level = domain.RiskAtRisk
	default:
		result.Level = domain.RiskOnTrack
	}
	return result
}
