package domain

import "strings"

type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "On Hold"
)

// Statuses lists every task status in display order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusOnHold}

var statusAliases = map[string]Status{
	"notstarted": StatusNotStarted,
	"todo":       StatusNotStarted,
	"inprogress": StatusInProgress,
	"started":    StatusInProgress,
	"completed":  StatusCompleted,
	"complete":   StatusCompleted,
	"done":       StatusCompleted,
	"onhold":     StatusOnHold,
	"hold":       StatusOnHold,
	"paused":     StatusOnHold,
}

// ParseStatus maps a loosely formatted status label onto a Status.
// Unknown or empty input yields StatusNotStarted and ok == false.
func ParseStatus(s string) (Status, bool) {
	key := strings.ToLower(s)
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	if st, ok := statusAliases[key]; ok {
		return st, true
	}
	return StatusNotStarted, false
}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type WarningKind string

const (
	WarnOrphanPromoted  WarningKind = "orphan_promoted"
	WarnCycleBroken     WarningKind = "cycle_broken"
	WarnDuplicateID     WarningKind = "duplicate_id"
	WarnInvalidDate     WarningKind = "invalid_date"
	WarnUnknownStatus   WarningKind = "unknown_status"
	WarnProgressClamped WarningKind = "progress_clamped"
	WarnUnknownColumn   WarningKind = "unknown_column"
	WarnNewDepartment   WarningKind = "department_created"
)

// RiskLevel grades how far a task has fallen behind its plan.
type RiskLevel string

const (
	RiskOnTrack  RiskLevel = "on_track"
	RiskAtRisk   RiskLevel = "at_risk"
	RiskCritical RiskLevel = "critical"
)
