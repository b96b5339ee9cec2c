package importer

import "strings"

// Column names shared with the exporter. Header matching ignores case,
// surrounding spaces and inner spaces or underscores.
const (
	ColID              = "id"
	ColParentID        = "parentId"
	ColName            = "name"
	ColDeliverableName = "deliverableName"
	ColStartDate       = "startDate"
	ColEndDate         = "endDate"
	ColAssignee        = "assignee"
	ColStatus          = "status"
	ColNotes           = "notes"

	ColPlannedProgress = "plannedProgress"
	ColOverallProgress = "overallProgress"
	ColGap             = "gap"
	ColDurationDays    = "durationDays"

	// ProgressPrefix starts a per-department progress column, followed by
	// the department name.
	ProgressPrefix = "Progress:"
)

// TaskColumns lists the fixed task columns in export order.
var TaskColumns = []string{
	ColID, ColParentID, ColName, ColDeliverableName, ColStartDate,
	ColEndDate, ColAssignee, ColStatus, ColNotes,
}

// DerivedColumns are written on export and ignored on import.
var DerivedColumns = []string{ColPlannedProgress, ColOverallProgress, ColGap, ColDurationDays}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// ProgressColumn is the header for a department's progress column.
func ProgressColumn(department string) string {
	return ProgressPrefix + " " + department
}

// NumericColumn reports whether cells under header h hold integers: the
// department progress columns and the derived columns.
func NumericColumn(h string) bool {
	if _, ok := progressDepartment(h); ok {
		return true
	}
	k := headerKey(h)
	for _, c := range DerivedColumns {
		if headerKey(c) == k {
			return true
		}
	}
	return false
}

// progressDepartment returns the department named by a progress header.
func progressDepartment(h string) (string, bool) {
	h = strings.TrimSpace(h)
	if len(h) < len(ProgressPrefix) || !strings.EqualFold(h[:len(ProgressPrefix)], ProgressPrefix) {
		return "", false
	}
	name := strings.TrimSpace(h[len(ProgressPrefix):])
	return name, name != ""
}
