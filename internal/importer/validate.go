package importer

import (
	"fmt"
	"strings"
)

// ValidateTable checks the header row before conversion and returns every
// problem found. A table that passes can always be converted.
func ValidateTable(t *Table) []error {
	var errs []error

	seen := make(map[string]int, len(t.Header))
	hasName := false
	for i, h := range t.Header {
		key := headerKey(h)
		if key == "" {
			continue
		}
		if dept, ok := progressDepartment(h); ok {
			key = "progress:" + strings.ToLower(dept)
		}
		if prev, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("column %d: duplicate header %q (first seen in column %d)", i+1, h, prev+1))
			continue
		}
		seen[key] = i
		if key == headerKey(ColName) {
			hasName = true
		}
	}
	if !hasName {
		errs = append(errs, fmt.Errorf("header: required column %q is missing", ColName))
	}
	if len(t.Rows) == 0 {
		errs = append(errs, fmt.Errorf("table has no task rows"))
	}
	return errs
}
