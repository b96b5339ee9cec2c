package service

import (
	"fmt"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// baselineOr returns baseline normalized, or the calendar day of now when
// baseline is empty.
func baselineOr(baseline string, now time.Time) (string, error) {
	if baseline == "" {
		return domain.FormatDay(now.UTC()), nil
	}
	day, ok := domain.NormalizeDay(baseline)
	if !ok {
		return "", domain.Invalid(nil, "baseline", "invalid date %q", baseline)
	}
	return day, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return domain.Invalid(nil, "", "%s", msg)
}
