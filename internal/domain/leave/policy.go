package leave

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrReversedRange = errors.New("end date before start date")

// User-visible validation messages. These are UI contracts; the exact
// wording is load-bearing for the frontend.
const (
	msgReasonTooShort = "Leave reason must be at least 10 characters long"
	msgSickMinDays    = "Sick leave can only be applied for 3 or more days. For shorter periods (1-2 days), please use Casual Leave instead."
	msgSickNotice     = "Sick leave must be applied at least 2 hours before the start date."
	msgGeneralNotice  = "Leave requests must be submitted at least 24 hours in advance."
	msgReversedRange  = "End date cannot be before start date"
)

// CalculateDays returns the inclusive day count between start and end:
// a request starting and ending on the same day is 1 day. Partial days
// round up before the inclusive +1.
func CalculateDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, ErrReversedRange
	}
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1, nil
}

// DeductionTypes reports which balance buckets a request of the given
// type may deduct from, in priority order. The first bucket is the
// native one; a trailing annual entry is the fallback used when the
// native bucket is exhausted. Ledger mutation happens elsewhere.
func DeductionTypes(applied Category) []Category {
	switch applied {
	case CategoryAnnual:
		return []Category{CategoryAnnual}
	case CategorySick:
		return []Category{CategorySick, CategoryAnnual}
	case CategoryCasual:
		return []Category{CategoryCasual, CategoryAnnual}
	case CategoryUnpaid:
		return []Category{CategoryUnpaid}
	case CategoryMaternity, CategoryPaternity:
		return []Category{CategoryAnnual}
	default:
		return []Category{CategoryAnnual}
	}
}

// TypeDisabled reports whether a leave type should be unselectable for
// the given balance. Unpaid leave is never disabled; unknown types
// default to enabled.
func TypeDisabled(cat Category, balance Balance) bool {
	switch cat {
	case CategoryUnpaid:
		return false
	case CategoryAnnual, CategorySick, CategoryCasual:
		return balance.Remaining(cat) <= 0
	default:
		return false
	}
}

var typeCatalog = []TypeOption{
	{Value: CategoryAnnual, Label: "Annual Leave"},
	{Value: CategorySick, Label: "Sick Leave"},
	{Value: CategoryCasual, Label: "Casual Leave"},
	{Value: CategoryUnpaid, Label: "Unpaid Leave"},
}

// AvailableTypes returns the request-form catalog filtered down to the
// types the balance still permits, preserving catalog order.
func AvailableTypes(balance Balance) []TypeOption {
	out := make([]TypeOption, 0, len(typeCatalog))
	for _, option := range typeCatalog {
		if !TypeDisabled(option.Value, balance) {
			out = append(out, option)
		}
	}
	return out
}

var disabledReasons = map[Category]string{
	CategoryAnnual: "You have no Annual Leave days remaining",
	CategorySick:   "You have no Sick Leave days remaining",
	CategoryCasual: "You have no Casual Leave days remaining",
}

// DisabledReason explains why a leave type is unselectable. Pure lookup
// keyed by type.
func DisabledReason(cat Category) string {
	if reason, ok := disabledReasons[cat]; ok {
		return reason
	}
	return "This leave type is not available"
}

// Verdict is the outcome of validating a proposed request. Invalid is
// an expected, user-facing result, not an error.
type Verdict struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func invalid(message string) Verdict {
	return Verdict{Valid: false, Error: message}
}

// Validate checks a proposed request against the policy chain; the first
// failing rule wins. The caller supplies now so the advance-notice rules
// are deterministic under test.
//
// The balance rule always consults the annual bucket, even for sick and
// casual requests. That mirrors DeductionTypes, where sick and casual
// deductions cascade into annual when the native bucket runs dry.
func Validate(cat Category, start, end time.Time, balance Balance, reason string, now time.Time) Verdict {
	if len(strings.TrimSpace(reason)) < 10 {
		return invalid(msgReasonTooShort)
	}

	days, err := CalculateDays(start, end)
	if err != nil {
		return invalid(msgReversedRange)
	}

	if cat == CategorySick && days < 3 {
		return invalid(msgSickMinDays)
	}

	hoursUntilStart := start.Sub(now).Hours()
	if cat == CategorySick {
		if hoursUntilStart < 2 {
			return invalid(msgSickNotice)
		}
	} else if hoursUntilStart < 24 {
		return invalid(msgGeneralNotice)
	}

	if cat != CategoryUnpaid {
		remaining := balance.Remaining(CategoryAnnual)
		if days > remaining {
			return invalid(fmt.Sprintf("You need %d days but only have %d days remaining in your Annual Leave balance.", days, remaining))
		}
	}

	return Verdict{Valid: true}
}
