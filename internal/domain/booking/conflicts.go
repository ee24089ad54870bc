package booking

import (
	"errors"
	"time"

	"spotaway/internal/domain/shared/daterange"
)

var ErrStartDateInPast = errors.New("booking: start date is in the past")

// ValidateStartDate rejects ranges whose first night is before today, where
// "today" is derived from the admission time in UTC.
func ValidateStartDate(dr daterange.DateRange, now time.Time) error {
	if dr.Start.Before(daterange.Day(now)) {
		return ErrStartDateInPast
	}
	return nil
}

// FindConflicts returns every existing booking whose range overlaps the
// candidate under half-open semantics. The caller pre-filters by listing.
// Pure and deterministic; O(n) in the bookings for the listing.
func FindConflicts(existing []*Booking, candidate daterange.DateRange) []*Booking {
	var conflicts []*Booking
	for _, b := range existing {
		if b == nil {
			continue
		}
		if b.Range.Overlaps(candidate) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// ConflictFields names the candidate boundaries implicated in the given
// conflicts so clients can surface which date to change. A boundary is
// implicated when it falls inside a conflicting booking's span; a candidate
// that fully swallows a booking implicates both.
func ConflictFields(conflicts []*Booking, candidate daterange.DateRange) map[string]string {
	if len(conflicts) == 0 {
		return nil
	}
	fields := make(map[string]string, 2)
	lastNight := candidate.End.AddDate(0, 0, -1)
	for _, b := range conflicts {
		if b.Range.ContainsDate(candidate.Start) {
			fields["startDate"] = "Start date conflicts with an existing booking"
		}
		if b.Range.ContainsDate(lastNight) {
			fields["endDate"] = "End date conflicts with an existing booking"
		}
		if candidate.Start.Before(b.Range.Start) && !candidate.End.Before(b.Range.End) {
			fields["startDate"] = "Start date conflicts with an existing booking"
			fields["endDate"] = "End date conflicts with an existing booking"
		}
	}
	return fields
}
