package daterange

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) DateRange {
	t.Helper()
	dr, err := New(start, end)
	if err != nil {
		t.Fatalf("New(%v, %v): %v", start, end, err)
	}
	return dr
}

func TestNewRejectsInvertedAndEmptyRanges(t *testing.T) {
	if _, err := New(date(2025, 6, 5), date(2025, 6, 1)); err != ErrInvalidRange {
		t.Errorf("inverted range: got %v, want ErrInvalidRange", err)
	}
	if _, err := New(date(2025, 6, 1), date(2025, 6, 1)); err != ErrInvalidRange {
		t.Errorf("zero-night range: got %v, want ErrInvalidRange", err)
	}
}

func TestNewNormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	dr := mustRange(t, time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC), time.Date(2025, 6, 4, 3, 0, 0, 0, loc))
	if !dr.Start.Equal(date(2025, 6, 1)) {
		t.Errorf("Start = %v, want 2025-06-01T00:00Z", dr.Start)
	}
	if !dr.End.Equal(date(2025, 6, 4)) {
		t.Errorf("End = %v, want 2025-06-04T00:00Z", dr.End)
	}
}

func TestOverlapsHalfOpenBoundary(t *testing.T) {
	base := mustRange(t, date(2025, 6, 1), date(2025, 6, 5))

	// Touching ranges share a boundary date but no night.
	after := mustRange(t, date(2025, 6, 5), date(2025, 6, 9))
	if base.Overlaps(after) {
		t.Error("range starting at base.End must not overlap")
	}
	before := mustRange(t, date(2025, 5, 28), date(2025, 6, 1))
	if base.Overlaps(before) {
		t.Error("range ending at base.Start must not overlap")
	}

	inside := mustRange(t, date(2025, 6, 2), date(2025, 6, 4))
	if !base.Overlaps(inside) {
		t.Error("contained range must overlap")
	}
	spanning := mustRange(t, date(2025, 5, 30), date(2025, 6, 10))
	if !base.Overlaps(spanning) {
		t.Error("spanning range must overlap")
	}
}

func TestOverlapsIsSymmetric(t *testing.T) {
	cases := []struct {
		a, b DateRange
	}{
		{mustRange(t, date(2025, 6, 1), date(2025, 6, 5)), mustRange(t, date(2025, 6, 4), date(2025, 6, 11))},
		{mustRange(t, date(2025, 6, 1), date(2025, 6, 5)), mustRange(t, date(2025, 6, 5), date(2025, 6, 9))},
		{mustRange(t, date(2025, 6, 10), date(2025, 6, 15)), mustRange(t, date(2025, 6, 1), date(2025, 6, 5))},
	}
	for _, tc := range cases {
		if tc.a.Overlaps(tc.b) != tc.b.Overlaps(tc.a) {
			t.Errorf("Overlaps not symmetric for %v / %v", tc.a, tc.b)
		}
	}
}

func TestContainsDate(t *testing.T) {
	dr := mustRange(t, date(2025, 6, 1), date(2025, 6, 5))
	if !dr.ContainsDate(date(2025, 6, 1)) {
		t.Error("start date must be contained")
	}
	if dr.ContainsDate(date(2025, 6, 5)) {
		t.Error("end date must not be contained")
	}
	if !dr.ContainsDate(date(2025, 6, 4)) {
		t.Error("interior date must be contained")
	}
}

func TestNights(t *testing.T) {
	dr := mustRange(t, date(2025, 6, 1), date(2025, 6, 5))
	if got := dr.Nights(); got != 4 {
		t.Errorf("Nights = %d, want 4", got)
	}
}
