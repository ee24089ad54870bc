package reviews

import "math"

// Summary is the rating aggregate for one listing. Average is nil when no
// reviews exist; "no reviews" is a distinct state, never zero or NaN. The
// unrounded mean is kept for any further computation.
type Summary struct {
	Average *float64
	Count   int
}

// Summarize computes the aggregate from a loaded review list. The result is
// invariant under reordering of the input.
func Summarize(reviews []*Review) Summary {
	var total float64
	count := 0
	for _, r := range reviews {
		if r == nil {
			continue
		}
		total += r.Stars
		count++
	}
	if count == 0 {
		return Summary{}
	}
	avg := total / float64(count)
	return Summary{Average: &avg, Count: count}
}

// Rounded returns the average rounded to one decimal place for display, or
// nil when there are no reviews.
func (s Summary) Rounded() *float64 {
	if s.Average == nil {
		return nil
	}
	rounded := math.Round(*s.Average*10) / 10
	return &rounded
}
