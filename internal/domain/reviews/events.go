package reviews

import (
	"strconv"
	"time"

	"spotaway/internal/domain/listings"
)

type ReviewSubmitted struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	AuthorID  AuthorID
	Stars     float64
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return strconv.FormatInt(int64(e.ReviewID), 10) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }

type ReviewUpdated struct {
	ReviewID ReviewID
	At       time.Time
}

func (e ReviewUpdated) EventName() string     { return "review.updated" }
func (e ReviewUpdated) AggregateID() string   { return strconv.FormatInt(int64(e.ReviewID), 10) }
func (e ReviewUpdated) OccurredAt() time.Time { return e.At }

type ReviewDeleted struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	At        time.Time
}

func (e ReviewDeleted) EventName() string     { return "review.deleted" }
func (e ReviewDeleted) AggregateID() string   { return strconv.FormatInt(int64(e.ReviewID), 10) }
func (e ReviewDeleted) OccurredAt() time.Time { return e.At }
