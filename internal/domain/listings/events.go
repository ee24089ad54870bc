package listings

import (
	"strconv"
	"time"
)

type ListingCreatedEvent struct {
	ListingID ListingID
	OwnerID   OwnerID
	At        time.Time
}

func (e ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string   { return strconv.FormatInt(int64(e.ListingID), 10) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

type ListingUpdatedEvent struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUpdatedEvent) EventName() string     { return "listing.updated" }
func (e ListingUpdatedEvent) AggregateID() string   { return strconv.FormatInt(int64(e.ListingID), 10) }
func (e ListingUpdatedEvent) OccurredAt() time.Time { return e.At }

type ListingDeletedEvent struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingDeletedEvent) EventName() string     { return "listing.deleted" }
func (e ListingDeletedEvent) AggregateID() string   { return strconv.FormatInt(int64(e.ListingID), 10) }
func (e ListingDeletedEvent) OccurredAt() time.Time { return e.At }
