package booking

import (
	"strconv"
	"time"

	"spotaway/internal/domain/listings"
	"spotaway/internal/domain/shared/daterange"
)

type BookingAdmitted struct {
	BookingID BookingID
	ListingID listings.ListingID
	GuestID   GuestID
	Range     daterange.DateRange
	At        time.Time
}

func (e BookingAdmitted) EventName() string     { return "booking.admitted" }
func (e BookingAdmitted) AggregateID() string   { return strconv.FormatInt(int64(e.BookingID), 10) }
func (e BookingAdmitted) OccurredAt() time.Time { return e.At }

type BookingRejected struct {
	ListingID listings.ListingID
	GuestID   GuestID
	Range     daterange.DateRange
	At        time.Time
}

func (e BookingRejected) EventName() string     { return "booking.rejected" }
func (e BookingRejected) AggregateID() string   { return strconv.FormatInt(int64(e.ListingID), 10) }
func (e BookingRejected) OccurredAt() time.Time { return e.At }
