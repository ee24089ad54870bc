package dto

import (
	"time"

	domainbooking "spotaway/internal/domain/booking"
)

const dateLayout = "2006-01-02"

// Booking is the public booking payload. Dates render as calendar days.
type Booking struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	GuestID   int64     `json:"guest_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookingCollection struct {
	Bookings []Booking `json:"bookings"`
	Total    int       `json:"total"`
}

// Availability reports the outcome of a non-mutating conflict probe.
type Availability struct {
	Available bool              `json:"available"`
	Conflicts map[string]string `json:"conflicts,omitempty"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:        int64(b.ID),
		ListingID: int64(b.ListingID),
		GuestID:   int64(b.GuestID),
		StartDate: b.Range.Start.Format(dateLayout),
		EndDate:   b.Range.End.Format(dateLayout),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Bookings: make([]Booking, 0, len(items)), Total: len(items)}
	for _, b := range items {
		if b == nil {
			continue
		}
		out.Bookings = append(out.Bookings, MapBooking(b))
	}
	return out
}
