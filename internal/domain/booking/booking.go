package booking

import (
	"context"
	"errors"
	"time"

	"spotaway/internal/domain/listings"
	"spotaway/internal/domain/shared/daterange"
	"spotaway/internal/domain/shared/events"
)

var (
	ErrNotFound      = errors.New("booking: not found")
	ErrGuestRequired = errors.New("booking: guest id required")
	// ErrDatesConflict is returned by stores when an insert would overlap an
	// existing booking for the same listing.
	ErrDatesConflict = errors.New("booking: dates conflict with an existing booking")
)

type BookingID int64

type GuestID int64

type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	GuestID   GuestID
	Range     daterange.DateRange
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// Repository persists bookings. Insert must atomically re-run the overlap
// check and the write as one unit per listing, so that two concurrent
// admissions for overlapping ranges can never both succeed. On overlap it
// returns ErrDatesConflict and writes nothing.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	ListByGuest(ctx context.Context, guestID GuestID) ([]*Booking, error)
	Insert(ctx context.Context, booking *Booking) error
}

type CreateParams struct {
	ListingID listings.ListingID
	GuestID   GuestID
	Range     daterange.DateRange
	Now       time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.GuestID <= 0 {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Booking{
		ListingID: params.ListingID,
		GuestID:   params.GuestID,
		Range:     params.Range,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
