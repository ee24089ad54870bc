package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/dto"
	"spotaway/internal/app/middleware"
	"spotaway/internal/app/outbox"
	"spotaway/internal/app/uow"
	domainbooking "spotaway/internal/domain/booking"
	domainlistings "spotaway/internal/domain/listings"
	domainrange "spotaway/internal/domain/shared/daterange"
	"spotaway/internal/domain/shared/fault"
)

const admitBookingKey = "booking.admit"

// AdmitBookingCommand requests a new booking for a listing.
type AdmitBookingCommand struct {
	ListingID       int64
	GuestID         int64
	StartDate       time.Time
	EndDate         time.Time
	IdempotencyKeyV string
}

func (c AdmitBookingCommand) Key() string { return admitBookingKey }

func (c AdmitBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c AdmitBookingCommand) ResultPrototype() any { return &dto.Booking{} }

// AdmitBookingHandler gates booking creation: the listing must exist, the
// guest must not own it, the range must be valid and in the future, and no
// existing booking for the listing may overlap. The record is written only
// after every check passes; the storage layer repeats the overlap check
// atomically so concurrent admissions cannot both land.
type AdmitBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *AdmitBookingHandler) Handle(ctx context.Context, cmd AdmitBookingCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, fault.StoreUnavailable(err)
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := time.Now().UTC()
	dr, err := domainrange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, fault.Validation("booking validation failed").
			WithField("endDate", "End date must be after start date")
	}
	if err := domainbooking.ValidateStartDate(dr, now); err != nil {
		return nil, fault.Validation("booking validation failed").
			WithField("startDate", "Start date cannot be in the past")
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, fault.NotFound("Listing couldn't be found")
		}
		return nil, fault.StoreUnavailable(err)
	}
	if listing.OwnedBy(domainlistings.OwnerID(cmd.GuestID)) {
		return nil, fault.Forbidden("cannot book own listing")
	}

	existing, err := unit.Bookings().ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, fault.StoreUnavailable(err)
	}
	if conflicts := domainbooking.FindConflicts(existing, dr); len(conflicts) > 0 {
		f := fault.Conflict("Sorry, this listing is already booked for the specified dates")
		f.Fields = domainbooking.ConflictFields(conflicts, dr)
		return nil, f
	}

	b, err := domainbooking.New(domainbooking.CreateParams{
		ListingID: listing.ID,
		GuestID:   domainbooking.GuestID(cmd.GuestID),
		Range:     dr,
		Now:       now,
	})
	if err != nil {
		return nil, fault.Validation(err.Error())
	}

	if err := unit.Bookings().Insert(ctx, b); err != nil {
		if errors.Is(err, domainbooking.ErrDatesConflict) {
			// A concurrent admission won the race between our check and the
			// insert; the store's atomic re-check rejected this one.
			return nil, fault.Conflict("Sorry, this listing is already booked for the specified dates")
		}
		return nil, fault.StoreUnavailable(err)
	}

	b.Record(domainbooking.BookingAdmitted{
		BookingID: b.ID,
		ListingID: b.ListingID,
		GuestID:   b.GuestID,
		Range:     b.Range,
		At:        now,
	})
	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, fault.StoreUnavailable(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("booking admitted", "booking_id", b.ID, "listing_id", b.ListingID, "guest_id", b.GuestID, "nights", b.Range.Nights())
	}
	result := dto.MapBooking(b)
	return &result, nil
}

func (h *AdmitBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[AdmitBookingCommand, *dto.Booking] = (*AdmitBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*AdmitBookingCommand)(nil)
