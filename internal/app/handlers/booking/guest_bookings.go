package booking

import (
	"context"

	"spotaway/internal/app/dto"
	handlersupport "spotaway/internal/app/handlers/support"
	"spotaway/internal/app/queries"
	"spotaway/internal/app/uow"
	domainbooking "spotaway/internal/domain/booking"
	"spotaway/internal/domain/shared/fault"
)

const listGuestBookingsKey = "booking.guest_list"

// ListGuestBookingsQuery loads every booking made by the current user.
type ListGuestBookingsQuery struct {
	GuestID int64
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, fault.StoreUnavailable(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Bookings().ListByGuest(ctx, domainbooking.GuestID(q.GuestID))
	if err != nil {
		return dto.BookingCollection{}, fault.StoreUnavailable(err)
	}
	return dto.MapBookings(items), nil
}

var _ queries.Handler[ListGuestBookingsQuery, dto.BookingCollection] = (*ListGuestBookingsHandler)(nil)
