package booking

import (
	"context"
	"errors"
	"time"

	"spotaway/internal/app/dto"
	handlersupport "spotaway/internal/app/handlers/support"
	"spotaway/internal/app/queries"
	"spotaway/internal/app/uow"
	domainbooking "spotaway/internal/domain/booking"
	domainlistings "spotaway/internal/domain/listings"
	domainrange "spotaway/internal/domain/shared/daterange"
	"spotaway/internal/domain/shared/fault"
)

const checkAvailabilityKey = "booking.availability"

// CheckAvailabilityQuery probes a candidate range without writing anything.
type CheckAvailabilityQuery struct {
	ListingID int64
	StartDate time.Time
	EndDate   time.Time
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, fault.StoreUnavailable(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.StartDate, q.EndDate)
	if err != nil {
		return dto.Availability{}, fault.Validation("booking validation failed").
			WithField("endDate", "End date must be after start date")
	}

	if _, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID)); err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return dto.Availability{}, fault.NotFound("Listing couldn't be found")
		}
		return dto.Availability{}, fault.StoreUnavailable(err)
	}

	existing, err := unit.Bookings().ListByListing(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Availability{}, fault.StoreUnavailable(err)
	}
	conflicts := domainbooking.FindConflicts(existing, dr)
	if len(conflicts) == 0 {
		return dto.Availability{Available: true}, nil
	}
	return dto.Availability{
		Available: false,
		Conflicts: domainbooking.ConflictFields(conflicts, dr),
	}, nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
