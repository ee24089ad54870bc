package listings

import (
	"context"

	"spotaway/internal/app/dto"
	handlersupport "spotaway/internal/app/handlers/support"
	"spotaway/internal/app/queries"
	"spotaway/internal/app/uow"
	domainlistings "spotaway/internal/domain/listings"
	"spotaway/internal/domain/shared/fault"
)

const ownerListingsKey = "listings.owner.list"

// OwnerListingsQuery loads every listing owned by the current user with the
// same rating and preview projection as the catalog, unpaginated.
type OwnerListingsQuery struct {
	OwnerID int64
}

func (q OwnerListingsQuery) Key() string { return ownerListingsKey }

type OwnerListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *OwnerListingsHandler) Handle(ctx context.Context, q OwnerListingsQuery) (dto.ListingPage, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingPage{}, fault.StoreUnavailable(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Listings().ListByOwner(ctx, domainlistings.OwnerID(q.OwnerID))
	if err != nil {
		return dto.ListingPage{}, fault.StoreUnavailable(err)
	}

	page, err := projectSummaries(ctx, unit, items)
	if err != nil {
		return dto.ListingPage{}, err
	}
	return dto.ListingPage{Listings: page, Total: len(items)}, nil
}

var _ queries.Handler[OwnerListingsQuery, dto.ListingPage] = (*OwnerListingsHandler)(nil)
