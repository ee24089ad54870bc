package listings

import (
	"context"
	"errors"

	"spotaway/internal/app/dto"
	handlersupport "spotaway/internal/app/handlers/support"
	"spotaway/internal/app/queries"
	"spotaway/internal/app/uow"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/fault"
	domainuser "spotaway/internal/domain/user"
)

const getListingDetailKey = "listings.detail"

// GetListingDetailQuery loads one listing with its images, owner and review
// aggregate.
type GetListingDetailQuery struct {
	ListingID int64
}

func (q GetListingDetailQuery) Key() string { return getListingDetailKey }

type GetListingDetailHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingDetailHandler) Handle(ctx context.Context, q GetListingDetailQuery) (dto.ListingDetail, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingDetail{}, fault.StoreUnavailable(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return dto.ListingDetail{}, fault.NotFound("Listing couldn't be found")
		}
		return dto.ListingDetail{}, fault.StoreUnavailable(err)
	}

	reviews, err := unit.Reviews().ListByListing(ctx, listing.ID)
	if err != nil {
		return dto.ListingDetail{}, fault.StoreUnavailable(err)
	}
	rating := domainreviews.Summarize(reviews)

	imgs, err := unit.ListingImages().ListByListing(ctx, listing.ID)
	if err != nil {
		return dto.ListingDetail{}, fault.StoreUnavailable(err)
	}

	var owner *domainuser.User
	if o, err := unit.Users().ByID(ctx, domainuser.ID(listing.Owner)); err == nil {
		owner = o
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return dto.ListingDetail{}, fault.StoreUnavailable(err)
	}

	return dto.MapListingDetail(listing, rating, imgs, owner), nil
}

var _ queries.Handler[GetListingDetailQuery, dto.ListingDetail] = (*GetListingDetailHandler)(nil)
