package reviews

import (
	"context"
	"errors"
	"log/slog"

	"spotaway/internal/app/dto"
	handlersupport "spotaway/internal/app/handlers/support"
	"spotaway/internal/app/queries"
	"spotaway/internal/app/uow"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/fault"
)

const listListingReviewsKey = "reviews.listing.list"

// ListListingReviewsQuery retrieves every review for a listing, newest first.
type ListListingReviewsQuery struct {
	ListingID int64
}

func (q ListListingReviewsQuery) Key() string { return listListingReviewsKey }

// ListListingReviewsHandler loads a listing's reviews with their images.
type ListListingReviewsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListListingReviewsHandler) Handle(ctx context.Context, q ListListingReviewsQuery) (dto.ReviewCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, fault.StoreUnavailable(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	listingID := domainlistings.ListingID(q.ListingID)
	if _, err := unit.Listings().ByID(ctx, listingID); err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return dto.ReviewCollection{}, fault.NotFound("Listing couldn't be found")
		}
		return dto.ReviewCollection{}, fault.StoreUnavailable(err)
	}

	all, err := unit.Reviews().ListByListing(ctx, listingID)
	if err != nil {
		return dto.ReviewCollection{}, fault.StoreUnavailable(err)
	}

	items, err := projectWithImages(ctx, unit, all)
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	if h.Logger != nil {
		h.Logger.Debug("listing reviews listed", "listing_id", listingID, "count", len(items))
	}
	return dto.ReviewCollection{Reviews: items, Total: len(all)}, nil
}

const listAuthorReviewsKey = "reviews.author.list"

// ListAuthorReviewsQuery loads every review written by the current user.
type ListAuthorReviewsQuery struct {
	AuthorID int64
}

func (q ListAuthorReviewsQuery) Key() string { return listAuthorReviewsKey }

type ListAuthorReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListAuthorReviewsHandler) Handle(ctx context.Context, q ListAuthorReviewsQuery) (dto.ReviewCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, fault.StoreUnavailable(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	all, err := unit.Reviews().ListByAuthor(ctx, domainreviews.AuthorID(q.AuthorID))
	if err != nil {
		return dto.ReviewCollection{}, fault.StoreUnavailable(err)
	}

	items, err := projectWithImages(ctx, unit, all)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	return dto.ReviewCollection{Reviews: items, Total: len(all)}, nil
}

// projectWithImages maps reviews to their payloads with one batched image
// lookup for the whole set.
func projectWithImages(ctx context.Context, unit uow.UnitOfWork, all []*domainreviews.Review) ([]dto.Review, error) {
	ids := make([]domainreviews.ReviewID, 0, len(all))
	for _, review := range all {
		ids = append(ids, review.ID)
	}
	imagesByReview, err := unit.ReviewImages().ListByReviews(ctx, ids)
	if err != nil {
		return nil, fault.StoreUnavailable(err)
	}
	items := make([]dto.Review, 0, len(all))
	for _, review := range all {
		items = append(items, dto.MapReviewWithImages(review, imagesByReview[review.ID]))
	}
	return items, nil
}

var (
	_ queries.Handler[ListListingReviewsQuery, dto.ReviewCollection] = (*ListListingReviewsHandler)(nil)
	_ queries.Handler[ListAuthorReviewsQuery, dto.ReviewCollection]  = (*ListAuthorReviewsHandler)(nil)
)
