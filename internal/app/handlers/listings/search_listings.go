package listings

import (
	"context"
	"log/slog"

	"spotaway/internal/app/dto"
	handlersupport "spotaway/internal/app/handlers/support"
	"spotaway/internal/app/queries"
	"spotaway/internal/app/uow"
	domainlistings "spotaway/internal/domain/listings"
	"spotaway/internal/domain/shared/fault"
)

const searchListingsKey = "listings.search"

// SearchListingsQuery pages through the catalog with optional geo and price
// filters.
type SearchListingsQuery struct {
	Params domainlistings.SearchParams
}

func (q SearchListingsQuery) Key() string { return searchListingsKey }

// SearchListingsHandler plans one page of catalog results: a filtered page of
// listings, then one batched ratings query and one batched preview-image
// query for exactly the IDs on that page.
type SearchListingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *SearchListingsHandler) Handle(ctx context.Context, q SearchListingsQuery) (dto.ListingPage, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingPage{}, fault.StoreUnavailable(err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := q.Params.Normalized()
	result, err := unit.Listings().Search(ctx, params)
	if err != nil {
		return dto.ListingPage{}, fault.StoreUnavailable(err)
	}

	page, err := projectSummaries(ctx, unit, result.Items)
	if err != nil {
		return dto.ListingPage{}, err
	}

	if h.Logger != nil {
		h.Logger.Debug("listings searched",
			"page", params.Page, "page_size", params.PageSize,
			"count", len(page), "total", result.Total)
	}
	return dto.ListingPage{
		Listings: page,
		Total:    result.Total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// projectSummaries decorates listings with their rating aggregate and preview
// image in two batched lookups, never per row.
func projectSummaries(ctx context.Context, unit uow.UnitOfWork, items []*domainlistings.Listing) ([]dto.ListingSummary, error) {
	ids := make([]domainlistings.ListingID, 0, len(items))
	for _, l := range items {
		ids = append(ids, l.ID)
	}

	ratings, err := unit.Reviews().RatingsByListing(ctx, ids)
	if err != nil {
		return nil, fault.StoreUnavailable(err)
	}
	previews, err := unit.ListingImages().PreviewURLs(ctx, ids)
	if err != nil {
		return nil, fault.StoreUnavailable(err)
	}

	page := make([]dto.ListingSummary, 0, len(items))
	for _, l := range items {
		var previewURL *string
		if url, ok := previews[l.ID]; ok {
			previewURL = &url
		}
		page = append(page, dto.MapListingSummary(l, ratings[l.ID], previewURL))
	}
	return page, nil
}

var _ queries.Handler[SearchListingsQuery, dto.ListingPage] = (*SearchListingsHandler)(nil)
