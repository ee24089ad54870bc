package listings

import (
	"context"
	"fmt"
	"testing"

	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/infra/storage/memory"
)

func seedCatalog(t *testing.T, factory memory.Factory, n int) []*domainlistings.Listing {
	t.Helper()
	ctx := context.Background()
	out := make([]*domainlistings.Listing, 0, n)
	for i := 0; i < n; i++ {
		listing, err := domainlistings.New(domainlistings.CreateParams{
			Owner: domainlistings.OwnerID(i%3 + 1),
			Attributes: domainlistings.Attributes{
				Address:     fmt.Sprintf("%d Main St", i+1),
				City:        "Springfield",
				State:       "OR",
				Country:     "USA",
				Lat:         40 + float64(i)*0.1,
				Lng:         -120 - float64(i)*0.1,
				Name:        fmt.Sprintf("Cabin %d", i+1),
				Description: "A cabin",
				Price:       100 + float64(i)*10,
			},
		})
		if err != nil {
			t.Fatalf("listings.New %d: %v", i, err)
		}
		if err := factory.ListingsRepo.Save(ctx, listing); err != nil {
			t.Fatalf("save listing %d: %v", i, err)
		}
		out = append(out, listing)
	}
	return out
}

func TestSearchDefaultsAndTotal(t *testing.T) {
	factory := memory.NewFactory()
	seedCatalog(t, factory, 25)
	h := &SearchListingsHandler{UoWFactory: factory}

	page, err := h.Handle(context.Background(), SearchListingsQuery{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if page.Page != domainlistings.DefaultPage || page.PageSize != domainlistings.DefaultPageSize {
		t.Errorf("page meta = %d/%d, want defaults %d/%d",
			page.Page, page.PageSize, domainlistings.DefaultPage, domainlistings.DefaultPageSize)
	}
	if page.Total != 25 {
		t.Errorf("total = %d, want 25", page.Total)
	}
	if len(page.Listings) != domainlistings.DefaultPageSize {
		t.Errorf("len = %d, want %d", len(page.Listings), domainlistings.DefaultPageSize)
	}
}

// Pages must partition the catalog without duplicates or gaps under a fixed
// order.
func TestSearchPagesAreStable(t *testing.T) {
	factory := memory.NewFactory()
	seedCatalog(t, factory, 25)
	h := &SearchListingsHandler{UoWFactory: factory}
	ctx := context.Background()

	seen := map[int64]bool{}
	lastID := int64(0)
	for pageNo := 1; pageNo <= 3; pageNo++ {
		page, err := h.Handle(ctx, SearchListingsQuery{Params: domainlistings.SearchParams{
			Page:     pageNo,
			PageSize: 10,
		}})
		if err != nil {
			t.Fatalf("page %d: %v", pageNo, err)
		}
		for _, item := range page.Listings {
			if seen[item.ID] {
				t.Errorf("listing %d appears on more than one page", item.ID)
			}
			seen[item.ID] = true
			if item.ID <= lastID {
				t.Errorf("ordering broke at listing %d after %d", item.ID, lastID)
			}
			lastID = item.ID
		}
	}
	if len(seen) != 25 {
		t.Errorf("pages covered %d listings, want 25", len(seen))
	}
}

func TestSearchClampsOutOfRangePaging(t *testing.T) {
	factory := memory.NewFactory()
	seedCatalog(t, factory, 5)
	h := &SearchListingsHandler{UoWFactory: factory}

	page, err := h.Handle(context.Background(), SearchListingsQuery{Params: domainlistings.SearchParams{
		Page:     100,
		PageSize: 500,
	}})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if page.Page != domainlistings.MaxPage {
		t.Errorf("page = %d, want clamped %d", page.Page, domainlistings.MaxPage)
	}
	if page.PageSize != domainlistings.MaxPageSize {
		t.Errorf("page size = %d, want clamped %d", page.PageSize, domainlistings.MaxPageSize)
	}
	if len(page.Listings) != 0 {
		t.Errorf("out-of-range page returned %d items, want 0", len(page.Listings))
	}
	if page.Total != 5 {
		t.Errorf("total = %d, want 5", page.Total)
	}
}

func TestSearchPriceFilter(t *testing.T) {
	factory := memory.NewFactory()
	seedCatalog(t, factory, 10)
	h := &SearchListingsHandler{UoWFactory: factory}

	minPrice := 120.0
	maxPrice := 150.0
	page, err := h.Handle(context.Background(), SearchListingsQuery{Params: domainlistings.SearchParams{
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	}})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if page.Total != 4 {
		t.Errorf("total = %d, want 4 listings priced 120-150", page.Total)
	}
	for _, item := range page.Listings {
		if item.Price < minPrice || item.Price > maxPrice {
			t.Errorf("listing %d price %v escaped the filter", item.ID, item.Price)
		}
	}
}

func TestSearchInvertedBoundsMatchNothing(t *testing.T) {
	factory := memory.NewFactory()
	seedCatalog(t, factory, 5)
	h := &SearchListingsHandler{UoWFactory: factory}

	lo, hi := 10.0, 5.0
	page, err := h.Handle(context.Background(), SearchListingsQuery{Params: domainlistings.SearchParams{
		MinPrice: &lo,
		MaxPrice: &hi,
	}})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if page.Total != 0 || len(page.Listings) != 0 {
		t.Errorf("inverted bounds matched %d listings, want 0", page.Total)
	}
}

// Listings without reviews must surface a nil rating, not a zero.
func TestSearchUnreviewedListingHasNilRating(t *testing.T) {
	factory := memory.NewFactory()
	seeded := seedCatalog(t, factory, 2)
	ctx := context.Background()

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ListingID: seeded[0].ID,
		AuthorID:  9,
		Text:      "nice",
		Stars:     5,
		Precision: domainreviews.PrecisionInteger,
	})
	if err != nil {
		t.Fatalf("submit review: %v", err)
	}
	if err := factory.ReviewsRepo.Save(ctx, review); err != nil {
		t.Fatalf("save review: %v", err)
	}

	h := &SearchListingsHandler{UoWFactory: factory}
	page, err := h.Handle(ctx, SearchListingsQuery{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	byID := map[int64]int{}
	for i, item := range page.Listings {
		byID[item.ID] = i
	}
	reviewed := page.Listings[byID[int64(seeded[0].ID)]]
	if reviewed.AvgRating == nil || *reviewed.AvgRating != 5 {
		t.Errorf("reviewed listing rating = %v, want 5", reviewed.AvgRating)
	}
	bare := page.Listings[byID[int64(seeded[1].ID)]]
	if bare.AvgRating != nil {
		t.Errorf("unreviewed listing rating = %v, want nil", *bare.AvgRating)
	}
	if bare.PreviewImage != nil {
		t.Errorf("unreviewed listing preview = %v, want nil", *bare.PreviewImage)
	}
}

func TestOwnerListings(t *testing.T) {
	factory := memory.NewFactory()
	seedCatalog(t, factory, 6)
	h := &OwnerListingsHandler{UoWFactory: factory}

	got, err := h.Handle(context.Background(), OwnerListingsQuery{OwnerID: 1})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got.Total != 2 || len(got.Listings) != 2 {
		t.Errorf("owner 1 has %d listings (total %d), want 2", len(got.Listings), got.Total)
	}
	for _, item := range got.Listings {
		if item.OwnerID != 1 {
			t.Errorf("listing %d owned by %d leaked into owner 1 results", item.ID, item.OwnerID)
		}
	}
}
