package reviews

import (
	"context"
	"fmt"
	"testing"

	domainimages "spotaway/internal/domain/images"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/fault"
	"spotaway/internal/infra/storage/memory"
)

func seedListing(t *testing.T, factory memory.Factory) *domainlistings.Listing {
	t.Helper()
	listing, err := domainlistings.New(domainlistings.CreateParams{
		Owner: 1,
		Attributes: domainlistings.Attributes{
			Address:     "1 Main St",
			City:        "Springfield",
			State:       "OR",
			Country:     "USA",
			Lat:         44.05,
			Lng:         -123.09,
			Name:        "Quiet cabin",
			Description: "A cabin",
			Price:       120,
		},
	})
	if err != nil {
		t.Fatalf("listings.New: %v", err)
	}
	if err := factory.ListingsRepo.Save(context.Background(), listing); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return listing
}

func TestAdmitReviewHappyPath(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}

	got, err := h.Handle(context.Background(), AdmitReviewCommand{
		ListingID: int64(listing.ID),
		AuthorID:  2,
		Text:      "Great spot",
		Stars:     4,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got.ID == 0 {
		t.Error("review ID not assigned")
	}
	if got.Stars != 4 || got.Text != "Great spot" {
		t.Errorf("review = %+v, content mangled", got)
	}
}

func TestAdmitReviewDuplicateAuthor(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}
	ctx := context.Background()

	if _, err := h.Handle(ctx, AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 2, Text: "First", Stars: 4,
	}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	_, err := h.Handle(ctx, AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 2, Text: "Second", Stars: 5,
	})
	if !fault.Is(err, fault.KindConflict) {
		t.Fatalf("err = %v, want conflict fault", err)
	}
}

func TestAdmitReviewStarsPrecision(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	ctx := context.Background()

	whole := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}
	_, err := whole.Handle(ctx, AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 3, Text: "ok", Stars: 3.5,
	})
	if !fault.Is(err, fault.KindValidationFailed) {
		t.Fatalf("integer precision accepted 3.5: %v", err)
	}
	if fault.FieldsOf(err)["stars"] == "" {
		t.Errorf("fields = %v, stars message missing", fault.FieldsOf(err))
	}

	tenths := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionOneDecimal}
	if _, err := tenths.Handle(ctx, AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 3, Text: "ok", Stars: 3.5,
	}); err != nil {
		t.Fatalf("one-decimal precision rejected 3.5: %v", err)
	}
}

func TestAdmitReviewEmptyText(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}

	_, err := h.Handle(context.Background(), AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 2, Text: "   ", Stars: 4,
	})
	if !fault.Is(err, fault.KindValidationFailed) {
		t.Fatalf("err = %v, want validation fault", err)
	}
	if _, ok := fault.FieldsOf(err)["text"]; !ok {
		t.Errorf("fields = %v, text message missing", fault.FieldsOf(err))
	}
}

func TestAdmitReviewUnknownListing(t *testing.T) {
	factory := memory.NewFactory()
	h := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}

	_, err := h.Handle(context.Background(), AdmitReviewCommand{
		ListingID: 404, AuthorID: 2, Text: "ok", Stars: 4,
	})
	if !fault.Is(err, fault.KindNotFound) {
		t.Fatalf("err = %v, want not-found fault", err)
	}
}

func TestUpdateReviewForbiddenForOtherUser(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	ctx := context.Background()

	admit := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}
	created, err := admit.Handle(ctx, AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 2, Text: "Mine", Stars: 4,
	})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}

	update := &UpdateReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}
	_, err = update.Handle(ctx, UpdateReviewCommand{
		ReviewID: created.ID, AuthorID: 99, Text: "Hijacked", Stars: 1,
	})
	if !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("err = %v, want forbidden fault", err)
	}
}

func TestDeleteReviewRemovesIt(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	ctx := context.Background()

	admit := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}
	created, err := admit.Handle(ctx, AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 2, Text: "Mine", Stars: 4,
	})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}

	del := &DeleteReviewHandler{UoWFactory: factory}
	if _, err := del.Handle(ctx, DeleteReviewCommand{ReviewID: created.ID, AuthorID: 2}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list := &ListListingReviewsHandler{UoWFactory: factory}
	got, err := list.Handle(ctx, ListListingReviewsQuery{ListingID: int64(listing.ID)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.Total != 0 {
		t.Errorf("total = %d after delete, want 0", got.Total)
	}
}

func TestAttachReviewImageCap(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	ctx := context.Background()

	admit := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}
	created, err := admit.Handle(ctx, AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 2, Text: "Mine", Stars: 4,
	})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}

	attach := &AttachReviewImageHandler{UoWFactory: factory}
	for i := 0; i < domainimages.MaxPerReview; i++ {
		if _, err := attach.Handle(ctx, AttachReviewImageCommand{
			ReviewID: created.ID,
			AuthorID: 2,
			URL:      fmt.Sprintf("https://img.example/%d.jpg", i),
		}); err != nil {
			t.Fatalf("image %d: %v", i, err)
		}
	}

	_, err = attach.Handle(ctx, AttachReviewImageCommand{
		ReviewID: created.ID, AuthorID: 2, URL: "https://img.example/over.jpg",
	})
	if !fault.Is(err, fault.KindLimitExceeded) {
		t.Fatalf("err = %v, want limit-exceeded fault", err)
	}
}

func TestAttachReviewImageForbiddenForOtherUser(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	ctx := context.Background()

	admit := &AdmitReviewHandler{UoWFactory: factory, Precision: domainreviews.PrecisionInteger}
	created, err := admit.Handle(ctx, AdmitReviewCommand{
		ListingID: int64(listing.ID), AuthorID: 2, Text: "Mine", Stars: 4,
	})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}

	attach := &AttachReviewImageHandler{UoWFactory: factory}
	_, err = attach.Handle(ctx, AttachReviewImageCommand{
		ReviewID: created.ID, AuthorID: 99, URL: "https://img.example/x.jpg",
	})
	if !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("err = %v, want forbidden fault", err)
	}
}
