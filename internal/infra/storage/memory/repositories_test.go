package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domainbooking "spotaway/internal/domain/booking"
	domainimages "spotaway/internal/domain/images"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/daterange"
)

func mustRange(t *testing.T, startDay, endDay int) daterange.DateRange {
	t.Helper()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	dr, err := daterange.New(base.AddDate(0, 0, startDay), base.AddDate(0, 0, endDay))
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}
	return dr
}

func TestListingRepositoryAssignsIDs(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	first := &domainlistings.Listing{Owner: 1, Name: "a"}
	second := &domainlistings.Listing{Owner: 1, Name: "b"}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first.ID == 0 || second.ID == 0 || first.ID == second.ID {
		t.Errorf("IDs = %d, %d, want distinct non-zero", first.ID, second.ID)
	}

	got, err := repo.ByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	got.Name = "mutated"
	reread, err := repo.ByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("ByID again: %v", err)
	}
	if reread.Name != "a" {
		t.Error("repository leaked internal state: mutation on a read result persisted")
	}
}

func TestBookingInsertRejectsOverlap(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, &domainbooking.Booking{
		ListingID: 7, GuestID: 1, Range: mustRange(t, 0, 5),
	}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := repo.Insert(ctx, &domainbooking.Booking{
		ListingID: 7, GuestID: 2, Range: mustRange(t, 3, 8),
	})
	if !errors.Is(err, domainbooking.ErrDatesConflict) {
		t.Fatalf("err = %v, want ErrDatesConflict", err)
	}
	if err := repo.Insert(ctx, &domainbooking.Booking{
		ListingID: 8, GuestID: 2, Range: mustRange(t, 3, 8),
	}); err != nil {
		t.Errorf("other listing blocked: %v", err)
	}
}

func TestBookingInsertRaceAdmitsOne(t *testing.T) {
	repo := NewBookingRepository()
	const racers = 16
	errs := make([]error, racers)
	contested := mustRange(t, 0, 4)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Insert(context.Background(), &domainbooking.Booking{
				ListingID: 7,
				GuestID:   domainbooking.GuestID(i + 1),
				Range:     contested,
			})
		}(i)
	}
	wg.Wait()

	admitted := 0
	for i, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, domainbooking.ErrDatesConflict):
		default:
			t.Errorf("racer %d: unexpected error %v", i, err)
		}
	}
	if admitted != 1 {
		t.Fatalf("admitted = %d, want exactly 1", admitted)
	}

	stored, err := repo.ListByListing(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByListing: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored = %d bookings, want 1", len(stored))
	}
}

func TestListingDeleteCascades(t *testing.T) {
	factory := NewFactory()
	ctx := context.Background()

	doomed := &domainlistings.Listing{Owner: 1, Name: "doomed"}
	kept := &domainlistings.Listing{Owner: 1, Name: "kept"}
	for _, l := range []*domainlistings.Listing{doomed, kept} {
		if err := factory.ListingsRepo.Save(ctx, l); err != nil {
			t.Fatalf("save listing: %v", err)
		}
	}
	if err := factory.BookingRepo.Insert(ctx, &domainbooking.Booking{
		ListingID: doomed.ID, GuestID: 2, Range: mustRange(t, 0, 3),
	}); err != nil {
		t.Fatalf("insert booking: %v", err)
	}
	if err := factory.BookingRepo.Insert(ctx, &domainbooking.Booking{
		ListingID: kept.ID, GuestID: 2, Range: mustRange(t, 0, 3),
	}); err != nil {
		t.Fatalf("insert kept booking: %v", err)
	}
	if err := factory.ReviewsRepo.Save(ctx, &domainreviews.Review{
		ListingID: doomed.ID, AuthorID: 2, Text: "ok", Stars: 4,
	}); err != nil {
		t.Fatalf("save review: %v", err)
	}
	if err := factory.ListingImagesRepo.Save(ctx, &domainimages.ListingImage{
		ListingID: doomed.ID, URL: "https://img.example/a.jpg", Preview: true,
	}); err != nil {
		t.Fatalf("save image: %v", err)
	}

	if err := factory.ListingsRepo.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("delete listing: %v", err)
	}

	if got, _ := factory.BookingRepo.ListByListing(ctx, doomed.ID); len(got) != 0 {
		t.Errorf("bookings survived listing delete: %d", len(got))
	}
	if got, _ := factory.ReviewsRepo.ListByListing(ctx, doomed.ID); len(got) != 0 {
		t.Errorf("reviews survived listing delete: %d", len(got))
	}
	if got, _ := factory.ListingImagesRepo.ListByListing(ctx, doomed.ID); len(got) != 0 {
		t.Errorf("listing images survived listing delete: %d", len(got))
	}
	if _, err := factory.ReviewsRepo.ByListingAndAuthor(ctx, doomed.ID, 2); !errors.Is(err, domainreviews.ErrNotFound) {
		t.Errorf("pair index survived listing delete: %v", err)
	}
	if got, _ := factory.BookingRepo.ListByGuest(ctx, 2); len(got) != 1 {
		t.Errorf("guest bookings = %d after delete, want 1 (the kept listing)", len(got))
	}
}

func TestReviewSaveEnforcesPairUniqueness(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	first := &domainreviews.Review{ListingID: 1, AuthorID: 2, Text: "ok", Stars: 4}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	dup := &domainreviews.Review{ListingID: 1, AuthorID: 2, Text: "again", Stars: 5}
	if err := repo.Save(ctx, dup); !errors.Is(err, domainreviews.ErrAlreadyReviewed) {
		t.Fatalf("err = %v, want ErrAlreadyReviewed", err)
	}

	// Updating the same review through Save must pass.
	first.Text = "edited"
	if err := repo.Save(ctx, first); err != nil {
		t.Errorf("update save: %v", err)
	}

	// After delete the pair is free again.
	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Save(ctx, dup); err != nil {
		t.Errorf("save after delete: %v", err)
	}
}

func TestRatingsByListingGroupsInOnePass(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	for i, stars := range []float64{2, 4, 5} {
		if err := repo.Save(ctx, &domainreviews.Review{
			ListingID: 1, AuthorID: domainreviews.AuthorID(i + 1), Text: "ok", Stars: stars,
		}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if err := repo.Save(ctx, &domainreviews.Review{
		ListingID: 2, AuthorID: 9, Text: "ok", Stars: 3,
	}); err != nil {
		t.Fatalf("save other listing: %v", err)
	}

	got, err := repo.RatingsByListing(ctx, []domainlistings.ListingID{1, 2, 3})
	if err != nil {
		t.Fatalf("RatingsByListing: %v", err)
	}
	if s := got[1]; s.Count != 3 || s.Average == nil || *s.Average != 11.0/3.0 {
		t.Errorf("listing 1 summary = %+v, want count 3 avg 11/3", s)
	}
	if s := got[2]; s.Count != 1 || s.Average == nil || *s.Average != 3 {
		t.Errorf("listing 2 summary = %+v, want count 1 avg 3", s)
	}
	if s, ok := got[3]; ok && s.Count != 0 {
		t.Errorf("listing 3 summary = %+v, want empty", s)
	}
}

func TestListingImagePreviewDemotesOthers(t *testing.T) {
	repo := NewListingImageRepository()
	ctx := context.Background()
	now := time.Now()

	first, err := domainimages.NewListingImage(1, "https://img.example/a.jpg", true, now)
	if err != nil {
		t.Fatalf("new image: %v", err)
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := domainimages.NewListingImage(1, "https://img.example/b.jpg", true, now)
	if err != nil {
		t.Fatalf("new image: %v", err)
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	previews, err := repo.PreviewURLs(ctx, []domainlistings.ListingID{1})
	if err != nil {
		t.Fatalf("PreviewURLs: %v", err)
	}
	if previews[1] != "https://img.example/b.jpg" {
		t.Errorf("preview = %q, want the most recently promoted image", previews[1])
	}

	all, err := repo.ListByListing(ctx, 1)
	if err != nil {
		t.Fatalf("ListByListing: %v", err)
	}
	previewCount := 0
	for _, img := range all {
		if img.Preview {
			previewCount++
		}
	}
	if previewCount != 1 {
		t.Errorf("preview count = %d, want exactly 1", previewCount)
	}
}

func TestReviewImageCapAtStore(t *testing.T) {
	repo := NewReviewImageRepository()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < domainimages.MaxPerReview; i++ {
		img, err := domainimages.NewReviewImage(1, fmt.Sprintf("https://img.example/%d.jpg", i), now)
		if err != nil {
			t.Fatalf("new image %d: %v", i, err)
		}
		if err := repo.Save(ctx, img); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	over, err := domainimages.NewReviewImage(1, "https://img.example/over.jpg", now)
	if err != nil {
		t.Fatalf("new image: %v", err)
	}
	if err := repo.Save(ctx, over); !errors.Is(err, domainimages.ErrReviewImageLimit) {
		t.Fatalf("err = %v, want ErrReviewImageLimit", err)
	}
	count, err := repo.CountByReview(ctx, 1)
	if err != nil {
		t.Fatalf("CountByReview: %v", err)
	}
	if count != domainimages.MaxPerReview {
		t.Errorf("count = %d, want %d", count, domainimages.MaxPerReview)
	}
}

func TestReviewImagesListByReviewsGroupsInOnePass(t *testing.T) {
	repo := NewReviewImageRepository()
	ctx := context.Background()
	now := time.Now()

	seed := []struct {
		review domainreviews.ReviewID
		url    string
	}{
		{1, "https://img.example/1a.jpg"},
		{1, "https://img.example/1b.jpg"},
		{2, "https://img.example/2a.jpg"},
	}
	for _, s := range seed {
		img, err := domainimages.NewReviewImage(s.review, s.url, now)
		if err != nil {
			t.Fatalf("new image: %v", err)
		}
		if err := repo.Save(ctx, img); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.ListByReviews(ctx, []domainreviews.ReviewID{1, 3})
	if err != nil {
		t.Fatalf("ListByReviews: %v", err)
	}
	if len(got[1]) != 2 {
		t.Fatalf("review 1 images = %d, want 2", len(got[1]))
	}
	if got[1][0].URL != "https://img.example/1a.jpg" {
		t.Errorf("images out of order: %+v", got[1])
	}
	if _, ok := got[2]; ok {
		t.Error("unrequested review 2 present in result")
	}
	if _, ok := got[3]; ok {
		t.Error("review 3 has no images but appears in result")
	}
}
