package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/dto"
	"spotaway/internal/app/outbox"
	"spotaway/internal/app/uow"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/fault"
)

const admitReviewKey = "reviews.admit"

// AdmitReviewCommand creates a new review for a listing.
type AdmitReviewCommand struct {
	ListingID int64
	AuthorID  int64
	Text      string
	Stars     float64
	Now       time.Time
}

func (c AdmitReviewCommand) Key() string { return admitReviewKey }

// AdmitReviewHandler validates and stores a new review. The one-review-per-
// author-per-listing rule is checked here and enforced again by the store's
// unique key on (listing, author).
type AdmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Precision  domainreviews.StarsPrecision
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *AdmitReviewHandler) Handle(ctx context.Context, cmd AdmitReviewCommand) (dto.Review, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.Review{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.Review{}, fault.StoreUnavailable(err)
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

	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID)); err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return dto.Review{}, fault.NotFound("Listing couldn't be found")
		}
		return dto.Review{}, fault.StoreUnavailable(err)
	}

	existing, err := unit.Reviews().ByListingAndAuthor(ctx, domainlistings.ListingID(cmd.ListingID), domainreviews.AuthorID(cmd.AuthorID))
	if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return dto.Review{}, fault.StoreUnavailable(err)
	}
	if existing != nil {
		return dto.Review{}, fault.Conflict("User already has a review for this listing")
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ListingID: domainlistings.ListingID(cmd.ListingID),
		AuthorID:  domainreviews.AuthorID(cmd.AuthorID),
		Text:      cmd.Text,
		Stars:     cmd.Stars,
		Precision: h.Precision,
		Now:       now,
	})
	if err != nil {
		return dto.Review{}, mapReviewValidation(err)
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		if errors.Is(err, domainreviews.ErrAlreadyReviewed) {
			return dto.Review{}, fault.Conflict("User already has a review for this listing")
		}
		return dto.Review{}, fault.StoreUnavailable(err)
	}

	review.Record(domainreviews.ReviewSubmitted{
		ReviewID:  review.ID,
		ListingID: review.ListingID,
		AuthorID:  review.AuthorID,
		Stars:     review.Stars,
		At:        now,
	})
	pending := review.PendingEvents()
	review.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return dto.Review{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Review{}, fault.StoreUnavailable(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("review admitted", "review_id", review.ID, "listing_id", review.ListingID, "author_id", review.AuthorID, "stars", review.Stars)
	}
	return dto.MapReview(review), nil
}

func mapReviewValidation(err error) error {
	switch {
	case errors.Is(err, domainreviews.ErrInvalidStars):
		return fault.Validation("review validation failed").
			WithField("stars", "Stars must be an integer from 1 to 5")
	case errors.Is(err, domainreviews.ErrEmptyText):
		return fault.Validation("review validation failed").
			WithField("text", "Review text is required")
	default:
		return fault.Validation(err.Error())
	}
}

var _ commands.Handler[AdmitReviewCommand, dto.Review] = (*AdmitReviewHandler)(nil)
