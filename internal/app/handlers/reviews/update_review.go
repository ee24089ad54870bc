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
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/fault"
)

const updateReviewKey = "reviews.update"

// UpdateReviewCommand replaces the text and stars of an existing review.
type UpdateReviewCommand struct {
	ReviewID int64
	AuthorID int64
	Text     string
	Stars    float64
	Now      time.Time
}

func (c UpdateReviewCommand) Key() string { return updateReviewKey }

// UpdateReviewHandler applies an author's edit to their own review.
type UpdateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Precision  domainreviews.StarsPrecision
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *UpdateReviewHandler) Handle(ctx context.Context, cmd UpdateReviewCommand) (dto.Review, error) {
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

	review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		if errors.Is(err, domainreviews.ErrNotFound) {
			return dto.Review{}, fault.NotFound("Review couldn't be found")
		}
		return dto.Review{}, fault.StoreUnavailable(err)
	}
	if !review.AuthoredBy(domainreviews.AuthorID(cmd.AuthorID)) {
		return dto.Review{}, fault.Forbidden("Forbidden")
	}

	if err := review.Update(cmd.Text, cmd.Stars, h.Precision, now); err != nil {
		return dto.Review{}, mapReviewValidation(err)
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, fault.StoreUnavailable(err)
	}

	review.Record(domainreviews.ReviewUpdated{ReviewID: review.ID, At: now})
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
		h.Logger.Info("review updated", "review_id", review.ID, "stars", review.Stars)
	}
	return dto.MapReview(review), nil
}

var _ commands.Handler[UpdateReviewCommand, dto.Review] = (*UpdateReviewHandler)(nil)
