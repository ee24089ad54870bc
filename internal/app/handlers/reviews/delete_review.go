package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/outbox"
	"spotaway/internal/app/uow"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/events"
	"spotaway/internal/domain/shared/fault"
)

const deleteReviewKey = "reviews.delete"

// DeleteReviewCommand removes a review the caller authored.
type DeleteReviewCommand struct {
	ReviewID int64
	AuthorID int64
	Now      time.Time
}

func (c DeleteReviewCommand) Key() string { return deleteReviewKey }

type DeleteReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (struct{}, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return struct{}{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return struct{}{}, fault.StoreUnavailable(err)
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
			return struct{}{}, fault.NotFound("Review couldn't be found")
		}
		return struct{}{}, fault.StoreUnavailable(err)
	}
	if !review.AuthoredBy(domainreviews.AuthorID(cmd.AuthorID)) {
		return struct{}{}, fault.Forbidden("Forbidden")
	}

	if err := unit.Reviews().Delete(ctx, review.ID); err != nil {
		return struct{}{}, fault.StoreUnavailable(err)
	}

	pending := []events.DomainEvent{domainreviews.ReviewDeleted{
		ReviewID:  review.ID,
		ListingID: review.ListingID,
		At:        now,
	}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return struct{}{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, fault.StoreUnavailable(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("review deleted", "review_id", review.ID, "listing_id", review.ListingID)
	}
	return struct{}{}, nil
}

var _ commands.Handler[DeleteReviewCommand, struct{}] = (*DeleteReviewHandler)(nil)
