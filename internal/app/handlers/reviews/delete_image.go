package reviews

import (
	"context"
	"errors"
	"log/slog"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/uow"
	domainimages "spotaway/internal/domain/images"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/fault"
)

const deleteReviewImageKey = "reviews.image.delete"

// DeleteReviewImageCommand removes an image from a review the caller authored.
type DeleteReviewImageCommand struct {
	ImageID  int64
	AuthorID int64
}

func (c DeleteReviewImageCommand) Key() string { return deleteReviewImageKey }

type DeleteReviewImageHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *DeleteReviewImageHandler) Handle(ctx context.Context, cmd DeleteReviewImageCommand) (struct{}, error) {
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

	image, err := unit.ReviewImages().ByID(ctx, domainimages.ImageID(cmd.ImageID))
	if err != nil {
		if errors.Is(err, domainimages.ErrNotFound) {
			return struct{}{}, fault.NotFound("Review Image couldn't be found")
		}
		return struct{}{}, fault.StoreUnavailable(err)
	}

	review, err := unit.Reviews().ByID(ctx, image.ReviewID)
	if err != nil {
		if errors.Is(err, domainreviews.ErrNotFound) {
			return struct{}{}, fault.NotFound("Review couldn't be found")
		}
		return struct{}{}, fault.StoreUnavailable(err)
	}
	if !review.AuthoredBy(domainreviews.AuthorID(cmd.AuthorID)) {
		return struct{}{}, fault.Forbidden("Forbidden")
	}

	if err := unit.ReviewImages().Delete(ctx, image.ID); err != nil {
		return struct{}{}, fault.StoreUnavailable(err)
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, fault.StoreUnavailable(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("review image deleted", "review_id", review.ID, "image_id", image.ID)
	}
	return struct{}{}, nil
}

var _ commands.Handler[DeleteReviewImageCommand, struct{}] = (*DeleteReviewImageHandler)(nil)
