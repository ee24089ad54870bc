package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/dto"
	"spotaway/internal/app/uow"
	domainimages "spotaway/internal/domain/images"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/fault"
)

const attachReviewImageKey = "reviews.image.attach"

// AttachReviewImageCommand adds an image to a review the caller authored.
type AttachReviewImageCommand struct {
	ReviewID int64
	AuthorID int64
	URL      string
	Now      time.Time
}

func (c AttachReviewImageCommand) Key() string { return attachReviewImageKey }

// AttachReviewImageHandler enforces the per-review image cap before saving.
type AttachReviewImageHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *AttachReviewImageHandler) Handle(ctx context.Context, cmd AttachReviewImageCommand) (dto.ReviewImage, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.ReviewImage{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.ReviewImage{}, fault.StoreUnavailable(err)
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
			return dto.ReviewImage{}, fault.NotFound("Review couldn't be found")
		}
		return dto.ReviewImage{}, fault.StoreUnavailable(err)
	}
	if !review.AuthoredBy(domainreviews.AuthorID(cmd.AuthorID)) {
		return dto.ReviewImage{}, fault.Forbidden("Forbidden")
	}

	count, err := unit.ReviewImages().CountByReview(ctx, review.ID)
	if err != nil {
		return dto.ReviewImage{}, fault.StoreUnavailable(err)
	}
	if count >= domainimages.MaxPerReview {
		return dto.ReviewImage{}, fault.LimitExceeded("Maximum number of images for this resource was reached")
	}

	image, err := domainimages.NewReviewImage(review.ID, cmd.URL, now)
	if err != nil {
		return dto.ReviewImage{}, fault.Validation("image validation failed").
			WithField("url", "Image url is required")
	}
	if err := unit.ReviewImages().Save(ctx, image); err != nil {
		if errors.Is(err, domainimages.ErrReviewImageLimit) {
			return dto.ReviewImage{}, fault.LimitExceeded("Maximum number of images for this resource was reached")
		}
		return dto.ReviewImage{}, fault.StoreUnavailable(err)
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.ReviewImage{}, fault.StoreUnavailable(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("review image attached", "review_id", review.ID, "image_id", image.ID)
	}
	return dto.MapReviewImage(image), nil
}

var _ commands.Handler[AttachReviewImageCommand, dto.ReviewImage] = (*AttachReviewImageHandler)(nil)
