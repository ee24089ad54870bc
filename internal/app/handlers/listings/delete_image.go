package listings

import (
	"context"
	"errors"
	"log/slog"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/uow"
	domainimages "spotaway/internal/domain/images"
	"spotaway/internal/domain/shared/fault"
)

const deleteListingImageKey = "listings.image.delete"

// DeleteListingImageCommand removes an image from a listing the caller owns.
type DeleteListingImageCommand struct {
	ImageID int64
	OwnerID int64
}

func (c DeleteListingImageCommand) Key() string { return deleteListingImageKey }

type DeleteListingImageHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *DeleteListingImageHandler) Handle(ctx context.Context, cmd DeleteListingImageCommand) (struct{}, error) {
	unit, ctx, commit, rollback, err := beginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return struct{}{}, err
	}
	defer rollback()

	image, err := unit.ListingImages().ByID(ctx, domainimages.ImageID(cmd.ImageID))
	if err != nil {
		if errors.Is(err, domainimages.ErrNotFound) {
			return struct{}{}, fault.NotFound("Listing Image couldn't be found")
		}
		return struct{}{}, fault.StoreUnavailable(err)
	}
	if _, err := loadOwned(ctx, unit, int64(image.ListingID), cmd.OwnerID); err != nil {
		return struct{}{}, err
	}

	if err := unit.ListingImages().Delete(ctx, image.ID); err != nil {
		return struct{}{}, fault.StoreUnavailable(err)
	}

	if err := commit(); err != nil {
		return struct{}{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing image deleted", "listing_id", image.ListingID, "image_id", image.ID)
	}
	return struct{}{}, nil
}

var _ commands.Handler[DeleteListingImageCommand, struct{}] = (*DeleteListingImageHandler)(nil)
