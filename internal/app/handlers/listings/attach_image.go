package listings

import (
	"context"
	"log/slog"
	"time"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/dto"
	"spotaway/internal/app/uow"
	domainimages "spotaway/internal/domain/images"
	"spotaway/internal/domain/shared/fault"
)

const attachListingImageKey = "listings.image.attach"

// AttachListingImageCommand adds an image to a listing the caller owns.
// Saving a preview image demotes any previous preview for the listing.
type AttachListingImageCommand struct {
	ListingID int64
	OwnerID   int64
	URL       string
	Preview   bool
}

func (c AttachListingImageCommand) Key() string { return attachListingImageKey }

type AttachListingImageHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *AttachListingImageHandler) Handle(ctx context.Context, cmd AttachListingImageCommand) (dto.ListingImage, error) {
	unit, ctx, commit, rollback, err := beginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingImage{}, err
	}
	defer rollback()

	listing, err := loadOwned(ctx, unit, cmd.ListingID, cmd.OwnerID)
	if err != nil {
		return dto.ListingImage{}, err
	}

	image, err := domainimages.NewListingImage(listing.ID, cmd.URL, cmd.Preview, time.Now())
	if err != nil {
		return dto.ListingImage{}, fault.Validation("image validation failed").
			WithField("url", "Image url is required")
	}
	if err := unit.ListingImages().Save(ctx, image); err != nil {
		return dto.ListingImage{}, fault.StoreUnavailable(err)
	}

	if err := commit(); err != nil {
		return dto.ListingImage{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing image attached",
			"listing_id", listing.ID, "image_id", image.ID, "preview", image.Preview)
	}
	return dto.MapListingImage(image), nil
}

var _ commands.Handler[AttachListingImageCommand, dto.ListingImage] = (*AttachListingImageHandler)(nil)
