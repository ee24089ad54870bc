package images

import (
	"context"
	"errors"
	"strings"
	"time"

	"spotaway/internal/domain/listings"
	"spotaway/internal/domain/reviews"
)

var (
	ErrNotFound    = errors.New("images: not found")
	ErrURLRequired = errors.New("images: url is required")
	// ErrReviewImageLimit is returned when a review already holds the
	// maximum number of images.
	ErrReviewImageLimit = errors.New("images: maximum number of images for this resource was reached")
)

// MaxPerReview caps image attachments on a single review.
const MaxPerReview = 10

type ImageID int64

// ListingImage is an image attached to a listing. At most one image per
// listing carries the preview flag; stores enforce this on write by clearing
// prior flags when a new preview is saved.
type ListingImage struct {
	ID        ImageID
	ListingID listings.ListingID
	URL       string
	Preview   bool
	CreatedAt time.Time
}

type ReviewImage struct {
	ID        ImageID
	ReviewID  reviews.ReviewID
	URL       string
	CreatedAt time.Time
}

type ListingImageRepository interface {
	ByID(ctx context.Context, id ImageID) (*ListingImage, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*ListingImage, error)
	// PreviewURLs resolves the preview image URL for a batch of listings in
	// one query; listings without a preview are absent from the map.
	PreviewURLs(ctx context.Context, ids []listings.ListingID) (map[listings.ListingID]string, error)
	Save(ctx context.Context, image *ListingImage) error
	Delete(ctx context.Context, id ImageID) error
}

type ReviewImageRepository interface {
	ByID(ctx context.Context, id ImageID) (*ReviewImage, error)
	// ListByReviews loads the images of a batch of reviews in one query;
	// reviews without images are absent from the map.
	ListByReviews(ctx context.Context, ids []reviews.ReviewID) (map[reviews.ReviewID][]*ReviewImage, error)
	CountByReview(ctx context.Context, reviewID reviews.ReviewID) (int, error)
	Save(ctx context.Context, image *ReviewImage) error
	Delete(ctx context.Context, id ImageID) error
}

func NewListingImage(listingID listings.ListingID, url string, preview bool, now time.Time) (*ListingImage, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrURLRequired
	}
	return &ListingImage{
		ListingID: listingID,
		URL:       url,
		Preview:   preview,
		CreatedAt: now.UTC(),
	}, nil
}

func NewReviewImage(reviewID reviews.ReviewID, url string, now time.Time) (*ReviewImage, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrURLRequired
	}
	return &ReviewImage{
		ReviewID:  reviewID,
		URL:       url,
		CreatedAt: now.UTC(),
	}, nil
}
