package dto

import (
	"time"

	domainimages "spotaway/internal/domain/images"
	domainreviews "spotaway/internal/domain/reviews"
)

// Review represents a public review payload.
type Review struct {
	ID        int64         `json:"id"`
	ListingID int64         `json:"listing_id"`
	AuthorID  int64         `json:"author_id"`
	Text      string        `json:"text"`
	Stars     float64       `json:"stars"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Images    []ReviewImage `json:"images,omitempty"`
}

type ReviewImage struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type ReviewCollection struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:        int64(review.ID),
		ListingID: int64(review.ListingID),
		AuthorID:  int64(review.AuthorID),
		Text:      review.Text,
		Stars:     review.Stars,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}

func MapReviewWithImages(review *domainreviews.Review, imgs []*domainimages.ReviewImage) Review {
	out := MapReview(review)
	for _, img := range imgs {
		if img == nil {
			continue
		}
		out.Images = append(out.Images, ReviewImage{ID: int64(img.ID), URL: img.URL})
	}
	return out
}

func MapReviews(items []*domainreviews.Review) ReviewCollection {
	out := ReviewCollection{Reviews: make([]Review, 0, len(items)), Total: len(items)}
	for _, r := range items {
		if r == nil {
			continue
		}
		out.Reviews = append(out.Reviews, MapReview(r))
	}
	return out
}

func MapReviewImage(img *domainimages.ReviewImage) ReviewImage {
	if img == nil {
		return ReviewImage{}
	}
	return ReviewImage{ID: int64(img.ID), URL: img.URL}
}
