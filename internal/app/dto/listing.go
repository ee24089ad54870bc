package dto

import (
	"time"

	domainimages "spotaway/internal/domain/images"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	domainuser "spotaway/internal/domain/user"
)

// ListingSummary is the catalog row shape. AvgRating and PreviewImage are
// query-time aggregates; both are null when absent, never sentinel values.
type ListingSummary struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	AvgRating    *float64  `json:"avg_rating"`
	PreviewImage *string   `json:"preview_image"`
}

// ListingPage is one page of summaries with pagination meta.
type ListingPage struct {
	Listings []ListingSummary `json:"listings"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ListingDetail extends the summary with review aggregates, the full image
// list and owner info.
type ListingDetail struct {
	ID            int64          `json:"id"`
	OwnerID       int64          `json:"owner_id"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	Country       string         `json:"country"`
	Lat           float64        `json:"lat"`
	Lng           float64        `json:"lng"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Price         float64        `json:"price"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	NumReviews    int            `json:"num_reviews"`
	AvgStarRating *float64       `json:"avg_star_rating"`
	Images        []ListingImage `json:"images"`
	Owner         *ListingOwner  `json:"owner,omitempty"`
}

type ListingOwner struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ListingImage struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Preview bool   `json:"preview"`
}

func MapListingImage(img *domainimages.ListingImage) ListingImage {
	if img == nil {
		return ListingImage{}
	}
	return ListingImage{ID: int64(img.ID), URL: img.URL, Preview: img.Preview}
}

// MapListingSummary attaches the precomputed aggregates to the listing's
// scalar fields. The display rating is rounded to one decimal.
func MapListingSummary(l *domainlistings.Listing, rating domainreviews.Summary, previewURL *string) ListingSummary {
	if l == nil {
		return ListingSummary{}
	}
	return ListingSummary{
		ID:           int64(l.ID),
		OwnerID:      int64(l.Owner),
		Address:      l.Address,
		City:         l.City,
		State:        l.State,
		Country:      l.Country,
		Lat:          l.Lat,
		Lng:          l.Lng,
		Name:         l.Name,
		Description:  l.Description,
		Price:        l.Price,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
		AvgRating:    rating.Rounded(),
		PreviewImage: previewURL,
	}
}

func MapListingDetail(l *domainlistings.Listing, rating domainreviews.Summary, imgs []*domainimages.ListingImage, owner *domainuser.User) ListingDetail {
	detail := ListingDetail{
		ID:            int64(l.ID),
		OwnerID:       int64(l.Owner),
		Address:       l.Address,
		City:          l.City,
		State:         l.State,
		Country:       l.Country,
		Lat:           l.Lat,
		Lng:           l.Lng,
		Name:          l.Name,
		Description:   l.Description,
		Price:         l.Price,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
		NumReviews:    rating.Count,
		AvgStarRating: rating.Rounded(),
		Images:        make([]ListingImage, 0, len(imgs)),
	}
	for _, img := range imgs {
		if img == nil {
			continue
		}
		detail.Images = append(detail.Images, ListingImage{ID: int64(img.ID), URL: img.URL, Preview: img.Preview})
	}
	if owner != nil {
		detail.Owner = &ListingOwner{ID: int64(owner.ID), FirstName: owner.FirstName, LastName: owner.LastName}
	}
	return detail
}
