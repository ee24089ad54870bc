package memory

import (
	"context"
	"sort"
	"sync"

	domainimages "spotaway/internal/domain/images"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
)

// ListingImageRepository keeps listing images in memory. Saving a preview
// image clears the preview flag on every other image of that listing in the
// same write.
type ListingImageRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[domainimages.ImageID]*domainimages.ListingImage
}

func NewListingImageRepository() *ListingImageRepository {
	return &ListingImageRepository{items: make(map[domainimages.ImageID]*domainimages.ListingImage)}
}

func (r *ListingImageRepository) ByID(ctx context.Context, id domainimages.ImageID) (*domainimages.ListingImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.items[id]
	if !ok {
		return nil, domainimages.ErrNotFound
	}
	copyImg := *img
	return &copyImg, nil
}

func (r *ListingImageRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainimages.ListingImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainimages.ListingImage, 0)
	for _, img := range r.items {
		if img.ListingID == listingID {
			copyImg := *img
			matches = append(matches, &copyImg)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

// PreviewURLs resolves preview images for a batch of listings in one pass.
func (r *ListingImageRepository) PreviewURLs(ctx context.Context, ids []domainlistings.ListingID) (map[domainlistings.ListingID]string, error) {
	wanted := make(map[domainlistings.ListingID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domainlistings.ListingID]string)
	for _, img := range r.items {
		if !img.Preview {
			continue
		}
		if _, ok := wanted[img.ListingID]; ok {
			out[img.ListingID] = img.URL
		}
	}
	return out, nil
}

func (r *ListingImageRepository) Save(ctx context.Context, image *domainimages.ListingImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if image.ID == 0 {
		r.nextID++
		image.ID = domainimages.ImageID(r.nextID)
	}
	if image.Preview {
		for _, existing := range r.items {
			if existing.ListingID == image.ListingID && existing.ID != image.ID {
				existing.Preview = false
			}
		}
	}
	copyImg := *image
	r.items[copyImg.ID] = &copyImg
	return nil
}

func (r *ListingImageRepository) purgeListing(id domainlistings.ListingID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for imageID, img := range r.items {
		if img.ListingID == id {
			delete(r.items, imageID)
		}
	}
}

func (r *ListingImageRepository) Delete(ctx context.Context, id domainimages.ImageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainimages.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// ReviewImageRepository caps attachments per review on write.
type ReviewImageRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[domainimages.ImageID]*domainimages.ReviewImage
}

func NewReviewImageRepository() *ReviewImageRepository {
	return &ReviewImageRepository{items: make(map[domainimages.ImageID]*domainimages.ReviewImage)}
}

func (r *ReviewImageRepository) ByID(ctx context.Context, id domainimages.ImageID) (*domainimages.ReviewImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.items[id]
	if !ok {
		return nil, domainimages.ErrNotFound
	}
	copyImg := *img
	return &copyImg, nil
}

// ListByReviews groups the images of all requested reviews in one pass.
func (r *ReviewImageRepository) ListByReviews(ctx context.Context, ids []domainreviews.ReviewID) (map[domainreviews.ReviewID][]*domainimages.ReviewImage, error) {
	wanted := make(map[domainreviews.ReviewID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domainreviews.ReviewID][]*domainimages.ReviewImage)
	for _, img := range r.items {
		if _, ok := wanted[img.ReviewID]; ok {
			copyImg := *img
			out[img.ReviewID] = append(out[img.ReviewID], &copyImg)
		}
	}
	for _, imgs := range out {
		sort.Slice(imgs, func(i, j int) bool { return imgs[i].ID < imgs[j].ID })
	}
	return out, nil
}

func (r *ReviewImageRepository) CountByReview(ctx context.Context, reviewID domainreviews.ReviewID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked(reviewID), nil
}

func (r *ReviewImageRepository) countLocked(reviewID domainreviews.ReviewID) int {
	count := 0
	for _, img := range r.items {
		if img.ReviewID == reviewID {
			count++
		}
	}
	return count
}

func (r *ReviewImageRepository) Save(ctx context.Context, image *domainimages.ReviewImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if image.ID == 0 && r.countLocked(image.ReviewID) >= domainimages.MaxPerReview {
		return domainimages.ErrReviewImageLimit
	}
	if image.ID == 0 {
		r.nextID++
		image.ID = domainimages.ImageID(r.nextID)
	}
	copyImg := *image
	r.items[copyImg.ID] = &copyImg
	return nil
}

func (r *ReviewImageRepository) Delete(ctx context.Context, id domainimages.ImageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainimages.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

var (
	_ domainimages.ListingImageRepository = (*ListingImageRepository)(nil)
	_ domainimages.ReviewImageRepository  = (*ReviewImageRepository)(nil)
)
