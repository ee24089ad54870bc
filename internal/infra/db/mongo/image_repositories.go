package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainimages "spotaway/internal/domain/images"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
)

type ListingImageRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewListingImageRepository(db *mongo.Database) *ListingImageRepository {
	return &ListingImageRepository{db: db, col: db.Collection("listing_images")}
}

func (r *ListingImageRepository) ByID(ctx context.Context, id domainimages.ImageID) (*domainimages.ListingImage, error) {
	var doc listingImageDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainimages.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingImageRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainimages.ListingImage, error) {
	cursor, err := r.col.Find(ctx, bson.M{"listing_id": int64(listingID)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	items := make([]*domainimages.ListingImage, 0)
	for cursor.Next(ctx) {
		var doc listingImageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	return items, cursor.Err()
}

// PreviewURLs fetches the preview image of each requested listing in one
// find on the preview flag.
func (r *ListingImageRepository) PreviewURLs(ctx context.Context, ids []domainlistings.ListingID) (map[domainlistings.ListingID]string, error) {
	out := make(map[domainlistings.ListingID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}
	cursor, err := r.col.Find(ctx, bson.M{
		"listing_id": bson.M{"$in": raw},
		"preview":    true,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var doc listingImageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out[domainlistings.ListingID(doc.ListingID)] = doc.URL
	}
	return out, cursor.Err()
}

// Save writes the image; a preview image first demotes every other preview
// for the listing so at most one survives.
func (r *ListingImageRepository) Save(ctx context.Context, image *domainimages.ListingImage) error {
	if image.ID == 0 {
		id, err := nextID(ctx, r.db, "listing_images")
		if err != nil {
			return err
		}
		image.ID = domainimages.ImageID(id)
	}
	if image.Preview {
		_, err := r.col.UpdateMany(ctx,
			bson.M{"listing_id": int64(image.ListingID), "_id": bson.M{"$ne": int64(image.ID)}},
			bson.M{"$set": bson.M{"preview": false}})
		if err != nil {
			return err
		}
	}
	doc := newListingImageDocument(image)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *ListingImageRepository) Delete(ctx context.Context, id domainimages.ImageID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": int64(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainimages.ErrNotFound
	}
	return nil
}

type ReviewImageRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewReviewImageRepository(db *mongo.Database) *ReviewImageRepository {
	return &ReviewImageRepository{db: db, col: db.Collection("review_images")}
}

func (r *ReviewImageRepository) ByID(ctx context.Context, id domainimages.ImageID) (*domainimages.ReviewImage, error) {
	var doc reviewImageDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainimages.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// ListByReviews fetches the images of all requested reviews with one $in
// find, grouped by review.
func (r *ReviewImageRepository) ListByReviews(ctx context.Context, ids []domainreviews.ReviewID) (map[domainreviews.ReviewID][]*domainimages.ReviewImage, error) {
	out := make(map[domainreviews.ReviewID][]*domainimages.ReviewImage, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}
	cursor, err := r.col.Find(ctx, bson.M{"review_id": bson.M{"$in": raw}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var doc reviewImageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		img := doc.toAggregate()
		out[img.ReviewID] = append(out[img.ReviewID], img)
	}
	return out, cursor.Err()
}

func (r *ReviewImageRepository) CountByReview(ctx context.Context, reviewID domainreviews.ReviewID) (int, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"review_id": int64(reviewID)})
	return int(count), err
}

// Save enforces the per-review cap inside the same transaction as the count.
func (r *ReviewImageRepository) Save(ctx context.Context, image *domainimages.ReviewImage) error {
	if image.ID == 0 {
		count, err := r.CountByReview(ctx, image.ReviewID)
		if err != nil {
			return err
		}
		if count >= domainimages.MaxPerReview {
			return domainimages.ErrReviewImageLimit
		}
		id, err := nextID(ctx, r.db, "review_images")
		if err != nil {
			return err
		}
		image.ID = domainimages.ImageID(id)
	}
	doc := newReviewImageDocument(image)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *ReviewImageRepository) Delete(ctx context.Context, id domainimages.ImageID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": int64(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainimages.ErrNotFound
	}
	return nil
}

type listingImageDocument struct {
	ID        int64  `bson:"_id"`
	ListingID int64  `bson:"listing_id"`
	URL       string `bson:"url"`
	Preview   bool   `bson:"preview"`
	CreatedAt int64  `bson:"created_at"`
}

func newListingImageDocument(img *domainimages.ListingImage) listingImageDocument {
	return listingImageDocument{
		ID:        int64(img.ID),
		ListingID: int64(img.ListingID),
		URL:       img.URL,
		Preview:   img.Preview,
		CreatedAt: img.CreatedAt.UnixMilli(),
	}
}

func (d listingImageDocument) toAggregate() *domainimages.ListingImage {
	return &domainimages.ListingImage{
		ID:        domainimages.ImageID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		URL:       d.URL,
		Preview:   d.Preview,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

type reviewImageDocument struct {
	ID        int64  `bson:"_id"`
	ReviewID  int64  `bson:"review_id"`
	URL       string `bson:"url"`
	CreatedAt int64  `bson:"created_at"`
}

func newReviewImageDocument(img *domainimages.ReviewImage) reviewImageDocument {
	return reviewImageDocument{
		ID:        int64(img.ID),
		ReviewID:  int64(img.ReviewID),
		URL:       img.URL,
		CreatedAt: img.CreatedAt.UnixMilli(),
	}
}

func (d reviewImageDocument) toAggregate() *domainimages.ReviewImage {
	return &domainimages.ReviewImage{
		ID:        domainimages.ImageID(d.ID),
		ReviewID:  domainreviews.ReviewID(d.ReviewID),
		URL:       d.URL,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

var (
	_ domainimages.ListingImageRepository = (*ListingImageRepository)(nil)
	_ domainimages.ReviewImageRepository  = (*ReviewImageRepository)(nil)
)
