package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
)

type ReviewRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

// NewReviewRepository creates the repository and ensures the unique
// (listing_id, author_id) index that backs the one-review-per-author rule.
func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection("reviews")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "listing_id", Value: 1}, {Key: "author_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &ReviewRepository{db: db, col: col}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ByListingAndAuthor(ctx context.Context, listingID domainlistings.ListingID, authorID domainreviews.AuthorID) (*domainreviews.Review, error) {
	var doc reviewDocument
	err := r.col.FindOne(ctx, bson.M{
		"listing_id": int64(listingID),
		"author_id":  int64(authorID),
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	return r.findAll(ctx, bson.M{"listing_id": int64(listingID)})
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID domainreviews.AuthorID) ([]*domainreviews.Review, error) {
	return r.findAll(ctx, bson.M{"author_id": int64(authorID)})
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	if review.ID == 0 {
		id, err := nextID(ctx, r.db, "reviews")
		if err != nil {
			return err
		}
		review.ID = domainreviews.ReviewID(id)
	}
	doc := newReviewDocument(review)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return domainreviews.ErrAlreadyReviewed
	}
	return err
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": int64(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainreviews.ErrNotFound
	}
	_, err = r.db.Collection("review_images").DeleteMany(ctx, bson.M{"review_id": int64(id)})
	return err
}

// RatingsByListing computes count and mean per listing in a single $group
// aggregation over the requested IDs.
func (r *ReviewRepository) RatingsByListing(ctx context.Context, ids []domainlistings.ListingID) (map[domainlistings.ListingID]domainreviews.Summary, error) {
	out := make(map[domainlistings.ListingID]domainreviews.Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"listing_id": bson.M{"$in": raw}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$listing_id",
			"count": bson.M{"$sum": 1},
			"avg":   bson.M{"$avg": "$stars"},
		}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var row struct {
			ListingID int64   `bson:"_id"`
			Count     int     `bson:"count"`
			Avg       float64 `bson:"avg"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		avg := row.Avg
		out[domainlistings.ListingID(row.ListingID)] = domainreviews.Summary{
			Average: &avg,
			Count:   row.Count,
		}
	}
	return out, cursor.Err()
}

func (r *ReviewRepository) findAll(ctx context.Context, filter bson.M) ([]*domainreviews.Review, error) {
	cursor, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	items := make([]*domainreviews.Review, 0)
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	return items, cursor.Err()
}

type reviewDocument struct {
	ID        int64   `bson:"_id"`
	ListingID int64   `bson:"listing_id"`
	AuthorID  int64   `bson:"author_id"`
	Text      string  `bson:"text"`
	Stars     float64 `bson:"stars"`
	CreatedAt int64   `bson:"created_at"`
	UpdatedAt int64   `bson:"updated_at"`
}

func newReviewDocument(rv *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:        int64(rv.ID),
		ListingID: int64(rv.ListingID),
		AuthorID:  int64(rv.AuthorID),
		Text:      rv.Text,
		Stars:     rv.Stars,
		CreatedAt: rv.CreatedAt.UnixMilli(),
		UpdatedAt: rv.UpdatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:        domainreviews.ReviewID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		AuthorID:  domainreviews.AuthorID(d.AuthorID),
		Text:      d.Text,
		Stars:     d.Stars,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
