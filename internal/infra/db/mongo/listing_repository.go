package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "spotaway/internal/domain/listings"
)

type ListingRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{db: db, col: db.Collection("listings")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) ListByOwner(ctx context.Context, owner domainlistings.OwnerID) ([]*domainlistings.Listing, error) {
	cursor, err := r.col.Find(ctx, bson.M{"owner_id": int64(owner)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

// Search translates the normalized filters into one find with a skip/limit
// window plus a count on the same filter. Sorting by _id keeps pages stable.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := searchFilter(opts)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	cursor, err := r.col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.PageSize)))
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	items, err := decodeListings(ctx, cursor)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func searchFilter(opts domainlistings.SearchParams) bson.M {
	filter := bson.M{}
	addRange := func(field string, min, max *float64) {
		bounds := bson.M{}
		if min != nil {
			bounds["$gte"] = *min
		}
		if max != nil {
			bounds["$lte"] = *max
		}
		if len(bounds) > 0 {
			filter[field] = bounds
		}
	}
	addRange("lat", opts.MinLat, opts.MaxLat)
	addRange("lng", opts.MinLng, opts.MaxLng)
	addRange("price", opts.MinPrice, opts.MaxPrice)
	return filter
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if listing.ID == 0 {
		id, err := nextID(ctx, r.db, "listings")
		if err != nil {
			return err
		}
		listing.ID = domainlistings.ListingID(id)
	}
	doc := newListingDocument(listing)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

// Delete removes the listing and everything hanging off it.
func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": int64(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	key := bson.M{"listing_id": int64(id)}
	for _, col := range []string{"bookings", "reviews", "listing_images", "booking_locks"} {
		if _, err := r.db.Collection(col).DeleteMany(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]*domainlistings.Listing, error) {
	defer cursor.Close(ctx)
	items := make([]*domainlistings.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	return items, cursor.Err()
}

type listingDocument struct {
	ID          int64   `bson:"_id"`
	OwnerID     int64   `bson:"owner_id"`
	Address     string  `bson:"address"`
	City        string  `bson:"city"`
	State       string  `bson:"state"`
	Country     string  `bson:"country"`
	Lat         float64 `bson:"lat"`
	Lng         float64 `bson:"lng"`
	Name        string  `bson:"name"`
	Description string  `bson:"description"`
	Price       float64 `bson:"price"`
	CreatedAt   int64   `bson:"created_at"`
	UpdatedAt   int64   `bson:"updated_at"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:          int64(l.ID),
		OwnerID:     int64(l.Owner),
		Address:     l.Address,
		City:        l.City,
		State:       l.State,
		Country:     l.Country,
		Lat:         l.Lat,
		Lng:         l.Lng,
		Name:        l.Name,
		Description: l.Description,
		Price:       l.Price,
		CreatedAt:   l.CreatedAt.UnixMilli(),
		UpdatedAt:   l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Owner:       domainlistings.OwnerID(d.OwnerID),
		Address:     d.Address,
		City:        d.City,
		State:       d.State,
		Country:     d.Country,
		Lat:         d.Lat,
		Lng:         d.Lng,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
