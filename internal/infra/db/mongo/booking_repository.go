package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "spotaway/internal/domain/booking"
	"spotaway/internal/domain/listings"
	domainrange "spotaway/internal/domain/shared/daterange"
)

type BookingRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{db: db, col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*domainbooking.Booking, error) {
	return r.findAll(ctx, bson.M{"listing_id": int64(listingID)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID domainbooking.GuestID) ([]*domainbooking.Booking, error) {
	if guestID <= 0 {
		return nil, domainbooking.ErrGuestRequired
	}
	return r.findAll(ctx, bson.M{"guest_id": int64(guestID)},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// Insert re-checks overlap and writes inside the transaction carried by ctx.
// An upsert on a per-listing lock document serializes concurrent admissions
// for the same listing: the second transaction conflicts on the lock write
// and retries or fails, so both can never pass the overlap check.
func (r *BookingRepository) Insert(ctx context.Context, booking *domainbooking.Booking) error {
	if _, err := r.db.Collection("booking_locks").UpdateByID(ctx,
		int64(booking.ListingID),
		bson.M{"$set": bson.M{"listing_id": int64(booking.ListingID), "touched_at": time.Now().UnixMilli()}},
		options.Update().SetUpsert(true),
	); err != nil {
		return err
	}

	existing, err := r.ListByListing(ctx, booking.ListingID)
	if err != nil {
		return err
	}
	if conflicts := domainbooking.FindConflicts(existing, booking.Range); len(conflicts) > 0 {
		return domainbooking.ErrDatesConflict
	}

	if booking.ID == 0 {
		id, err := nextID(ctx, r.db, "bookings")
		if err != nil {
			return err
		}
		booking.ID = domainbooking.BookingID(id)
	}
	booking.Version++
	doc := newBookingDocument(booking)
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrDatesConflict
		}
		return err
	}
	return nil
}

func (r *BookingRepository) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	items := make([]*domainbooking.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	return items, cursor.Err()
}

type bookingDocument struct {
	ID        int64         `bson:"_id"`
	ListingID int64         `bson:"listing_id"`
	GuestID   int64         `bson:"guest_id"`
	Range     rangeDocument `bson:"range"`
	CreatedAt int64         `bson:"created_at"`
	UpdatedAt int64         `bson:"updated_at"`
	Version   int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        int64(b.ID),
		ListingID: int64(b.ListingID),
		GuestID:   int64(b.GuestID),
		Range:     rangeDocument{Start: b.Range.Start.UnixMilli(), End: b.Range.End.UnixMilli()},
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: listings.ListingID(d.ListingID),
		GuestID:   domainbooking.GuestID(d.GuestID),
		Range: domainrange.DateRange{
			Start: timestampToTime(d.Range.Start),
			End:   timestampToTime(d.Range.End),
		},
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
