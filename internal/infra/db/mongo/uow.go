package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spotaway/internal/app/uow"
	domainauth "spotaway/internal/domain/auth"
	domainbooking "spotaway/internal/domain/booking"
	domainimages "spotaway/internal/domain/images"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	domainuser "spotaway/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ListingsRepo      domainlistings.Repository
	BookingRepo       domainbooking.Repository
	ReviewsRepo       domainreviews.Repository
	ListingImagesRepo domainimages.ListingImageRepository
	ReviewImagesRepo  domainimages.ReviewImageRepository
	UsersRepo         domainuser.Repository
	SessionsStore     domainauth.SessionStore
}

// NewFactory builds the factory with repositories over the given database.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:                db,
		ListingsRepo:      NewListingRepository(db),
		BookingRepo:       NewBookingRepository(db),
		ReviewsRepo:       NewReviewRepository(db),
		ListingImagesRepo: NewListingImageRepository(db),
		ReviewImagesRepo:  NewReviewImageRepository(db),
		UsersRepo:         NewUserRepository(db),
		SessionsStore:     NewSessionStore(db),
	}
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:            f.DB,
		session:       session,
		listings:      f.ListingsRepo,
		bookings:      f.BookingRepo,
		reviews:       f.ReviewsRepo,
		listingImages: f.ListingImagesRepo,
		reviewImages:  f.ReviewImagesRepo,
		users:         f.UsersRepo,
		sessions:      f.SessionsStore,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	listings      domainlistings.Repository
	bookings      domainbooking.Repository
	reviews       domainreviews.Repository
	listingImages domainimages.ListingImageRepository
	reviewImages  domainimages.ReviewImageRepository
	users         domainuser.Repository
	sessions      domainauth.SessionStore
}

func (u *Unit) Listings() domainlistings.Repository {
	return u.listings
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Reviews() domainreviews.Repository {
	return u.reviews
}

func (u *Unit) ListingImages() domainimages.ListingImageRepository {
	return u.listingImages
}

func (u *Unit) ReviewImages() domainimages.ReviewImageRepository {
	return u.reviewImages
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) Sessions() domainauth.SessionStore {
	return u.sessions
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
