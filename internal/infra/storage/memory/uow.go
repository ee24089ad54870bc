package memory

import (
	"context"
	"errors"

	"spotaway/internal/app/uow"
	domainauth "spotaway/internal/domain/auth"
	domainbooking "spotaway/internal/domain/booking"
	domainimages "spotaway/internal/domain/images"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	domainuser "spotaway/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo      domainlistings.Repository
	BookingRepo       domainbooking.Repository
	ReviewsRepo       domainreviews.Repository
	ListingImagesRepo domainimages.ListingImageRepository
	ReviewImagesRepo  domainimages.ReviewImageRepository
	UsersRepo         domainuser.Repository
	SessionsStore     domainauth.SessionStore
}

// NewFactory builds a factory over a fresh set of in-memory stores. Listing
// deletion cascades to bookings, reviews and listing images, matching the
// document store.
func NewFactory() Factory {
	listings := NewListingRepository()
	bookings := NewBookingRepository()
	reviews := NewReviewRepository()
	listingImages := NewListingImageRepository()
	listings.cascade = []listingPurger{bookings, reviews, listingImages}
	return Factory{
		ListingsRepo:      listings,
		BookingRepo:       bookings,
		ReviewsRepo:       reviews,
		ListingImagesRepo: listingImages,
		ReviewImagesRepo:  NewReviewImageRepository(),
		UsersRepo:         NewUserRepository(),
		SessionsStore:     NewSessionStore(),
	}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.BookingRepo == nil || f.ReviewsRepo == nil ||
		f.ListingImagesRepo == nil || f.ReviewImagesRepo == nil ||
		f.UsersRepo == nil || f.SessionsStore == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:      f.ListingsRepo,
		bookings:      f.BookingRepo,
		reviews:       f.ReviewsRepo,
		listingImages: f.ListingImagesRepo,
		reviewImages:  f.ReviewImagesRepo,
		users:         f.UsersRepo,
		sessions:      f.SessionsStore,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
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
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
