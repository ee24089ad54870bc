package uow

import (
	"context"

	domainauth "spotaway/internal/domain/auth"
	domainbooking "spotaway/internal/domain/booking"
	domainimages "spotaway/internal/domain/images"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	domainuser "spotaway/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Repository
	Reviews() domainreviews.Repository
	ListingImages() domainimages.ListingImageRepository
	ReviewImages() domainimages.ReviewImageRepository
	Users() domainuser.Repository
	Sessions() domainauth.SessionStore

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
