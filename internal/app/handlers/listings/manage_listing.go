package listings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/dto"
	"spotaway/internal/app/middleware"
	"spotaway/internal/app/outbox"
	"spotaway/internal/app/uow"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/events"
	"spotaway/internal/domain/shared/fault"
)

const (
	createListingKey = "listings.create"
	updateListingKey = "listings.update"
	deleteListingKey = "listings.delete"
)

// CreateListingCommand registers a new listing for an owner.
type CreateListingCommand struct {
	OwnerID         int64
	Attributes      domainlistings.Attributes
	IdempotencyKeyV string
}

func (c CreateListingCommand) Key() string { return createListingKey }

func (c CreateListingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateListingCommand) ResultPrototype() any { return &dto.ListingSummary{} }

// CreateListingHandler validates all attribute constraints at once and
// reports every violated field, not just the first.
type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.ListingSummary, error) {
	unit, ctx, commit, rollback, err := beginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer rollback()

	listing, err := domainlistings.New(domainlistings.CreateParams{
		Owner:      domainlistings.OwnerID(cmd.OwnerID),
		Attributes: cmd.Attributes,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, fault.StoreUnavailable(err)
	}

	listing.Record(domainlistings.ListingCreatedEvent{
		ListingID: listing.ID,
		OwnerID:   listing.Owner,
		At:        listing.CreatedAt,
	})
	pending := listing.PendingEvents()
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", listing.ID, "owner_id", listing.Owner)
	}
	summary := dto.MapListingSummary(listing, domainreviews.Summary{}, nil)
	return &summary, nil
}

// UpdateListingCommand replaces a listing's attributes, owner only.
type UpdateListingCommand struct {
	ListingID  int64
	OwnerID    int64
	Attributes domainlistings.Attributes
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.ListingSummary, error) {
	unit, ctx, commit, rollback, err := beginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer rollback()

	listing, err := loadOwned(ctx, unit, cmd.ListingID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := listing.UpdateAttributes(cmd.Attributes, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, fault.StoreUnavailable(err)
	}

	pending := listing.PendingEvents()
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing updated", "listing_id", listing.ID)
	}
	summary := dto.MapListingSummary(listing, domainreviews.Summary{}, nil)
	return &summary, nil
}

// DeleteListingCommand removes a listing, owner only. Dependent bookings,
// reviews and images are removed by the store.
type DeleteListingCommand struct {
	ListingID int64
	OwnerID   int64
}

func (c DeleteListingCommand) Key() string { return deleteListingKey }

type DeleteListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (struct{}, error) {
	unit, ctx, commit, rollback, err := beginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return struct{}{}, err
	}
	defer rollback()

	listing, err := loadOwned(ctx, unit, cmd.ListingID, cmd.OwnerID)
	if err != nil {
		return struct{}{}, err
	}
	if err := unit.Listings().Delete(ctx, listing.ID); err != nil {
		return struct{}{}, fault.StoreUnavailable(err)
	}

	pending := []events.DomainEvent{domainlistings.ListingDeletedEvent{
		ListingID: listing.ID,
		At:        time.Now().UTC(),
	}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return struct{}{}, err
	}

	if err := commit(); err != nil {
		return struct{}{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing deleted", "listing_id", listing.ID)
	}
	return struct{}{}, nil
}

func loadOwned(ctx context.Context, unit uow.UnitOfWork, listingID, ownerID int64) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, fault.NotFound("Listing couldn't be found")
		}
		return nil, fault.StoreUnavailable(err)
	}
	if !listing.OwnedBy(domainlistings.OwnerID(ownerID)) {
		return nil, fault.Forbidden("Forbidden")
	}
	return listing, nil
}

// beginWriteUnit reuses a unit of work from context or begins one, returning
// commit and rollback closures that are no-ops for an inherited unit.
func beginWriteUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func() error, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, func() error { return nil }, func() {}, nil
	}
	if factory == nil {
		return nil, ctx, nil, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, nil, fault.StoreUnavailable(err)
	}
	ctx = uow.ContextWithUnitOfWork(ctx, unit)
	committed := false
	commit := func() error {
		if err := unit.Commit(ctx); err != nil {
			return fault.StoreUnavailable(err)
		}
		committed = true
		return nil
	}
	rollback := func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}
	return unit, ctx, commit, rollback, nil
}

var (
	_ commands.Handler[CreateListingCommand, *dto.ListingSummary] = (*CreateListingHandler)(nil)
	_ commands.Handler[UpdateListingCommand, *dto.ListingSummary] = (*UpdateListingHandler)(nil)
	_ commands.Handler[DeleteListingCommand, struct{}]            = (*DeleteListingHandler)(nil)
	_ middleware.IdempotentCommand                                = (*CreateListingCommand)(nil)
)
