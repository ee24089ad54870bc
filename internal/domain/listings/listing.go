package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"spotaway/internal/domain/shared/events"
	"spotaway/internal/domain/shared/fault"
)

var (
	ErrNotFound = errors.New("listings: not found")
)

const maxNameLength = 50

type ListingID int64

type OwnerID int64

// Listing is the bookable unit. Derived values (average rating, review
// count, preview image) are never stored here; they are computed at query
// time by the search and detail handlers.
type Listing struct {
	ID          ListingID
	Owner       OwnerID
	Address     string
	City        string
	State       string
	Country     string
	Lat         float64
	Lng         float64
	Name        string
	Description string
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	ListByOwner(ctx context.Context, owner OwnerID) ([]*Listing, error)
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
}

type Attributes struct {
	Address     string
	City        string
	State       string
	Country     string
	Lat         float64
	Lng         float64
	Name        string
	Description string
	Price       float64
}

type CreateParams struct {
	Owner OwnerID
	Attributes
	Now time.Time
}

// ValidateAttributes collects every violated field constraint. The messages
// are part of the public API contract and surface verbatim to clients.
func ValidateAttributes(a Attributes) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(a.Address) == "" {
		fields["address"] = "Street address is required"
	}
	if strings.TrimSpace(a.City) == "" {
		fields["city"] = "City is required"
	}
	if strings.TrimSpace(a.State) == "" {
		fields["state"] = "State is required"
	}
	if strings.TrimSpace(a.Country) == "" {
		fields["country"] = "Country is required"
	}
	if a.Lat < -90 || a.Lat > 90 {
		fields["lat"] = "Latitude must be between -90 and 90"
	}
	if a.Lng < -180 || a.Lng > 180 {
		fields["lng"] = "Longitude must be between -180 and 180"
	}
	if len(a.Name) > maxNameLength {
		fields["name"] = "Name must be less than 50 characters"
	}
	if strings.TrimSpace(a.Name) == "" {
		fields["name"] = "Name is required"
	}
	if strings.TrimSpace(a.Description) == "" {
		fields["description"] = "Description is required"
	}
	if a.Price < 0 {
		fields["price"] = "Price must be a positive number"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func New(params CreateParams) (*Listing, error) {
	if params.Owner <= 0 {
		return nil, errors.New("listings: owner is required")
	}
	if fields := ValidateAttributes(params.Attributes); fields != nil {
		f := fault.Validation("listing validation failed")
		f.Fields = fields
		return nil, f
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	listing := &Listing{
		Owner:       params.Owner,
		Address:     strings.TrimSpace(params.Address),
		City:        strings.TrimSpace(params.City),
		State:       strings.TrimSpace(params.State),
		Country:     strings.TrimSpace(params.Country),
		Lat:         params.Lat,
		Lng:         params.Lng,
		Name:        strings.TrimSpace(params.Name),
		Description: strings.TrimSpace(params.Description),
		Price:       params.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return listing, nil
}

// UpdateAttributes replaces the mutable fields, re-validating the full set.
func (l *Listing) UpdateAttributes(a Attributes, now time.Time) error {
	if fields := ValidateAttributes(a); fields != nil {
		f := fault.Validation("listing validation failed")
		f.Fields = fields
		return f
	}
	l.Address = strings.TrimSpace(a.Address)
	l.City = strings.TrimSpace(a.City)
	l.State = strings.TrimSpace(a.State)
	l.Country = strings.TrimSpace(a.Country)
	l.Lat = a.Lat
	l.Lng = a.Lng
	l.Name = strings.TrimSpace(a.Name)
	l.Description = strings.TrimSpace(a.Description)
	l.Price = a.Price
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// OwnedBy reports whether the listing belongs to the given user.
func (l *Listing) OwnedBy(owner OwnerID) bool {
	return l.Owner == owner
}
