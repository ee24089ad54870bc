package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "spotaway/internal/domain/booking"
	domainlistings "spotaway/internal/domain/listings"
	domainreviews "spotaway/internal/domain/reviews"
	"spotaway/internal/domain/shared/events"
)

// listingPurger removes everything a store holds for a deleted listing.
type listingPurger interface {
	purgeListing(id domainlistings.ListingID)
}

// ListingRepository is an in-memory implementation for dev and tests. IDs are
// assigned from a monotonic counter on first save. Deleting a listing cascades
// to the attached purgers, mirroring the document store.
type ListingRepository struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[domainlistings.ListingID]*domainlistings.Listing
	cascade []listingPurger
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[domainlistings.ListingID]*domainlistings.Listing)}
}

// ByID returns a listing or domain not-found.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) ListByOwner(ctx context.Context, owner domainlistings.OwnerID) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainlistings.Listing, 0)
	for _, listing := range r.items {
		if listing.OwnedBy(owner) {
			matches = append(matches, cloneListing(listing))
		}
	}
	sortListingsByID(matches)
	return matches, nil
}

// Search filters the full set, orders by ID for stable page partitioning and
// slices out the requested window.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return domainlistings.SearchResult{}, ctx.Err()
			default:
			}
		}
		if opts.Matches(listing) {
			matches = append(matches, cloneListing(listing))
		}
	}
	sortListingsByID(matches)

	total := len(matches)
	start := opts.Offset()
	if start > total {
		start = total
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}
	return domainlistings.SearchResult{Items: matches[start:end], Total: total}, nil
}

// Save stores a listing, assigning an ID when absent.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if listing.ID == 0 {
		r.nextID++
		listing.ID = domainlistings.ListingID(r.nextID)
	}
	r.items[listing.ID] = cloneListing(listing)
	return nil
}

// Delete removes the listing and everything hanging off it.
func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	if _, ok := r.items[id]; !ok {
		r.mu.Unlock()
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	r.mu.Unlock()

	for _, purger := range r.cascade {
		purger.purgeListing(id)
	}
	return nil
}

func sortListingsByID(items []*domainlistings.Listing) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	if l == nil {
		return nil
	}
	copyListing := *l
	copyListing.EventRecorder = events.EventRecorder{}
	return &copyListing
}

// BookingRepository stores bookings in memory. Inserts serialize per listing
// so the overlap re-check and the write happen as one unit.
type BookingRepository struct {
	mu        sync.RWMutex
	nextID    int64
	items     map[domainbooking.BookingID]*domainbooking.Booking
	byListing map[domainlistings.ListingID][]domainbooking.BookingID

	locksMu sync.Mutex
	locks   map[domainlistings.ListingID]*sync.Mutex
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items:     make(map[domainbooking.BookingID]*domainbooking.Booking),
		byListing: make(map[domainlistings.ListingID][]domainbooking.BookingID),
		locks:     make(map[domainlistings.ListingID]*sync.Mutex),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listByListingLocked(listingID), nil
}

func (r *BookingRepository) listByListingLocked(listingID domainlistings.ListingID) []*domainbooking.Booking {
	ids := r.byListing[listingID]
	matches := make([]*domainbooking.Booking, 0, len(ids))
	for _, id := range ids {
		if booking, ok := r.items[id]; ok {
			matches = append(matches, cloneBooking(booking))
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID domainbooking.GuestID) ([]*domainbooking.Booking, error) {
	if guestID <= 0 {
		return nil, domainbooking.ErrGuestRequired
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.GuestID == guestID {
			matches = append(matches, cloneBooking(booking))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// Insert re-runs the overlap check under the listing's lock before writing.
// Two racing admissions with overlapping ranges serialize here; the loser
// gets ErrDatesConflict and nothing is written.
func (r *BookingRepository) Insert(ctx context.Context, booking *domainbooking.Booking) error {
	lock := r.listingLock(booking.ListingID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.listByListingLocked(booking.ListingID)
	if conflicts := domainbooking.FindConflicts(existing, booking.Range); len(conflicts) > 0 {
		return domainbooking.ErrDatesConflict
	}

	if booking.ID == 0 {
		r.nextID++
		booking.ID = domainbooking.BookingID(r.nextID)
	}
	booking.Version++
	stored := cloneBooking(booking)
	r.items[stored.ID] = stored
	r.byListing[stored.ListingID] = append(r.byListing[stored.ListingID], stored.ID)
	return nil
}

func (r *BookingRepository) purgeListing(id domainlistings.ListingID) {
	r.mu.Lock()
	for _, bookingID := range r.byListing[id] {
		delete(r.items, bookingID)
	}
	delete(r.byListing, id)
	r.mu.Unlock()

	r.locksMu.Lock()
	delete(r.locks, id)
	r.locksMu.Unlock()
}

func (r *BookingRepository) listingLock(id domainlistings.ListingID) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	if lock, ok := r.locks[id]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	r.locks[id] = lock
	return lock
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	copyBooking := *b
	copyBooking.EventRecorder = events.EventRecorder{}
	return &copyBooking
}

// ReviewRepository keeps reviews keyed by ID with a unique (listing, author)
// index, the in-memory analogue of a unique compound index.
type ReviewRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[domainreviews.ReviewID]*domainreviews.Review
	byPair map[reviewPairKey]domainreviews.ReviewID
}

type reviewPairKey struct {
	listing domainlistings.ListingID
	author  domainreviews.AuthorID
}

// NewReviewRepository builds an empty review store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		items:  make(map[domainreviews.ReviewID]*domainreviews.Review),
		byPair: make(map[reviewPairKey]domainreviews.ReviewID),
	}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return cloneReview(review), nil
}

func (r *ReviewRepository) ByListingAndAuthor(ctx context.Context, listingID domainlistings.ListingID, authorID domainreviews.AuthorID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[reviewPairKey{listing: listingID, author: authorID}]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return cloneReview(r.items[id]), nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.ListingID == listingID {
			matches = append(matches, cloneReview(review))
		}
	}
	sortReviewsNewestFirst(matches)
	return matches, nil
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID domainreviews.AuthorID) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.AuthorID == authorID {
			matches = append(matches, cloneReview(review))
		}
	}
	sortReviewsNewestFirst(matches)
	return matches, nil
}

// Save inserts or updates, refusing a second review by the same author for
// the same listing.
func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reviewPairKey{listing: review.ListingID, author: review.AuthorID}
	if existingID, ok := r.byPair[key]; ok && existingID != review.ID {
		return domainreviews.ErrAlreadyReviewed
	}
	if review.ID == 0 {
		r.nextID++
		review.ID = domainreviews.ReviewID(r.nextID)
	}
	r.byPair[key] = review.ID
	r.items[review.ID] = cloneReview(review)
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.items[id]
	if !ok {
		return domainreviews.ErrNotFound
	}
	delete(r.items, id)
	delete(r.byPair, reviewPairKey{listing: review.ListingID, author: review.AuthorID})
	return nil
}

func (r *ReviewRepository) purgeListing(id domainlistings.ListingID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for reviewID, review := range r.items {
		if review.ListingID == id {
			delete(r.items, reviewID)
			delete(r.byPair, reviewPairKey{listing: id, author: review.AuthorID})
		}
	}
}

// RatingsByListing aggregates all requested listings in one pass over the
// store, the in-memory analogue of a grouped query.
func (r *ReviewRepository) RatingsByListing(ctx context.Context, ids []domainlistings.ListingID) (map[domainlistings.ListingID]domainreviews.Summary, error) {
	wanted := make(map[domainlistings.ListingID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	grouped := make(map[domainlistings.ListingID][]*domainreviews.Review)
	for _, review := range r.items {
		if _, ok := wanted[review.ListingID]; ok {
			grouped[review.ListingID] = append(grouped[review.ListingID], review)
		}
	}
	out := make(map[domainlistings.ListingID]domainreviews.Summary, len(grouped))
	for id, reviews := range grouped {
		out[id] = domainreviews.Summarize(reviews)
	}
	return out, nil
}

func sortReviewsNewestFirst(items []*domainreviews.Review) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func cloneReview(rv *domainreviews.Review) *domainreviews.Review {
	if rv == nil {
		return nil
	}
	copyReview := *rv
	copyReview.EventRecorder = events.EventRecorder{}
	return &copyReview
}

var (
	_ domainlistings.Repository = (*ListingRepository)(nil)
	_ domainbooking.Repository  = (*BookingRepository)(nil)
	_ domainreviews.Repository  = (*ReviewRepository)(nil)
)
