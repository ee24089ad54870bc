package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	appoutbox "spotaway/internal/app/outbox"
	domainlistings "spotaway/internal/domain/listings"
	"spotaway/internal/domain/shared/fault"
	"spotaway/internal/infra/storage/memory"
)

const (
	ownerID = int64(1)
	guestID = int64(2)
)

type recordingOutbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func (o *recordingOutbox) Add(_ context.Context, rec appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, rec)
	return nil
}

func (o *recordingOutbox) Flush(context.Context) error { return nil }

func (o *recordingOutbox) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.records))
	for _, r := range o.records {
		out = append(out, r.Name)
	}
	return out
}

func seedListing(t *testing.T, factory memory.Factory) *domainlistings.Listing {
	t.Helper()
	listing, err := domainlistings.New(domainlistings.CreateParams{
		Owner: domainlistings.OwnerID(ownerID),
		Attributes: domainlistings.Attributes{
			Address:     "1 Main St",
			City:        "Springfield",
			State:       "OR",
			Country:     "USA",
			Lat:         44.05,
			Lng:         -123.09,
			Name:        "Quiet cabin",
			Description: "A cabin",
			Price:       120,
		},
	})
	if err != nil {
		t.Fatalf("listings.New: %v", err)
	}
	if err := factory.ListingsRepo.Save(context.Background(), listing); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return listing
}

func futureDate(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}

func newAdmitHandler(factory memory.Factory, box appoutbox.Outbox) *AdmitBookingHandler {
	return &AdmitBookingHandler{UoWFactory: factory, Outbox: box}
}

func TestAdmitBookingHappyPath(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	box := &recordingOutbox{}
	h := newAdmitHandler(factory, box)

	got, err := h.Handle(context.Background(), AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   guestID,
		StartDate: futureDate(10),
		EndDate:   futureDate(13),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got.ID == 0 {
		t.Error("booking ID not assigned")
	}
	if got.ListingID != int64(listing.ID) || got.GuestID != guestID {
		t.Errorf("booking = %+v, wrong identity fields", got)
	}
	names := box.names()
	if len(names) != 1 || names[0] != "booking.admitted" {
		t.Errorf("outbox events = %v, want [booking.admitted]", names)
	}
}

func TestAdmitBookingEndNotAfterStart(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := newAdmitHandler(factory, &recordingOutbox{})

	_, err := h.Handle(context.Background(), AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   guestID,
		StartDate: futureDate(10),
		EndDate:   futureDate(10),
	})
	if !fault.Is(err, fault.KindValidationFailed) {
		t.Fatalf("err = %v, want validation fault", err)
	}
	if fault.FieldsOf(err)["endDate"] != "End date must be after start date" {
		t.Errorf("fields = %v, endDate message missing", fault.FieldsOf(err))
	}
}

func TestAdmitBookingStartInPast(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := newAdmitHandler(factory, &recordingOutbox{})

	_, err := h.Handle(context.Background(), AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   guestID,
		StartDate: futureDate(-5),
		EndDate:   futureDate(2),
	})
	if !fault.Is(err, fault.KindValidationFailed) {
		t.Fatalf("err = %v, want validation fault", err)
	}
	if _, ok := fault.FieldsOf(err)["startDate"]; !ok {
		t.Errorf("fields = %v, startDate message missing", fault.FieldsOf(err))
	}
}

func TestAdmitBookingUnknownListing(t *testing.T) {
	factory := memory.NewFactory()
	h := newAdmitHandler(factory, &recordingOutbox{})

	_, err := h.Handle(context.Background(), AdmitBookingCommand{
		ListingID: 999,
		GuestID:   guestID,
		StartDate: futureDate(10),
		EndDate:   futureDate(12),
	})
	if !fault.Is(err, fault.KindNotFound) {
		t.Fatalf("err = %v, want not-found fault", err)
	}
}

func TestAdmitBookingOwnListingRejected(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := newAdmitHandler(factory, &recordingOutbox{})

	_, err := h.Handle(context.Background(), AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   ownerID,
		StartDate: futureDate(10),
		EndDate:   futureDate(12),
	})
	if !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("err = %v, want forbidden fault", err)
	}
}

func TestAdmitBookingOverlapConflicts(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := newAdmitHandler(factory, &recordingOutbox{})
	ctx := context.Background()

	if _, err := h.Handle(ctx, AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   guestID,
		StartDate: futureDate(10),
		EndDate:   futureDate(15),
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := h.Handle(ctx, AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   guestID + 1,
		StartDate: futureDate(12),
		EndDate:   futureDate(17),
	})
	if !fault.Is(err, fault.KindConflict) {
		t.Fatalf("err = %v, want conflict fault", err)
	}
	if len(fault.FieldsOf(err)) == 0 {
		t.Error("conflict fault carries no boundary fields")
	}
}

func TestAdmitBookingTouchingRangesBothAdmitted(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := newAdmitHandler(factory, &recordingOutbox{})
	ctx := context.Background()

	if _, err := h.Handle(ctx, AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   guestID,
		StartDate: futureDate(10),
		EndDate:   futureDate(13),
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := h.Handle(ctx, AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   guestID + 1,
		StartDate: futureDate(13),
		EndDate:   futureDate(16),
	}); err != nil {
		t.Fatalf("touching booking rejected: %v", err)
	}
}

// Two goroutines racing for the same nights must resolve to exactly one
// admission; the storage layer repeats the overlap check atomically.
func TestAdmitBookingConcurrentSameRange(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	h := newAdmitHandler(factory, &recordingOutbox{})

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.Handle(context.Background(), AdmitBookingCommand{
				ListingID: int64(listing.ID),
				GuestID:   guestID + int64(i),
				StartDate: futureDate(20),
				EndDate:   futureDate(25),
			})
		}(i)
	}
	wg.Wait()

	admitted := 0
	for i, err := range errs {
		switch {
		case err == nil:
			admitted++
		case fault.Is(err, fault.KindConflict):
		default:
			t.Errorf("racer %d: unexpected error %v", i, err)
		}
	}
	if admitted != 1 {
		t.Fatalf("admitted = %d, want exactly 1", admitted)
	}
}

func TestCheckAvailability(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	ctx := context.Background()

	admit := newAdmitHandler(factory, &recordingOutbox{})
	if _, err := admit.Handle(ctx, AdmitBookingCommand{
		ListingID: int64(listing.ID),
		GuestID:   guestID,
		StartDate: futureDate(10),
		EndDate:   futureDate(15),
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	check := &CheckAvailabilityHandler{UoWFactory: factory}

	free, err := check.Handle(ctx, CheckAvailabilityQuery{
		ListingID: int64(listing.ID),
		StartDate: futureDate(15),
		EndDate:   futureDate(18),
	})
	if err != nil {
		t.Fatalf("free probe: %v", err)
	}
	if !free.Available {
		t.Error("touching range reported unavailable")
	}

	busy, err := check.Handle(ctx, CheckAvailabilityQuery{
		ListingID: int64(listing.ID),
		StartDate: futureDate(12),
		EndDate:   futureDate(14),
	})
	if err != nil {
		t.Fatalf("busy probe: %v", err)
	}
	if busy.Available {
		t.Error("overlapping range reported available")
	}
	if len(busy.Conflicts) == 0 {
		t.Error("busy probe carries no boundary fields")
	}
}

func TestListGuestBookings(t *testing.T) {
	factory := memory.NewFactory()
	listing := seedListing(t, factory)
	ctx := context.Background()

	admit := newAdmitHandler(factory, &recordingOutbox{})
	for i := 0; i < 2; i++ {
		if _, err := admit.Handle(ctx, AdmitBookingCommand{
			ListingID: int64(listing.ID),
			GuestID:   guestID,
			StartDate: futureDate(10 + i*10),
			EndDate:   futureDate(13 + i*10),
		}); err != nil {
			t.Fatalf("seed booking %d: %v", i, err)
		}
	}

	list := &ListGuestBookingsHandler{UoWFactory: factory}
	got, err := list.Handle(ctx, ListGuestBookingsQuery{GuestID: guestID})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got.Total != 2 || len(got.Bookings) != 2 {
		t.Errorf("got %d bookings (total %d), want 2", len(got.Bookings), got.Total)
	}
}
