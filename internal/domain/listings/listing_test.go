package listings

import (
	"errors"
	"testing"

	"spotaway/internal/domain/shared/fault"
)

func validAttributes() Attributes {
	return Attributes{
		Address:     "123 Disney Lane",
		City:        "San Francisco",
		State:       "California",
		Country:     "United States of America",
		Lat:         37.7645358,
		Lng:         -122.4730327,
		Name:        "App Academy",
		Description: "Place where web developers are created",
		Price:       123,
	}
}

func TestNewValidListing(t *testing.T) {
	l, err := New(CreateParams{Owner: 1, Attributes: validAttributes()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Owner != 1 || l.Name != "App Academy" {
		t.Errorf("unexpected listing %+v", l)
	}
}

func TestNewCollectsFieldErrors(t *testing.T) {
	a := validAttributes()
	a.Address = ""
	a.Lat = 91
	a.Lng = -181
	a.Price = -5
	a.Name = "this listing name is far far far far too long to be accepted"
	_, err := New(CreateParams{Owner: 1, Attributes: a})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	var f *fault.Fault
	if !errors.As(err, &f) || f.Kind != fault.KindValidationFailed {
		t.Fatalf("got %v, want ValidationFailed fault", err)
	}
	for _, field := range []string{"address", "lat", "lng", "price", "name"} {
		if f.Fields[field] == "" {
			t.Errorf("missing field message for %q in %v", field, f.Fields)
		}
	}
}

func TestValidateAttributesMessages(t *testing.T) {
	a := validAttributes()
	a.Lat = -90.5
	fields := ValidateAttributes(a)
	if got := fields["lat"]; got != "Latitude must be between -90 and 90" {
		t.Errorf("lat message = %q", got)
	}
	a = validAttributes()
	if fields := ValidateAttributes(a); fields != nil {
		t.Errorf("valid attributes produced %v", fields)
	}
}

func TestSearchParamsClamps(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 10},
		{1, 10, 1, 10},
		{-3, 5, 1, 10},
		{11, 25, 10, 20},
		{10, 20, 10, 20},
		{4, 15, 4, 15},
	}
	for _, tc := range cases {
		n := SearchParams{Page: tc.page, PageSize: tc.size}.Normalized()
		if n.Page != tc.wantPage || n.PageSize != tc.wantSize {
			t.Errorf("Normalized(%d,%d) = (%d,%d), want (%d,%d)", tc.page, tc.size, n.Page, n.PageSize, tc.wantPage, tc.wantSize)
		}
	}
	n := SearchParams{Page: 3, PageSize: 12}.Normalized()
	if n.Offset() != 24 {
		t.Errorf("Offset = %d, want 24", n.Offset())
	}
}

func TestSearchParamsMatches(t *testing.T) {
	l := &Listing{Lat: 40, Lng: -70, Price: 100}
	f := func(v float64) *float64 { return &v }

	if !(SearchParams{}).Matches(l) {
		t.Error("absent filters must match everything")
	}
	if !(SearchParams{MinLat: f(40), MaxLat: f(40)}).Matches(l) {
		t.Error("inclusive bounds must match boundary values")
	}
	if (SearchParams{MinPrice: f(150)}).Matches(l) {
		t.Error("min price filter must exclude cheaper listing")
	}
	// Inverted pair matches nothing rather than erroring.
	if (SearchParams{MinPrice: f(100), MaxPrice: f(50)}).Matches(l) {
		t.Error("inverted price pair must match nothing")
	}
	if (SearchParams{MinLng: f(-60)}).Matches(l) {
		t.Error("min lng filter must exclude listing west of bound")
	}
}
