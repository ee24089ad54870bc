package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsNestedFaults(t *testing.T) {
	inner := NotFound("gone")
	wrapped := fmt.Errorf("handler: %w", inner)
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf = %q, want %q", KindOf(wrapped), KindNotFound)
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("plain error reported a fault kind")
	}
	if !Is(wrapped, KindNotFound) {
		t.Error("Is missed the wrapped fault")
	}
}

func TestWithFieldAccumulates(t *testing.T) {
	f := Validation("bad input").
		WithField("startDate", "Start date cannot be in the past").
		WithField("endDate", "End date must be after start date")
	fields := FieldsOf(f)
	if len(fields) != 2 {
		t.Fatalf("fields = %v, want 2 entries", fields)
	}
	if fields["endDate"] != "End date must be after start date" {
		t.Errorf("endDate = %q", fields["endDate"])
	}
}

func TestStoreUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	f := StoreUnavailable(cause)
	if !errors.Is(f, cause) {
		t.Error("cause lost in wrapping")
	}
	if f.Kind != KindStoreUnavailable {
		t.Errorf("kind = %q", f.Kind)
	}
}
