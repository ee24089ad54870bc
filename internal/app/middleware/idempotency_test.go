package middleware

import (
	"context"
	"testing"

	"spotaway/internal/app/commands"
)

type echoResult struct {
	Value string `json:"value"`
	Calls int    `json:"calls"`
}

type echoCommand struct {
	IdemKey string
	Value   string
}

func (echoCommand) Key() string { return "test.echo" }

func (c echoCommand) IdempotencyKey() string { return c.IdemKey }

func (echoCommand) ResultPrototype() any { return &echoResult{} }

type memoryStore struct {
	items map[string]IdempotencyRecord
}

func (s *memoryStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *memoryStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.items[rec.Key] = rec
	return nil
}

func newEchoBus(t *testing.T, calls *int) commands.Bus {
	t.Helper()
	bus := commands.NewInMemoryBus()
	bus.RegisterRaw("test.echo", func(_ context.Context, cmd commands.Command) (any, error) {
		*calls++
		return &echoResult{Value: cmd.(echoCommand).Value, Calls: *calls}, nil
	})
	return bus
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	calls := 0
	store := &memoryStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newEchoBus(t, &calls), Idempotency(store, nil))
	ctx := context.Background()

	first, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k1", Value: "a"})
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k1", Value: "changed"})
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
	if second.Value != first.Value || second.Calls != first.Calls {
		t.Errorf("replay = %+v, want stored %+v", second, first)
	}
}

func TestIdempotencyDistinctKeysRunIndependently(t *testing.T) {
	calls := 0
	store := &memoryStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newEchoBus(t, &calls), Idempotency(store, nil))
	ctx := context.Background()

	if _, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k1", Value: "a"}); err != nil {
		t.Fatalf("dispatch k1: %v", err)
	}
	if _, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k2", Value: "b"}); err != nil {
		t.Fatalf("dispatch k2: %v", err)
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

func TestIdempotencyBlankKeyPassesThrough(t *testing.T) {
	calls := 0
	store := &memoryStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newEchoBus(t, &calls), Idempotency(store, nil))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "a"}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2 without a key", calls)
	}
}
