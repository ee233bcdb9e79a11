package scenario

import (
	"testing"

	"github.com/goliatone/go-scenario/pkg/activity"
)

func TestRegistryLastWriteWins(t *testing.T) {
	capture := &activity.CaptureHook{}
	var events []DeclarationLogEvent
	b := New(
		WithActivityHooks(activity.Hooks{capture}),
		WithDeclarationLogger(DeclarationLoggerFunc(func(event DeclarationLogEvent) {
			events = append(events, event)
		})),
	)

	firstRan := false
	secondRan := false
	err := b.Scenario(map[string]any{"role": "admin"}, func() {
		_ = b.Test("acts", func(testing.TB) { firstRan = true })
		_ = b.Test("acts", func(testing.TB) { secondRan = true })
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := b.Registry().Len(); got != 1 {
		t.Fatalf("expected single record after overwrite, got %d", got)
	}
	record, ok := b.Registry().Lookup("acts_role_admin")
	if !ok {
		t.Fatalf("record not found")
	}
	record.body(t)
	if firstRan || !secondRan {
		t.Fatalf("expected the later registration to win; first=%v second=%v", firstRan, secondRan)
	}

	var sawCollision bool
	for _, event := range events {
		if event.Kind == DeclarationKindTest && event.Collision {
			sawCollision = true
		}
	}
	if !sawCollision {
		t.Fatalf("expected collision to be logged, events: %+v", events)
	}

	var overwritten int
	for _, event := range capture.Events {
		if event.Verb == activity.VerbTestOverwritten {
			overwritten++
			if event.ObjectID != "acts_role_admin" {
				t.Fatalf("expected overwrite event for acts_role_admin, got %q", event.ObjectID)
			}
		}
	}
	if overwritten != 1 {
		t.Fatalf("expected exactly one overwrite event, got %d", overwritten)
	}
}

func TestRegistryRecordsSortedByName(t *testing.T) {
	b := New()
	_ = b.Scenario(map[string]any{"z": 1}, func() {
		_ = b.Test("", func(testing.TB) {})
	})
	_ = b.Scenario(map[string]any{"a": 1}, func() {
		_ = b.Test("", func(testing.TB) {})
	})

	records := b.Registry().Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name() != "a_1" || records[1].Name() != "z_1" {
		t.Fatalf("expected records sorted by name, got %q then %q", records[0].Name(), records[1].Name())
	}
}

func TestRegistryLookupMissing(t *testing.T) {
	registry := NewRegistry()
	if _, ok := registry.Lookup("missing"); ok {
		t.Fatalf("expected lookup of missing record to report absence")
	}
	if got := registry.Len(); got != 0 {
		t.Fatalf("expected empty registry, got %d", got)
	}
}
