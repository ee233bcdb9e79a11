package scenario

import (
	"reflect"
	"testing"
)

func TestRecordStripsReservedPostKey(t *testing.T) {
	b := New()
	err := b.Scenario(map[string]any{
		"role":          "admin",
		ReservedPostKey: map[string]any{"cleanup": true},
	}, func() {
		_ = b.Test("", func(testing.TB) {})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, ok := b.Registry().Lookup("role_admin")
	if !ok {
		t.Fatalf("record not found")
	}

	pre := record.PreScope()
	if want := map[string]any{"role": "admin"}; !reflect.DeepEqual(pre, want) {
		t.Fatalf("expected pre scope %v, got %v", want, pre)
	}
	if _, ok := pre[ReservedPostKey]; ok {
		t.Fatalf("reserved post key must never appear in the pre scope")
	}

	post := record.PostOpts()
	if want := map[string]any{"cleanup": true}; !reflect.DeepEqual(post, want) {
		t.Fatalf("expected post opts %v, got %v", want, post)
	}

	// The full stored scope keeps the reserved key.
	if _, ok := record.Scope()[ReservedPostKey]; !ok {
		t.Fatalf("expected stored scope to retain the reserved post key")
	}
}

func TestRecordPostOptsEmptyWhenAbsent(t *testing.T) {
	b := New()
	_ = b.Scenario(map[string]any{"role": "admin"}, func() {
		_ = b.Test("", func(testing.TB) {})
	})

	record, ok := b.Registry().Lookup("role_admin")
	if !ok {
		t.Fatalf("record not found")
	}
	post := record.PostOpts()
	if post == nil || len(post) != 0 {
		t.Fatalf("expected empty non-nil post opts, got %v", post)
	}
}

func TestRecordAssignsSnapshotIDs(t *testing.T) {
	b := New()
	_ = b.Scenario(map[string]any{"x": 1}, func() {
		_ = b.Test("", func(testing.TB) {})
	})
	_ = b.Scenario(map[string]any{"x": 2}, func() {
		_ = b.Test("", func(testing.TB) {})
	})

	records := b.Registry().Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID() == "" || records[1].ID() == "" {
		t.Fatalf("expected snapshot identifiers to be assigned")
	}
	if records[0].ID() == records[1].ID() {
		t.Fatalf("expected distinct snapshot identifiers")
	}
}

func TestRecordTraceCapturesProvenance(t *testing.T) {
	b := New()
	err := b.Scenario(map[string]any{"role": "viewer", "logged_in": true}, func() {
		_ = b.Scenario(map[string]any{"role": "admin"}, func() {
			_ = b.Test("", func(testing.TB) {})
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, ok := b.Registry().Lookup("logged_in_true_and_role_admin")
	if !ok {
		t.Fatalf("record not found")
	}

	trace := record.Trace()
	if trace.Name != "logged_in_true_and_role_admin" {
		t.Fatalf("unexpected trace name %q", trace.Name)
	}
	if len(trace.Origins) != 2 {
		t.Fatalf("expected 2 origins, got %d", len(trace.Origins))
	}
	if trace.Origins[0].Key != "logged_in" || trace.Origins[1].Key != "role" {
		t.Fatalf("expected origins sorted by key, got %+v", trace.Origins)
	}
	if trace.Origins[0].Depth != 1 || trace.Origins[0].Overridden {
		t.Fatalf("unexpected logged_in origin %+v", trace.Origins[0])
	}
	if trace.Origins[1].Depth != 2 || !trace.Origins[1].Overridden {
		t.Fatalf("expected role override at depth 2, got %+v", trace.Origins[1])
	}

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Name != trace.Name || len(decoded.Origins) != len(trace.Origins) {
		t.Fatalf("round trip mismatch: %+v vs %+v", trace, decoded)
	}
}
