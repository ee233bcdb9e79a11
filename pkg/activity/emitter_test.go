package activity

import (
	"context"
	"testing"
)

func TestEmitterAppliesDefaultChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})

	if !emitter.Enabled() {
		t.Fatalf("expected emitter enabled")
	}
	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbScenarioDeclared,
		ObjectType: "scenario",
		ObjectID:   "logged_in",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != "scenario" {
		t.Fatalf("expected default channel, got %q", capture.Events[0].Channel)
	}
}

func TestEmitterDisabledWithoutHooks(t *testing.T) {
	emitter := NewEmitter(nil, Config{Enabled: true})
	if emitter.Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
	if err := emitter.Emit(context.Background(), Event{Verb: "x", ObjectType: "y", ObjectID: "z"}); err != nil {
		t.Fatalf("expected no-op emit, got %v", err)
	}

	disabled := NewEmitter(Hooks{&CaptureHook{}}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter disabled by config")
	}
}

func TestEmitterDropsNilHooks(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{nil, capture, nil}, Config{Enabled: true, Channel: "decl"})

	if err := emitter.Emit(nil, Event{Verb: VerbTestRegistered, ObjectType: "test", ObjectID: "x_1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != "decl" {
		t.Fatalf("expected configured channel, got %q", capture.Events[0].Channel)
	}
}
