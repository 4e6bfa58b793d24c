package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " layer.published ",
		ActorID:    " actor ",
		UserID:     " user ",
		TenantID:   " tenant ",
		ObjectType: " bag.layer ",
		ObjectID:   " defaults ",
		Channel:    " bag ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "layer.published" || got.ObjectType != "bag.layer" || got.ObjectID != "defaults" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "bag" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	if err := (Hooks{capture}).Notify(context.Background(), Event{Verb: "layer.published"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if n := len(capture.Events()); n != 0 {
		t.Fatalf("expected no events captured, got %d", n)
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: "layer.mutated", ObjectType: ObjectTypeLayer, ObjectID: "defaults"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if n := len(capture.Events()); n != 1 {
		t.Fatalf("expected event to be captured once, got %d", n)
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := Event{Verb: VerbLayerPublished, ObjectType: ObjectTypeLayer, ObjectID: "defaults"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter without hooks to be disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := capture.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(events))
	}
	if events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel applied, got %q", events[0].Channel)
	}
}

func TestEmitterPreservesExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbLayerRetired,
		ObjectType: ObjectTypeLayer,
		ObjectID:   "defaults",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := capture.Events()
	if events[0].Channel != "custom" {
		t.Fatalf("expected explicit channel preserved, got %q", events[0].Channel)
	}
	if !events[0].OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", events[0].OccurredAt)
	}
}

func TestEmitterAttributesActorFromContext(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	ctx := WithActor(context.Background(), Actor{ID: "svc", TenantID: "acme"})

	err := emitter.Emit(ctx, Event{Verb: VerbLayerPublished, ObjectType: ObjectTypeLayer, ObjectID: "defaults", TenantID: "explicit"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events()[0]
	if got.ActorID != "svc" {
		t.Fatalf("expected actor from context, got %q", got.ActorID)
	}
	if got.TenantID != "explicit" {
		t.Fatalf("expected explicit tenant preserved, got %q", got.TenantID)
	}

	if _, ok := ActorFrom(context.Background()); ok {
		t.Fatalf("expected no actor on a bare context")
	}
}

func TestHooksEnabledIgnoresNilHooks(t *testing.T) {
	if (Hooks{nil, nil}).Enabled() {
		t.Fatalf("expected hooks made of nil entries to be disabled")
	}
	if !(Hooks{nil, &CaptureHook{}}).Enabled() {
		t.Fatalf("expected a live hook to enable the set")
	}
}

func TestHooksNotifyNamesFailingHook(t *testing.T) {
	boom := errors.New("boom")
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return nil }),
		HookFunc(func(context.Context, Event) error { return boom }),
	}
	err := hooks.Notify(context.Background(), Event{Verb: VerbLayerRetired, ObjectType: ObjectTypeLayer, ObjectID: "defaults"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if err.Error() != "activity: hook 1: boom" {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}
