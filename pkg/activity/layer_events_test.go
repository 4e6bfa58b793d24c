package activity

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildLayerPublishedEvent(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	event := BuildLayerPublishedEvent(LayerEventInput{
		ActorID:    " svc ",
		Scope:      ScopeContext{Name: "client", Label: "Client defaults", Priority: 10, Metadata: map[string]any{"team": "sdk"}},
		SnapshotID: "snap-1",
		Version:    1,
		Items:      []string{"main.Region", "main.Tag"},
		OccurredAt: at,
	})

	if event.Verb != VerbLayerPublished || event.ObjectType != ObjectTypeLayer || event.ObjectID != "client" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.ActorID != "svc" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	want := map[string]any{
		"scope_priority": 10,
		"scope_label":    "Client defaults",
		"scope_metadata": map[string]any{"team": "sdk"},
		"snapshot_id":    "snap-1",
		"version":        int64(1),
		"items":          []string{"main.Region", "main.Tag"},
	}
	if !reflect.DeepEqual(want, event.Metadata) {
		t.Fatalf("metadata mismatch:\nwant: %#v\n got: %#v", want, event.Metadata)
	}
	if !event.OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved")
	}
}

func TestBuildLayerMutatedEvent(t *testing.T) {
	event := BuildLayerMutatedEvent(LayerEventInput{
		Scope:           ScopeContext{Name: "client"},
		SnapshotID:      "snap-2",
		Version:         3,
		PreviousVersion: 2,
		Reclaimed:       true,
	})

	if event.Verb != VerbLayerMutated {
		t.Fatalf("unexpected verb %q", event.Verb)
	}
	if event.Metadata["previous_version"] != int64(2) || event.Metadata["reclaimed"] != true {
		t.Fatalf("unexpected mutation metadata: %+v", event.Metadata)
	}
}

func TestBuildLayerRetiredEventFallsBackToSnapshotID(t *testing.T) {
	event := BuildLayerRetiredEvent(LayerEventInput{SnapshotID: "snap-9"})
	if event.Verb != VerbLayerRetired || event.ObjectID != "snap-9" {
		t.Fatalf("unexpected retired event: %+v", event)
	}
}
