package activity

import (
	"strings"
	"time"
)

// Verbs and object type of layer lifecycle events.
const (
	VerbLayerPublished = "layer.published"
	VerbLayerMutated   = "layer.mutated"
	VerbLayerRetired   = "layer.retired"

	ObjectTypeLayer = "bag.layer"
)

// ScopeContext captures the registry scope a layer was published under.
type ScopeContext struct {
	Name     string
	Label    string
	Priority int
	Metadata map[string]any
}

// LayerEventInput describes the common fields of layer lifecycle events.
type LayerEventInput struct {
	ActorID    string
	TenantID   string
	Channel    string
	Scope      ScopeContext
	SnapshotID string
	Version    int64
	// PreviousVersion is set on mutations.
	PreviousVersion int64
	// Reclaimed reports whether a mutation reused the layer in place.
	Reclaimed  bool
	Items      []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildLayerPublishedEvent constructs the event for a newly published layer.
func BuildLayerPublishedEvent(input LayerEventInput) Event {
	return buildLayerEvent(VerbLayerPublished, input)
}

// BuildLayerMutatedEvent constructs the event for a copy-on-write mutation.
func BuildLayerMutatedEvent(input LayerEventInput) Event {
	event := buildLayerEvent(VerbLayerMutated, input)
	event.Metadata["previous_version"] = input.PreviousVersion
	event.Metadata["reclaimed"] = input.Reclaimed
	return event
}

// BuildLayerRetiredEvent constructs the event for a retired layer.
func BuildLayerRetiredEvent(input LayerEventInput) Event {
	return buildLayerEvent(VerbLayerRetired, input)
}

func buildLayerEvent(verb string, input LayerEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["scope_priority"] = input.Scope.Priority
	metadata["version"] = input.Version
	if input.Scope.Label != "" {
		metadata["scope_label"] = input.Scope.Label
	}
	if len(input.Scope.Metadata) > 0 {
		metadata["scope_metadata"] = cloneMap(input.Scope.Metadata)
	}
	if input.SnapshotID != "" {
		metadata["snapshot_id"] = input.SnapshotID
	}
	if len(input.Items) > 0 {
		metadata["items"] = append([]string(nil), input.Items...)
	}

	objectID := strings.TrimSpace(input.Scope.Name)
	if objectID == "" {
		objectID = strings.TrimSpace(input.SnapshotID)
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeLayer,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
