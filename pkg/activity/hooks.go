// Package activity reports the lifecycle of shared bag layers (published,
// mutated, retired) to pluggable hooks.
package activity

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Event is one layer lifecycle occurrence. Identifiers are plain strings so
// hooks do not depend on a particular id type.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Valid reports whether the event names a verb and the object it happened to.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// ActivityHook receives normalized events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn. A nil HookFunc ignores the event.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks delivers each event to every hook in order.
type Hooks []ActivityHook

// Enabled reports whether at least one hook is set.
func (h Hooks) Enabled() bool {
	return len(h.live()) > 0
}

// Notify normalizes event and hands it to every hook. Invalid events are
// dropped. A failing hook does not stop the others; their errors are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = NormalizeEvent(event)
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for i, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("activity: hook %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// live returns a copy of h without nil hooks, or nil when none are left.
func (h Hooks) live() Hooks {
	out := slices.DeleteFunc(slices.Clone(h), func(hook ActivityHook) bool {
		return hook == nil
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeEvent trims identifiers, copies metadata and stamps events that
// carry no time.
func NormalizeEvent(event Event) Event {
	for _, field := range []*string{
		&event.Verb,
		&event.ActorID,
		&event.UserID,
		&event.TenantID,
		&event.ObjectType,
		&event.ObjectID,
		&event.Channel,
	} {
		*field = strings.TrimSpace(*field)
	}
	event.Metadata = cloneMap(event.Metadata)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
