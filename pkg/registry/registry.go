package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/goliatone/go-bag"
	"github.com/goliatone/go-bag/pkg/activity"
)

// Registry stores published layers by scope name. It is safe for concurrent
// use.
type Registry struct {
	cfg config

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	scope Scope
	layer *bag.FrozenLayer
	meta  Meta
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Registry{cfg: cfg, entries: map[string]*entry{}}
}

// Publish freezes l and registers it under scope. The registry keeps the only
// handle; callers obtain their own through Acquire or Bag.
func (r *Registry) Publish(ctx context.Context, scope Scope, l *bag.Layer) (Meta, error) {
	if err := scope.validate(); err != nil {
		return Meta{}, err
	}
	if l == nil {
		return Meta{}, ErrNilLayer
	}
	if l.Frozen() {
		return Meta{}, fmt.Errorf("%w: %s", ErrLayerFrozen, l.Name())
	}

	r.mu.Lock()
	if _, ok := r.entries[scope.Name]; ok {
		r.mu.Unlock()
		return Meta{}, fmt.Errorf("%w: %s", ErrAlreadyPublished, scope.Name)
	}
	e := &entry{
		scope: scope.clone(),
		layer: l.Freeze(),
		meta: Meta{
			SnapshotID: r.cfg.newID(),
			Version:    1,
			UpdatedAt:  r.cfg.now(),
		},
	}
	r.entries[scope.Name] = e
	meta := e.meta
	items := itemTypes(e.layer.Layer())
	r.mu.Unlock()

	r.cfg.logger.Debug("layer published",
		slog.String("scope", scope.Name),
		slog.String("snapshot_id", meta.SnapshotID),
		slog.Int("items", len(items)),
	)
	r.emit(ctx, activity.BuildLayerPublishedEvent(r.eventInput(e.scope, meta, items)))
	return meta, nil
}

// Acquire returns a new handle to the layer published under name. The caller
// owns the handle and must Release it.
func (r *Registry) Acquire(name string) (*bag.FrozenLayer, Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, Meta{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e.layer.Share(), e.meta, nil
}

// Lookup returns the scope and metadata of a published layer.
func (r *Registry) Lookup(name string) (Scope, Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Scope{}, Meta{}, false
	}
	return e.scope.clone(), e.meta, true
}

// Mutate applies fn to a writable copy of the layer published under name and
// publishes the result as a new version. expectedVersion guards against lost
// updates; zero skips the check against the caller's version.
//
// fn runs without holding the registry lock and may call back into the
// registry. If the entry changes before fn returns, through another Mutate or a
// Retire and Publish of the same name, the result is discarded and Mutate
// returns ErrVersionMismatch. Holders of earlier handles keep reading the old
// contents.
func (r *Registry) Mutate(ctx context.Context, name string, expectedVersion int64, fn func(*bag.Layer)) (Meta, error) {
	if fn == nil {
		return Meta{}, ErrNilMutator
	}

	checked, base, current, err := r.checkout(name, expectedVersion)
	if err != nil {
		return current, err
	}
	writable, reclaimed := base.Modify()
	fn(writable)

	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return Meta{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if e != checked || e.meta.Version != current.Version {
		latest := e.meta
		r.mu.Unlock()
		return latest, fmt.Errorf("%w: expected %d, got %d", ErrVersionMismatch, current.Version, latest.Version)
	}
	previous := e.layer
	e.layer = writable.Freeze()
	e.meta = Meta{
		SnapshotID: r.cfg.newID(),
		Version:    current.Version + 1,
		UpdatedAt:  r.cfg.now(),
	}
	meta := e.meta
	scope := e.scope
	items := itemTypes(writable)
	r.mu.Unlock()
	previous.Release()

	r.cfg.logger.Debug("layer mutated",
		slog.String("scope", name),
		slog.Int64("version", meta.Version),
		slog.Bool("reclaimed", reclaimed),
	)
	input := r.eventInput(scope, meta, items)
	input.PreviousVersion = current.Version
	input.Reclaimed = reclaimed
	r.emit(ctx, activity.BuildLayerMutatedEvent(input))
	return meta, nil
}

// checkout returns the entry for name with a new handle to its layer.
func (r *Registry) checkout(name string, expectedVersion int64) (*entry, *bag.FrozenLayer, Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, nil, Meta{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if expectedVersion != 0 && expectedVersion != e.meta.Version {
		return nil, nil, e.meta, fmt.Errorf("%w: expected %d, got %d", ErrVersionMismatch, expectedVersion, e.meta.Version)
	}
	return e, e.layer.Share(), e.meta, nil
}

// Retire removes the layer published under name. Handles acquired earlier
// stay readable until their holders release them.
func (r *Registry) Retire(ctx context.Context, name string) error {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.entries, name)
	items := itemTypes(e.layer.Layer())
	e.layer.Release()
	r.mu.Unlock()

	r.cfg.logger.Debug("layer retired", slog.String("scope", name))
	r.emit(ctx, activity.BuildLayerRetiredEvent(r.eventInput(e.scope, e.meta, items)))
	return nil
}

// Names returns the published scope names, strongest first.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sortStrongestFirst(entries)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.scope.Name
	}
	return names
}

// Bag builds a bag over the named layers. Layers are pushed from the lowest
// priority to the highest so the strongest scope wins. The bag owns its
// handles; call Bag.Release when done with it.
func (r *Registry) Bag(names ...string) (*bag.Bag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(names))
	selected := make([]*entry, 0, len(names))
	for _, name := range names {
		if name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, name)
		}
		seen[name] = struct{}{}
		e, ok := r.entries[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		selected = append(selected, e)
	}

	sortStrongestFirst(selected)
	for i := 1; i < len(selected); i++ {
		if selected[i-1].scope.Priority == selected[i].scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, selected[i].scope.Priority)
		}
	}

	b := bag.Base()
	for i := len(selected) - 1; i >= 0; i-- {
		b.PushSharedLayer(selected[i].layer)
	}
	return b, nil
}

// Len returns the number of published layers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) eventInput(scope Scope, meta Meta, items []string) activity.LayerEventInput {
	return activity.LayerEventInput{
		Scope:      scope.activityContext(),
		SnapshotID: meta.SnapshotID,
		Version:    meta.Version,
		Items:      items,
		OccurredAt: meta.UpdatedAt,
	}
}

func (r *Registry) emit(ctx context.Context, event activity.Event) {
	if !r.cfg.emitter.Enabled() {
		return
	}
	if err := r.cfg.emitter.Emit(ctx, event); err != nil {
		r.cfg.logger.Warn("activity emit failed",
			slog.String("verb", event.Verb),
			slog.String("scope", event.ObjectID),
			slog.Any("error", err),
		)
	}
}

func sortStrongestFirst(entries []*entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].scope.Priority == entries[j].scope.Priority {
			return entries[i].scope.Name < entries[j].scope.Name
		}
		return entries[i].scope.Priority > entries[j].scope.Priority
	})
}

func itemTypes(l *bag.Layer) []string {
	descriptors := l.Items()
	if len(descriptors) == 0 {
		return nil
	}
	out := make([]string, len(descriptors))
	for i, item := range descriptors {
		out[i] = item.Type
	}
	return out
}
