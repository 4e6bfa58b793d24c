package registry

import (
	"maps"
	"strings"
	"time"

	"github.com/goliatone/go-bag/pkg/activity"
)

// Recommended priorities for common layering patterns. Higher numbers win.
const (
	PrioritySystem = 100
	PriorityTenant = 200
	PriorityOrg    = 300
	PriorityTeam   = 400
	PriorityUser   = 500
)

// Scope names a published layer and its precedence.
type Scope struct {
	Name     string
	Label    string
	Priority int
	Metadata map[string]any
}

// ScopeOption configures optional Scope fields.
type ScopeOption func(*Scope)

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(s *Scope) {
		s.Label = label
	}
}

// WithScopeMetadata attaches metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(s *Scope) {
		if len(metadata) == 0 {
			return
		}
		s.Metadata = maps.Clone(metadata)
	}
}

// NewScope builds a Scope. Validation happens when the scope is published.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	scope := Scope{Name: name, Priority: priority}
	for _, opt := range opts {
		if opt != nil {
			opt(&scope)
		}
	}
	return scope
}

func (s Scope) clone() Scope {
	out := s
	if len(s.Metadata) > 0 {
		out.Metadata = maps.Clone(s.Metadata)
	} else {
		out.Metadata = nil
	}
	return out
}

func (s Scope) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrScopeNameRequired
	}
	return nil
}

func (s Scope) activityContext() activity.ScopeContext {
	return activity.ScopeContext{
		Name:     s.Name,
		Label:    s.Label,
		Priority: s.Priority,
		Metadata: s.Metadata,
	}
}

// Meta is registry-owned metadata for audit and optimistic concurrency.
type Meta struct {
	SnapshotID string    `json:"snapshot_id,omitempty"`
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}
