package registry

import "errors"

var (
	// ErrNotFound indicates no layer is published under the scope name.
	ErrNotFound = errors.New("registry: scope not found")
	// ErrAlreadyPublished indicates Publish was called for a name that is
	// already registered. Use Mutate to change it.
	ErrAlreadyPublished = errors.New("registry: scope already published")
	// ErrNilLayer indicates Publish received no layer.
	ErrNilLayer = errors.New("registry: layer is required")
	// ErrLayerFrozen indicates Publish received a layer that is already frozen.
	ErrLayerFrozen = errors.New("registry: layer is already frozen")
	// ErrNilMutator indicates Mutate received no mutation function.
	ErrNilMutator = errors.New("registry: mutator is required")
	// ErrVersionMismatch indicates Mutate was called with a stale version.
	ErrVersionMismatch = errors.New("registry: version mismatch")
	// ErrScopeNameRequired indicates a missing scope name.
	ErrScopeNameRequired = errors.New("registry: scope name must be provided")
	// ErrDuplicateScopeName indicates Bag received the same name twice.
	ErrDuplicateScopeName = errors.New("registry: scope names must be unique")
	// ErrPriorityOrder indicates Bag received scopes sharing a priority.
	ErrPriorityOrder = errors.New("registry: scope priorities must be strictly ordered")
)
