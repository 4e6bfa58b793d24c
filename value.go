package bag

import (
	"fmt"

	"github.com/goliatone/go-bag/layering"
)

type valueState uint8

const (
	stateAbsent valueState = iota
	stateSet
	stateUnset
)

// Value is the per-layer slot for one stored type. A layer either carries a
// concrete contribution (Set) or an instruction to stop inheriting from older
// layers (ExplicitlyUnset). The zero Value is absent: the layer never touched
// the type.
type Value[T any] struct {
	item   T
	state  valueState
	reason string
}

// Set wraps item as a concrete contribution.
func Set[T any](item T) Value[T] {
	return Value[T]{item: item, state: stateSet}
}

// ExplicitlyUnset builds a marker that shadows older layers. reason is kept for
// diagnostics only.
func ExplicitlyUnset[T any](reason string) Value[T] {
	return Value[T]{state: stateUnset, reason: reason}
}

// Get returns the contribution and whether one is present.
func (v Value[T]) Get() (T, bool) {
	if v.state != stateSet {
		var zero T
		return zero, false
	}
	return v.item, true
}

// IsSet reports whether v carries a contribution.
func (v Value[T]) IsSet() bool { return v.state == stateSet }

// IsUnset reports whether v is an explicit unset marker.
func (v Value[T]) IsUnset() bool { return v.state == stateUnset }

// IsAbsent reports whether v was never written.
func (v Value[T]) IsAbsent() bool { return v.state == stateAbsent }

// Reason returns the diagnostic recorded with an explicit unset.
func (v Value[T]) Reason() string { return v.reason }

// State names the slot state: "set", "unset" or "absent".
func (v Value[T]) State() string {
	switch v.state {
	case stateSet:
		return "set"
	case stateUnset:
		return "unset"
	default:
		return "absent"
	}
}

func (v Value[T]) String() string {
	switch v.state {
	case stateSet:
		return fmt.Sprintf("Set(%v)", v.item)
	case stateUnset:
		return fmt.Sprintf("ExplicitlyUnset(%s)", v.reason)
	default:
		return "Absent"
	}
}

// Cloner lets a stored type control how it is copied when a layer is cloned.
// Types without a Clone method are deep copied with layering.Clone, so maps,
// slices and pointers are never shared between a layer and its clone.
type Cloner[T any] interface {
	Clone() T
}

func cloneItem[T any](item T) T {
	if c, ok := any(item).(Cloner[T]); ok {
		return c.Clone()
	}
	return layering.Clone(item)
}
