package bag

import (
	"iter"
	"reflect"
	"slices"

	"github.com/goliatone/go-bag/layering"
)

// Replace, Append and Merge are the policy markers returned by a type's
// Storer method. A type picks exactly one by declaring
//
//	func (Region) Storer() bag.Replace { return bag.Replace{} }
//
// Since a type can only have one Storer method the policy is global to the
// type, and using the accessors of another policy does not compile.
type (
	Replace struct{}
	Append  struct{}
	Merge   struct{}
)

// ReplaceStorable types keep only the newest contribution.
type ReplaceStorable interface {
	Storer() Replace
}

// AppendStorable types accumulate contributions across layers, newest first.
type AppendStorable interface {
	Storer() Append
}

// MergeStorable types store partial values per layer that are deep merged on
// read, newer fields winning over older ones.
type MergeStorable interface {
	Storer() Merge
}

// Store is a storage policy. S is the representation kept in each layer and R
// what readers receive once the per-layer values (newest first, absent layers
// skipped) are merged. Policies are zero-size types: the reflect.Type of the
// policy keys the cells of a layer, so ReplaceStore[T] and AppendStore[T]
// never collide.
type Store[S, R any] interface {
	Merge(values iter.Seq[Value[S]]) R
}

// StoredCloner is implemented by policies whose stored representation needs
// more than Cloner[S] when a layer is cloned.
type StoredCloner[S any] interface {
	CloneStored(S) S
}

// SnapshotExporter is implemented by policies that can expose their merged
// value in Snapshot.
type SnapshotExporter[R any] interface {
	SnapshotName() string
	SnapshotValue(R) (any, bool)
}

// Exported types appear in Snapshot under the returned name. ExportName is
// called on the zero value.
type Exported interface {
	ExportName() string
}

// ReplaceStore backs ReplaceStorable types.
type ReplaceStore[T any] struct{}

// Merge returns the nearest entry. An explicit unset is returned as is so the
// caller sees "no value" instead of an older contribution.
func (ReplaceStore[T]) Merge(values iter.Seq[Value[T]]) Value[T] {
	for v := range values {
		if !v.IsAbsent() {
			return v
		}
	}
	return Value[T]{}
}

func (ReplaceStore[T]) PolicyName() string { return "replace" }

func (ReplaceStore[T]) SnapshotName() string { return exportName[T]() }

func (ReplaceStore[T]) SnapshotValue(v Value[T]) (any, bool) {
	item, ok := v.Get()
	if !ok {
		return nil, false
	}
	return item, true
}

// AppendStore backs AppendStorable types.
type AppendStore[T any] struct{}

// Merge yields every item newest first. Within a layer the last appended item
// comes first. The first explicit unset ends the sequence.
func (AppendStore[T]) Merge(values iter.Seq[Value[[]T]]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range values {
			if v.IsUnset() {
				return
			}
			items, _ := v.Get()
			for i := len(items) - 1; i >= 0; i-- {
				if !yield(items[i]) {
					return
				}
			}
		}
	}
}

func (AppendStore[T]) CloneStored(items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}

func (AppendStore[T]) PolicyName() string { return "append" }

func (AppendStore[T]) SnapshotName() string { return exportName[T]() }

func (AppendStore[T]) SnapshotValue(items iter.Seq[T]) (any, bool) {
	out := slices.Collect(items)
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// MergeStore backs MergeStorable types.
type MergeStore[T any] struct{}

// Merge deep merges every contribution down to the first explicit unset.
func (MergeStore[T]) Merge(values iter.Seq[Value[T]]) Value[T] {
	var (
		parts []T
		first Value[T]
	)
	for v := range values {
		if v.IsUnset() {
			if len(parts) == 0 {
				first = v
			}
			break
		}
		item, _ := v.Get()
		parts = append(parts, item)
	}
	if len(parts) == 0 {
		return first
	}
	return Set(layering.MergeLayers(parts...))
}

func (MergeStore[T]) PolicyName() string { return "merge" }

func (MergeStore[T]) SnapshotName() string { return exportName[T]() }

func (MergeStore[T]) SnapshotValue(v Value[T]) (any, bool) {
	item, ok := v.Get()
	if !ok {
		return nil, false
	}
	return item, true
}

func exportName[T any]() string {
	var zero T
	if e, ok := any(zero).(Exported); ok {
		return e.ExportName()
	}
	return ""
}

func policyName[P any]() string {
	var p P
	if named, ok := any(p).(interface{ PolicyName() string }); ok {
		return named.PolicyName()
	}
	return reflect.TypeFor[P]().String()
}
