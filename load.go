package bag

import (
	"fmt"
	"iter"
)

// Source is anything that yields layers in read order, newest first. Bags,
// layers and frozen layers are all sources, so a single layer can be read on
// its own with the same accessors.
type Source interface {
	Layers() iter.Seq[*Layer]
}

// LoadWith merges the per-layer values of policy P found in src. Layers that
// never touched the type are skipped before P sees the sequence.
func LoadWith[P Store[S, R], S, R any](src Source) R {
	var p P
	return p.Merge(values[P, S, R](src))
}

func values[P Store[S, R], S, R any](src Source) iter.Seq[Value[S]] {
	return func(yield func(Value[S]) bool) {
		if src == nil {
			return
		}
		for l := range src.Layers() {
			if l == nil {
				continue
			}
			v, ok := lookup[P, S, R](l.props)
			if !ok {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Load returns the effective value of T: the nearest contribution, or false
// when there is none or the nearest entry is an explicit unset.
func Load[T ReplaceStorable](src Source) (T, bool) {
	return LoadValue[T](src).Get()
}

// LoadValue returns the nearest slot for T so callers can tell an explicit
// unset from a type nobody stored.
func LoadValue[T ReplaceStorable](src Source) Value[T] {
	return LoadWith[ReplaceStore[T], T, Value[T]](src)
}

// LoadAll yields every contribution of T, newest first, up to the first
// layer that cleared it. The sequence is lazy and reads src when ranged over.
func LoadAll[T AppendStorable](src Source) iter.Seq[T] {
	return LoadWith[AppendStore[T], []T, iter.Seq[T]](src)
}

// LoadMerged returns the deep merge of the partial values of T, newest fields
// first, down to the first explicit unset.
func LoadMerged[T MergeStorable](src Source) (T, bool) {
	return LoadWith[MergeStore[T], T, Value[T]](src).Get()
}

// Require is Load for callers that treat a missing value as an error. The
// error wraps ErrNotFound or ErrExplicitlyUnset.
func Require[T ReplaceStorable](src Source) (T, error) {
	v := LoadValue[T](src)
	if item, ok := v.Get(); ok {
		return item, nil
	}
	var zero T
	if v.IsUnset() {
		return zero, fmt.Errorf("%w: %s (%s)", ErrExplicitlyUnset, typeName[T](), v.Reason())
	}
	return zero, fmt.Errorf("%w: %s", ErrNotFound, typeName[T]())
}
