package bag

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
	"sync/atomic"
)

// Layer is a named, type-indexed set of contributions. A layer is written by a
// single producer and becomes read-only once frozen.
type Layer struct {
	name   string
	props  cells
	frozen atomic.Bool
}

// NewLayer creates an empty layer. The name is only used for diagnostics.
func NewLayer(name string) *Layer {
	return &Layer{name: name}
}

// Name returns the diagnostic name of the layer.
func (l *Layer) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Empty reports whether the layer holds no cells.
func (l *Layer) Empty() bool {
	return l.Len() == 0
}

// Len returns the number of stored types, explicit unsets included.
func (l *Layer) Len() int {
	if l == nil {
		return 0
	}
	return len(l.props)
}

// Frozen reports whether the layer has been frozen and not reclaimed.
func (l *Layer) Frozen() bool {
	return l != nil && l.frozen.Load()
}

// Freeze makes the layer immutable and wraps it for shared ownership. The
// returned handle is the only owner. Writing through l afterwards panics.
func (l *Layer) Freeze() *FrozenLayer {
	if l == nil {
		l = NewLayer("")
	}
	if !l.frozen.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("bag: layer %q is already frozen", l.name))
	}
	return newFrozenLayer(l)
}

// Clone returns a mutable copy of the layer. Stored values are copied through
// Cloner when they implement it and deep copied otherwise.
func (l *Layer) Clone() *Layer {
	if l == nil {
		return nil
	}
	return &Layer{name: l.name, props: l.props.clone()}
}

// Layers yields the layer itself so a single layer can be read like a bag.
func (l *Layer) Layers() iter.Seq[*Layer] {
	return func(yield func(*Layer) bool) {
		if l != nil {
			yield(l)
		}
	}
}

// Items describes the stored cells sorted by type.
func (l *Layer) Items() []ItemDescriptor {
	if l == nil || len(l.props) == 0 {
		return nil
	}
	items := make([]ItemDescriptor, 0, len(l.props))
	for _, key := range l.props.keys() {
		items = append(items, l.props[key].describe())
	}
	return items
}

func (l *Layer) String() string {
	if l == nil {
		return "Layer(nil)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Layer{name: %q, items: [", l.name)
	for i, item := range l.Items() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.String())
	}
	b.WriteString("]}")
	return b.String()
}

func (l *Layer) writable() cells {
	if l == nil {
		panic("bag: write to nil layer")
	}
	if l.frozen.Load() {
		panic(fmt.Sprintf("bag: layer %q is frozen", l.name))
	}
	if l.props == nil {
		l.props = make(cells)
	}
	return l.props
}

// StorePut stores item, overriding older contributions of T.
func StorePut[T ReplaceStorable](l *Layer, item T) *Layer {
	return PutValue[ReplaceStore[T], T, Value[T]](l, Set(item))
}

// StoreOrUnset stores item when ok is true and marks T explicitly unset
// otherwise.
func StoreOrUnset[T ReplaceStorable](l *Layer, item T, ok bool) *Layer {
	if !ok {
		return Unset[T](l)
	}
	return StorePut(l, item)
}

// Unset hides every older contribution of T.
func Unset[T ReplaceStorable](l *Layer) *Layer {
	return PutValue[ReplaceStore[T], T, Value[T]](l, ExplicitlyUnset[T](typeName[T]()))
}

// StoreAppend adds item to the contributions of T in this layer. An explicit
// clear made earlier in the same layer is replaced by a fresh list.
func StoreAppend[T AppendStorable](l *Layer, item T) *Layer {
	return UpdateValue[AppendStore[T], []T, iter.Seq[T]](l, func(v *Value[[]T]) {
		items, ok := v.Get()
		if !ok {
			*v = Set([]T{item})
			return
		}
		*v = Set(append(items, item))
	})
}

// Clear drops the items of T appended to this layer and hides those of older
// layers. Newer layers still contribute.
func Clear[T AppendStorable](l *Layer) *Layer {
	return PutValue[AppendStore[T], []T, iter.Seq[T]](l, ExplicitlyUnset[[]T](typeName[T]()))
}

// StoreMerge merges partial over what this layer already holds for T.
func StoreMerge[T MergeStorable](l *Layer, partial T) *Layer {
	return UpdateValue[MergeStore[T], T, Value[T]](l, func(v *Value[T]) {
		current, ok := v.Get()
		if !ok {
			*v = Set(partial)
			return
		}
		*v = Set(MergeStore[T]{}.Merge(seqOf(Set(partial), Set(current))).item)
	})
}

// UnsetMerge stops T from inheriting the partial values of older layers.
func UnsetMerge[T MergeStorable](l *Layer) *Layer {
	return PutValue[MergeStore[T], T, Value[T]](l, ExplicitlyUnset[T](typeName[T]()))
}

// PutValue overwrites the slot of policy P. It is the write primitive custom
// policies build on.
func PutValue[P Store[S, R], S, R any](l *Layer, v Value[S]) *Layer {
	props := l.writable()
	props[keyOf[P]()] = &typedCell[P, S, R]{value: v}
	return l
}

// UpdateValue hands fn the slot of policy P for in place accumulation. A slot
// that does not exist yet starts as Set of the zero S.
func UpdateValue[P Store[S, R], S, R any](l *Layer, fn func(*Value[S])) *Layer {
	props := l.writable()
	fn(slot[P, S, R](props))
	return l
}

// CellValue returns the raw slot of policy P in this layer only.
func CellValue[P Store[S, R], S, R any](l *Layer) Value[S] {
	if l == nil {
		return Value[S]{}
	}
	v, _ := lookup[P, S, R](l.props)
	return v
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

func seqOf[T any](values ...Value[T]) iter.Seq[Value[T]] {
	return func(yield func(Value[T]) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}
}
