package bag

import (
	"iter"
	"strings"
)

// InterceptorState is the name of the current layer of a base bag.
const InterceptorState = "interceptor_state"

// Bag is a stack of layers: one mutable current layer on top of frozen
// history. Reads walk the current layer first, then the history from the most
// recently pushed layer to the oldest.
//
// A Bag is not safe for concurrent use. Frozen layers in its history may be
// shared with other bags on other goroutines.
type Bag struct {
	current *Layer
	tail    []*FrozenLayer
}

// Base creates a bag with an empty current layer and no history.
func Base() *Bag {
	return &Bag{current: NewLayer(InterceptorState)}
}

// OfLayers creates a base bag and pushes layers in order, so the last layer
// wins.
func OfLayers(layers ...*Layer) *Bag {
	b := Base()
	for _, l := range layers {
		b.PushLayer(l)
	}
	return b
}

// PushLayer freezes l and places it at the top of the history, below the
// current layer. It panics if l is already frozen; push frozen layers with
// PushSharedLayer instead.
func (b *Bag) PushLayer(l *Layer) *Bag {
	b.tail = append(b.tail, l.Freeze())
	return b
}

// PushSharedLayer places an already frozen layer at the top of the history.
// The bag takes its own share; the caller keeps ownership of f.
func (b *Bag) PushSharedLayer(f *FrozenLayer) *Bag {
	b.tail = append(b.tail, f.Share())
	return b
}

// AddLayer freezes the current layer into the history and installs an empty
// current layer called name.
func (b *Bag) AddLayer(name string) *Bag {
	b.tail = append(b.tail, b.CurrentLayer().Freeze())
	b.current = NewLayer(name)
	return b
}

// With derives a bag whose current layer is a new layer called name,
// populated by configure. The current layer of b is frozen and shared by both
// bags; b gets a fresh current layer with the same name and reads exactly as
// it did before.
func (b *Bag) With(name string, configure func(*Layer)) *Bag {
	next := NewLayer(name)
	if configure != nil {
		configure(next)
	}
	top := b.CurrentLayer()
	b.tail = append(b.tail, top.Freeze())
	b.current = NewLayer(top.name)

	tail := make([]*FrozenLayer, len(b.tail))
	for i, f := range b.tail {
		tail[i] = f.Share()
	}
	return &Bag{current: next, tail: tail}
}

// CurrentLayer returns the mutable top layer for direct writes.
func (b *Bag) CurrentLayer() *Layer {
	if b.current == nil {
		b.current = NewLayer(InterceptorState)
	}
	return b.current
}

// Layers yields every layer in read order: current first, then the history
// newest to oldest.
func (b *Bag) Layers() iter.Seq[*Layer] {
	return func(yield func(*Layer) bool) {
		if b == nil {
			return
		}
		if b.current != nil && !yield(b.current) {
			return
		}
		for i := len(b.tail) - 1; i >= 0; i-- {
			if !yield(b.tail[i].shared.layer) {
				return
			}
		}
	}
}

// Len returns the number of layers, current layer included.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.tail) + 1
}

// Release gives up the bag's shares of its history. Reads afterwards only see
// the current layer.
func (b *Bag) Release() {
	if b == nil {
		return
	}
	for _, f := range b.tail {
		f.Release()
	}
	b.tail = nil
}

func (b *Bag) String() string {
	if b == nil {
		return "Bag(nil)"
	}
	var sb strings.Builder
	sb.WriteString("Bag{layers: [")
	first := true
	for l := range b.Layers() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(l.String())
	}
	sb.WriteString("]}")
	return sb.String()
}
