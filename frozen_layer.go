package bag

import (
	"iter"
	"sync/atomic"
)

// FrozenLayer is an immutable layer shared between bags. Each handle counts as
// one owner: Share hands out another owner, Release gives one up. Frozen
// layers are safe for concurrent readers.
type FrozenLayer struct {
	shared   *sharedLayer
	released atomic.Bool
}

type sharedLayer struct {
	layer  *Layer
	owners atomic.Int64
}

func newFrozenLayer(l *Layer) *FrozenLayer {
	shared := &sharedLayer{layer: l}
	shared.owners.Store(1)
	return &FrozenLayer{shared: shared}
}

// Share returns a new owning handle to the same layer. The contents are not
// copied.
func (f *FrozenLayer) Share() *FrozenLayer {
	f.mustBeLive()
	f.shared.owners.Add(1)
	return &FrozenLayer{shared: f.shared}
}

// Release gives up this handle's ownership. Releasing twice is a no-op.
func (f *FrozenLayer) Release() {
	if f == nil || f.shared == nil {
		return
	}
	if f.released.CompareAndSwap(false, true) {
		f.shared.owners.Add(-1)
	}
}

// Owners returns the number of live handles to the layer.
func (f *FrozenLayer) Owners() int {
	if f == nil || f.shared == nil {
		return 0
	}
	return int(f.shared.owners.Load())
}

// TryReclaim returns the underlying layer, mutable again, when this handle is
// its only owner. The handle is spent on success. When other owners exist it
// returns false and leaves the handle untouched; the caller must clone to get
// a writable layer.
func (f *FrozenLayer) TryReclaim() (*Layer, bool) {
	if f == nil || f.shared == nil || f.released.Load() {
		return nil, false
	}
	if !f.shared.owners.CompareAndSwap(1, 0) {
		return nil, false
	}
	f.released.Store(true)
	l := f.shared.layer
	l.frozen.Store(false)
	return l, true
}

// Modify returns a writable layer with the contents of f, reclaiming it in
// place when possible and cloning it otherwise. The handle is spent either way.
// The boolean reports whether the layer was reclaimed.
func (f *FrozenLayer) Modify() (*Layer, bool) {
	if l, ok := f.TryReclaim(); ok {
		return l, true
	}
	f.mustBeLive()
	l := f.shared.layer.Clone()
	f.Release()
	return l, false
}

// Name returns the name of the frozen layer.
func (f *FrozenLayer) Name() string {
	return f.Layer().Name()
}

// Empty reports whether the frozen layer holds no cells.
func (f *FrozenLayer) Empty() bool {
	return f.Layer().Empty()
}

// Layer exposes the read-only layer. Writing to it panics.
func (f *FrozenLayer) Layer() *Layer {
	if f == nil || f.shared == nil {
		return nil
	}
	f.mustBeLive()
	return f.shared.layer
}

// Layers yields the frozen layer so it can be read like a bag.
func (f *FrozenLayer) Layers() iter.Seq[*Layer] {
	return f.Layer().Layers()
}

func (f *FrozenLayer) String() string {
	if f == nil || f.shared == nil {
		return "FrozenLayer(nil)"
	}
	return "Frozen" + f.shared.layer.String()
}

func (f *FrozenLayer) mustBeLive() {
	if f == nil || f.shared == nil {
		panic("bag: nil frozen layer")
	}
	if f.released.Load() {
		panic("bag: use of released frozen layer " + f.shared.layer.name)
	}
}
