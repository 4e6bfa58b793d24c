package layerfile

import (
	"github.com/goliatone/go-bag"
	"github.com/goliatone/go-bag/internal/hydrate"
	"github.com/knadh/koanf/v2"
)

// Binding maps one configuration path onto a storable type.
//
// A present path decodes into the type and is stored with the type's policy.
// An explicit null records an unset (or a clear for Append types), so a file
// can hide values contributed by older layers. A missing path leaves the type
// untouched.
type Binding interface {
	Path() string
	apply(l *bag.Layer, k *koanf.Koanf, s decodeSettings) error
}

type decodeSettings struct {
	weak        bool
	errorUnused bool
	tagName     string
}

func newDecoder[T any](s decodeSettings) *hydrate.Decoder[T] {
	opts := []hydrate.DecoderOption[T]{hydrate.WithTagName[T](s.tagName)}
	if s.weak {
		opts = append(opts, hydrate.WithWeaklyTypedInput[T]())
	}
	if s.errorUnused {
		opts = append(opts, hydrate.WithErrorUnused[T]())
	}
	return hydrate.NewDecoder(opts...)
}

type replaceBinding[T bag.ReplaceStorable] struct {
	path string
}

// BindReplace binds path to a Replace type.
func BindReplace[T bag.ReplaceStorable](path string) Binding {
	return replaceBinding[T]{path: path}
}

func (b replaceBinding[T]) Path() string { return b.path }

func (b replaceBinding[T]) apply(l *bag.Layer, k *koanf.Koanf, s decodeSettings) error {
	if !k.Exists(b.path) {
		return nil
	}
	raw := k.Get(b.path)
	if raw == nil {
		bag.Unset[T](l)
		return nil
	}
	item, err := newDecoder[T](s).Decode(hydrate.Context{Layer: l.Name(), Path: b.path}, raw)
	if err != nil {
		return err
	}
	bag.StorePut(l, item)
	return nil
}

type appendBinding[T bag.AppendStorable] struct {
	path string
}

// BindAppend binds path to an Append type. A list appends every element in
// file order; any other value appends a single item.
func BindAppend[T bag.AppendStorable](path string) Binding {
	return appendBinding[T]{path: path}
}

func (b appendBinding[T]) Path() string { return b.path }

func (b appendBinding[T]) apply(l *bag.Layer, k *koanf.Koanf, s decodeSettings) error {
	if !k.Exists(b.path) {
		return nil
	}
	raw := k.Get(b.path)
	if raw == nil {
		bag.Clear[T](l)
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}
	decoder := newDecoder[T](s)
	ctx := hydrate.Context{Layer: l.Name(), Path: b.path}
	for _, value := range items {
		item, err := decoder.Decode(ctx, value)
		if err != nil {
			return err
		}
		bag.StoreAppend(l, item)
	}
	return nil
}

type mergeBinding[T bag.MergeStorable] struct {
	path string
}

// BindMerge binds path to a Merge type; the decoded value is the layer's
// partial contribution.
func BindMerge[T bag.MergeStorable](path string) Binding {
	return mergeBinding[T]{path: path}
}

func (b mergeBinding[T]) Path() string { return b.path }

func (b mergeBinding[T]) apply(l *bag.Layer, k *koanf.Koanf, s decodeSettings) error {
	if !k.Exists(b.path) {
		return nil
	}
	raw := k.Get(b.path)
	if raw == nil {
		bag.UnsetMerge[T](l)
		return nil
	}
	item, err := newDecoder[T](s).Decode(hydrate.Context{Layer: l.Name(), Path: b.path}, raw)
	if err != nil {
		return err
	}
	bag.StoreMerge(l, item)
	return nil
}
