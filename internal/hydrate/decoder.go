// Package hydrate decodes loosely typed configuration trees into typed values.
package hydrate

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-bag/layering"
)

// ErrNilInput is returned when there is nothing to decode.
var ErrNilInput = errors.New("hydrate: input is nil")

// DefaultTagName is the struct tag read when no other tag is configured.
const DefaultTagName = "json"

// Context identifies the configuration subtree being decoded.
type Context struct {
	Layer string
	Path  string
}

func (c Context) String() string {
	if c.Layer == "" {
		return c.Path
	}
	return c.Layer + ":" + c.Path
}

// PreHook lets callers normalise the input before decoding. Returning nil
// keeps the current input.
type PreHook func(Context, any) (any, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default mapstructure decoding when provided.
type CustomDecoder[T any] func(Context, any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts configuration trees into T.
type Decoder[T any] struct {
	preHooks    []PreHook
	postHooks   []PostHook[T]
	custom      CustomDecoder[T]
	decodeHooks []mapstructure.DecodeHookFunc
	tagName     string
	weak        bool
	errorUnused bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithWeaklyTypedInput lets "3" decode into an int and similar conversions.
func WithWeaklyTypedInput[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.weak = true
	}
}

// WithErrorUnused fails decoding when the input has keys T does not declare.
func WithErrorUnused[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.errorUnused = true
	}
}

// WithDecodeHook adds a mapstructure hook, run after the defaults.
func WithDecodeHook[T any](hook mapstructure.DecodeHookFunc) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.decodeHooks = append(d.decodeHooks, hook)
		}
	}
}

// WithTagName selects the struct tag that names fields.
func WithTagName[T any](tag string) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if tag != "" {
			d.tagName = tag
		}
	}
}

// WithCustomDecoder replaces the default decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

// NewDecoder builds a Decoder. Durations, comma separated lists and
// encoding.TextUnmarshaler types are decoded from strings by default.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{tagName: DefaultTagName}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts input into T applying configured hooks. The input is
// copied first so hooks never mutate the caller's tree.
func (d *Decoder[T]) Decode(ctx Context, input any) (T, error) {
	var zero T

	if input == nil {
		return zero, fmt.Errorf("%w: %s", ErrNilInput, ctx)
	}

	current := layering.Clone(input)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx, err)
		}
		if next != nil {
			current = next
		}
	}

	var (
		result T
		err    error
	)
	if d.custom != nil {
		result, err = d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for %s failed: %w", ctx, err)
		}
	} else if err := d.decode(current, &result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s: %w", ctx, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx, err)
		}
	}

	return result, nil
}

func (d *Decoder[T]) decode(input any, result *T) error {
	hooks := append([]mapstructure.DecodeHookFunc{
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	}, d.decodeHooks...)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
		ErrorUnused:      d.errorUnused,
		WeaklyTypedInput: d.weak,
		TagName:          d.tagName,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
