// Package layerfile builds bag layers from YAML and JSON documents.
package layerfile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-bag"
	"github.com/goliatone/go-bag/internal/hydrate"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format identifies a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DefaultDelim separates the segments of a binding path.
const DefaultDelim = "."

// Option configures a Loader.
type Option func(*Loader)

// WithDelim changes the path delimiter.
func WithDelim(delim string) Option {
	return func(l *Loader) {
		if delim != "" {
			l.delim = delim
		}
	}
}

// WithTagName selects the struct tag used when decoding structs. Defaults to
// json.
func WithTagName(tag string) Option {
	return func(l *Loader) {
		if tag != "" {
			l.settings.tagName = tag
		}
	}
}

// WithWeaklyTypedInput allows lenient conversions such as "3" to 3.
func WithWeaklyTypedInput() Option {
	return func(l *Loader) {
		l.settings.weak = true
	}
}

// WithErrorUnused fails when a bound struct path carries unknown keys.
func WithErrorUnused() Option {
	return func(l *Loader) {
		l.settings.errorUnused = true
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader turns documents into layers through a fixed set of bindings. A
// Loader is safe for concurrent use once configured.
type Loader struct {
	bindings []Binding
	delim    string
	settings decodeSettings
	logger   *slog.Logger
}

// New builds a Loader for bindings. Two bindings on the same path are
// rejected with ErrDuplicatePath.
func New(bindings []Binding, opts ...Option) (*Loader, error) {
	l := &Loader{
		delim:    DefaultDelim,
		settings: decodeSettings{tagName: hydrate.DefaultTagName},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	seen := make(map[string]struct{}, len(bindings))
	for _, b := range bindings {
		if b == nil {
			continue
		}
		if _, ok := seen[b.Path()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, b.Path())
		}
		seen[b.Path()] = struct{}{}
		l.bindings = append(l.bindings, b)
	}
	return l, nil
}

// Load parses data and returns a fresh, unfrozen layer called name holding
// every bound path found in the document. Empty data yields an empty layer.
func (l *Loader) Load(name string, data []byte, format Format) (*bag.Layer, error) {
	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}
	k := koanf.New(l.delim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	layer := bag.NewLayer(name)
	for _, b := range l.bindings {
		if err := b.apply(layer, k, l.settings); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailed, b.Path(), err)
		}
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "layer loaded",
		slog.String("layer", name),
		slog.String("format", string(format)),
		slog.Int("items", layer.Len()),
	)
	return layer, nil
}

// LoadFile reads path and loads it with the format implied by its
// extension. The layer is named after the file.
func (l *Loader) LoadFile(path string) (*bag.Layer, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return l.Load(filepath.Base(path), data, format)
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func parserFor(format Format) (koanf.Parser, error) {
	switch format {
	case FormatYAML:
		return yaml.Parser(), nil
	case FormatJSON:
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
