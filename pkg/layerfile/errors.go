package layerfile

import "errors"

var (
	// ErrEmptyPath is returned by LoadFile for an empty path.
	ErrEmptyPath = errors.New("layerfile: path is empty")
	// ErrUnsupportedFormat is returned for formats other than YAML and JSON.
	ErrUnsupportedFormat = errors.New("layerfile: unsupported format")
	// ErrLoadFailed wraps file read errors.
	ErrLoadFailed = errors.New("layerfile: load failed")
	// ErrParseFailed wraps parser errors.
	ErrParseFailed = errors.New("layerfile: parse failed")
	// ErrDecodeFailed wraps errors decoding a bound path into its type.
	ErrDecodeFailed = errors.New("layerfile: decode failed")
	// ErrDuplicatePath is returned when two bindings read the same path.
	ErrDuplicatePath = errors.New("layerfile: path bound twice")
)
