package bag

import "errors"

var (
	// ErrNotFound is returned by Require when no layer stored the type.
	ErrNotFound = errors.New("bag: value not found")
	// ErrExplicitlyUnset is returned by Require when the nearest layer
	// unset the type.
	ErrExplicitlyUnset = errors.New("bag: value explicitly unset")
)
