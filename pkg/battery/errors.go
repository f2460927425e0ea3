package battery

import "errors"

var (
	// ErrNotInitialized is returned when an operation needs a battery
	// instance and none is attached.
	ErrNotInitialized = errors.New("no battery instance")
	// ErrParse is returned when a value cannot be parsed at all.
	ErrParse = errors.New("malformed value")
	// ErrOutOfRange is returned when a value parses but falls outside the
	// permitted range.
	ErrOutOfRange = errors.New("value out of range")
	// ErrUnsupportedProperty is returned when a property selector names
	// nothing this battery reports.
	ErrUnsupportedProperty = errors.New("unsupported property")
)
