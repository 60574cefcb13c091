package source

import "errors"

// Domain errors for the source package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, source.ErrSourceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrSourceNotFound is returned when a source ID does not exist.
	ErrSourceNotFound = errors.New("source: not found")

	// ErrSourceExists is returned when registering a source with a duplicate ID.
	ErrSourceExists = errors.New("source: already exists")

	// ErrInvalidType is returned for unknown or disallowed source types.
	ErrInvalidType = errors.New("source: invalid type")

	// ErrInvalidName is returned when a source name is empty or too long.
	ErrInvalidName = errors.New("source: invalid name")

	// ErrInvalidMixers is returned when an audio mixer mask is out of range
	// or the source type has no audio.
	ErrInvalidMixers = errors.New("source: invalid audio mixers")

	// ErrEngine wraps failures reported by the native engine.
	ErrEngine = errors.New("source: engine failure")
)
