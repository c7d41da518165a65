package ingest

import "errors"

// Per-file error taxonomy. Failures are isolated per file; one bad file in
// a batch never aborts its siblings.
var (
	// ErrUnsupportedFormat: unrecognized extension, fatal, no retry
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMalformedInput: a structured decoder could not parse the declared format
	ErrMalformedInput = errors.New("malformed input")

	// ErrPersistence: the canonical store rejected a write
	ErrPersistence = errors.New("persistence failure")
)
