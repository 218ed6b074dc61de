// Package errs defines the sentinel error kinds shared across the object
// store, reference store, index codec, and repository façade so callers can
// branch on error kind with errors.Is instead of matching strings.
package errs

import "errors"

var (
	// ErrInvalidRepository means path does not contain a valid metadata directory.
	ErrInvalidRepository = errors.New("invalid repository")

	// ErrMissing means an object, reference, or file is not present.
	ErrMissing = errors.New("missing")

	// ErrCorrupt means framing, size, hash, or checksum validation failed.
	ErrCorrupt = errors.New("corrupt")

	// ErrMalformedObject means the object parser rejected its input.
	ErrMalformedObject = errors.New("malformed object")

	// ErrCycleDetected means reference resolution looped back on itself.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrTooDeep means a reference chain exceeded the resolution depth cap.
	ErrTooDeep = errors.New("reference chain too deep")

	// ErrConflict means a remote or branch with the given name already exists.
	ErrConflict = errors.New("conflict")

	// ErrPathOutsideWorkTree means a path given to an index operation escapes
	// the work-tree.
	ErrPathOutsideWorkTree = errors.New("path outside work tree")

	// ErrUnknownExtension means a mandatory index extension was not recognized.
	ErrUnknownExtension = errors.New("unknown mandatory index extension")
)
