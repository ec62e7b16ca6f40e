package batch

import "errors"

var (
	// ErrInputNotFound is fatal: the input path does not exist or cannot be stat'ed.
	ErrInputNotFound = errors.New("input not found")
	// ErrNoInputs means discovery matched nothing. The run is reported, not treated as success.
	ErrNoInputs = errors.New("no matching input files")
	// ErrSkipped marks files never dispatched because the run was cancelled.
	ErrSkipped = errors.New("skipped")
)
