package format

import "errors"

// Geometry resolution errors. All of them are configuration mistakes and abort a run
// before any file is touched.
var (
	ErrUnknownPreset    = errors.New("unknown preset")
	ErrMissingParameter = errors.New("missing geometry parameter")
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrUnknownFormat    = errors.New("unknown pixel format")
)
