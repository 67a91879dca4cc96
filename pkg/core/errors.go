package core

import "errors"

// Common errors.
var (
	ErrMalformedDocument = errors.New("export document is malformed")
	ErrUnknownField      = errors.New("could not find a frontmatter getter")
	ErrInvalidConfig     = errors.New("invalid configuration")
)
