package signing

import "errors"

var (
	// ErrInvalidInput marks requests with missing or unusable parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedInput marks payloads that cannot be parsed as a PDF.
	ErrMalformedInput = errors.New("malformed pdf")
	// ErrRendering marks failures while drawing the signature marks.
	ErrRendering = errors.New("rendering failed")
)
