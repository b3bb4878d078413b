package domain

import "errors"

// Errors separating caller mistakes from provider failures. Callers match
// with errors.Is; provider clients wrap these with request detail.
var (
	// ErrInvalidInput indicates a precondition violation, such as empty
	// text passed to the embedder. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProvider indicates a terminal failure of a remote provider after
	// any applicable retries were exhausted.
	ErrProvider = errors.New("provider error")

	// ErrEmptyContext indicates generation was attempted with a blank
	// context window. Rejected before any network call.
	ErrEmptyContext = errors.New("empty context")

	// ErrNoText indicates no usable report text was supplied, or the text
	// is too short to analyze.
	ErrNoText = errors.New("no report text")

	// ErrUnsupportedType indicates a file format the extractor cannot read.
	ErrUnsupportedType = errors.New("unsupported file type")
)
