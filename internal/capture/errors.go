package capture

import "errors"

var (
	// ErrInputNotFound indicates no screener export exists for the date.
	ErrInputNotFound = errors.New("capture: input not found")
	// ErrInputMalformed indicates the export exists but fails the schema.
	ErrInputMalformed = errors.New("capture: input malformed")
	// ErrOutputWrite indicates the signal log could not be written.
	ErrOutputWrite = errors.New("capture: output write failed")
)
