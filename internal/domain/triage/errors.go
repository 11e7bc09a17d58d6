package triage

import "errors"

// ErrInvalidInput marks a report rejected before classification.
var ErrInvalidInput = errors.New("invalid input")
