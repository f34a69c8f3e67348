package models

import "errors"

// Error taxonomy shared by the local simulation, the transport shim and the
// HTTP layer. Callers branch with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrCodeExpired  = errors.New("one-time code expired")
	ErrCodeMismatch = errors.New("one-time code mismatch")
	ErrStorage      = errors.New("storage failure")
)
