package service

import "errors"

// ErrValidation marks malformed input: missing or inverted time bounds, a
// window too short to cover one slot, or a missing identity filter on owner
// queries. Never retried automatically.
var ErrValidation = errors.New("validation failed")
