package models

import "errors"

// Sentinel errors shared by the models layer. Handlers map these to HTTP
// status codes with errors.Is; nothing else should leak past the boundary.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("short code already taken")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConfiguration = errors.New("configuration error")
	ErrUnavailable   = errors.New("store unavailable")
)
