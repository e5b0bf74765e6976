// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidTitle  = errors.New("invalid title")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrLimitReached  = errors.New("usage limit reached")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrOracleFailure = errors.New("oracle failure")
)
