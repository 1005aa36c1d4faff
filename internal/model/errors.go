package model

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrStorage          = errors.New("storage error")
	ErrModelUnavailable = errors.New("model unavailable")
)
