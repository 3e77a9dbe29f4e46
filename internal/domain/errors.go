package domain

import "errors"

var (
	ErrBlankRow          = errors.New("blank row")
	ErrMissingField      = errors.New("required field missing")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrNotFound          = errors.New("not found")
)
