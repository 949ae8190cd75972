package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedClass  = errors.New("unsupported asset class")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)
