package store

import "errors"

var (
	ErrUniqueViolation = errors.New("store: duplicate key value violates unique constraint")
	ErrInvalidInput    = errors.New("store: invalid input")
	ErrNotFound        = errors.New("store: record not found")
)
