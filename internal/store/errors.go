package store

import "errors"

var (
	ErrClockMissing  = errors.New("clock row missing")
	ErrInvalidRecord = errors.New("invalid stored record")
)
