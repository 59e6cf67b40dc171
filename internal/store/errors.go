package store

import "errors"

var (
	ErrRecordNotFound = errors.New("job not found in history")
	ErrDuplicateKey   = errors.New("job already recorded")
)
