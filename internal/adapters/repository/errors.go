package repository

import "errors"

// Sentinel errors returned by stores.
var (
	ErrNotFound      = errors.New("creator not found")
	ErrAlreadyExists = errors.New("featured creator already exists")
	ErrInvalidLimit  = errors.New("invalid featured limit")
	ErrSummaryWrite  = errors.New("grade summary write failed")
	ErrHistoryWrite  = errors.New("grade history write failed")
)
