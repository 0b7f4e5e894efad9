package queue

import "errors"

// Sentinel errors returned by Enqueue.
var (
	ErrClosed = errors.New("recompute queue closed")
	ErrFull   = errors.New("recompute queue full")
)
