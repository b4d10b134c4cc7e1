package queuemanager

import "errors"

var (
	// ErrOutOfMemory is the panic value for exhausted resources: all 64 queue
	// slots taken on create, or no free block on enqueue.
	ErrOutOfMemory = errors.New("queuemanager: out of memory")

	// ErrIllegalOperation is the panic value for contract violations: dequeue
	// from an empty queue, an invalid or stale handle, or use before init.
	ErrIllegalOperation = errors.New("queuemanager: illegal operation")
)
