package queuemanager

import "github.com/sttelite/queue-manager/region"

// Config for Manager
type Config struct {
	// Region optionally provides the 2048-byte memory area to manage, e.g. a
	// memory-mapped window handed over by the host. Its initial content may be
	// arbitrary garbage. When nil the Manager allocates a private region.
	Region *[region.Size]byte
	// OnOutOfMemory is invoked when all queue slots are taken on create or the
	// block free list is empty on enqueue. It must not return; when nil (or
	// when it returns anyway) the Manager panics with ErrOutOfMemory.
	OnOutOfMemory func()
	// OnIllegalOperation is invoked on dequeue from an empty queue, on any
	// handle that fails validation, and on use of an uninitialized system
	// through a non-create entry point. Same non-returning contract as
	// OnOutOfMemory, with ErrIllegalOperation as the fallback panic.
	OnIllegalOperation func()
	// Verbose mode prints information about region initialization and queue
	// lifecycle events.
	Verbose bool
	// Logger is invoked when `Config.Verbose=true`, by default stdlib log is used.
	Logger Logger
}

// DefaultConfig initializes config with default values: a private region and
// fault handling through the sentinel-error panics.
func DefaultConfig() Config {
	return Config{
		Verbose: false,
		Logger:  DefaultLogger(),
	}
}
