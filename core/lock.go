package core

import "context"

// Locker serializes work on a key across processes.
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx is done.
	// The returned func releases the lock.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
