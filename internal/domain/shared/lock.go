package shared

import (
	"context"
	"time"
)

// Locker guards a named critical section across callers.
// Acquire returns a release func when the key was free, or ErrLocked.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
	Close() error
}
