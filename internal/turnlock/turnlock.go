// Package turnlock serializes tutoring turns that share a session id.
package turnlock

import (
	"context"
	"errors"
	"fmt"
)

// ErrLockTimeout is returned when a lock could not be acquired before the
// context was done.
var ErrLockTimeout = errors.New("turn lock: timed out waiting for session")

// Release frees a held lock. Calling it more than once is a no-op.
type Release func() error

// Locker grants exclusive access to a key.
type Locker interface {
	Lock(ctx context.Context, key string) (Release, error)
}

func timeoutErr(key string, err error) error {
	return fmt.Errorf("%w %q: %w", ErrLockTimeout, key, err)
}
