package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// LockTimeout bounds how long a write waits for another writer of the same destination.
const LockTimeout = 30 * time.Second

const lockRetryDelay = 50 * time.Millisecond

// lockDestination takes an exclusive advisory lock on destination, creating it
// if needed. Concurrent extractions writing the same file (a watch and a manual
// run, say) are serialized instead of interleaving lines.
func lockDestination(ctx context.Context, destination string) (*flock.Flock, error) {
	lock := flock.New(destination, flock.SetPermissions(0644))

	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("locked by another writer: %w", err)
		}
		return nil, &SinkWriteError{Destination: destination, Op: "open", Err: err}
	}
	if !locked {
		return nil, &SinkWriteError{Destination: destination, Op: "open", Err: errors.New("locked by another writer")}
	}
	return lock, nil
}

func unlock(lock *flock.Flock, destination string, err *error) {
	if uerr := lock.Unlock(); uerr != nil && *err == nil {
		*err = &SinkWriteError{Destination: destination, Op: "unlock", Err: uerr}
	}
}
