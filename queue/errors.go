package queue

import "github.com/pkg/errors"

var (
	ErrNilQueue = errors.New("queue is nil")
	ErrFreed    = errors.New("queue has been freed")
	ErrEmpty    = errors.New("queue is empty")
	ErrNoMemory = errors.New("could not allocate space")
)

// wrapNoMemory keeps the allocator's reason in the message while letting
// callers match ErrNoMemory with errors.Is.
func wrapNoMemory(cause error, op string) error {
	if errors.Is(cause, ErrNoMemory) {
		return errors.Wrap(cause, op)
	}
	return errors.Wrapf(ErrNoMemory, "%s: %v", op, cause)
}
