package buffer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed is returned by Pop once the producer has closed the queue and
	// every buffered item has been drained, and by Push after Close.
	ErrClosed = errors.New("buffer: queue closed")

	// ErrDetached is returned by Push once the consumer has gone away.
	ErrDetached = errors.New("buffer: consumer detached")
)

// Unbounded is a FIFO queue that grows as needed so producers never block.
//
// One goroutine produces, one consumes. The consumer waits on a wake channel
// outside the lock, so the mutex is only held around the enqueue/dequeue
// instant and never across a blocking wait.
//
// Usage:
//
//	q := buffer.NewUnbounded[string](64, 0)
//	_ = q.Push("hello")
//	msg, err := q.Pop(ctx)
type Unbounded[T any] struct {
	mu       sync.Mutex
	queue    []T
	closed   bool
	detached bool

	// hardLimit caps the backlog; 0 means no cap.
	hardLimit int
	dropped   atomic.Int64

	wake chan struct{}
}

// NewUnbounded creates a queue.
//
// initialCap: The starting size of the backing slice (performance optimization).
// hardLimit: The maximum number of items to buffer before dropping the oldest
// (safety valve). Zero or negative disables the limit.
func NewUnbounded[T any](initialCap, hardLimit int) *Unbounded[T] {
	if initialCap < 0 {
		initialCap = 0
	}
	return &Unbounded[T]{
		queue:     make([]T, 0, initialCap),
		hardLimit: hardLimit,
		wake:      make(chan struct{}, 1),
	}
}

// Push appends v without blocking. It fails with ErrDetached when the
// consumer is gone and ErrClosed after Close.
func (u *Unbounded[T]) Push(v T) error {
	u.mu.Lock()
	switch {
	case u.detached:
		u.mu.Unlock()
		return ErrDetached
	case u.closed:
		u.mu.Unlock()
		return ErrClosed
	}

	if u.hardLimit > 0 && len(u.queue) >= u.hardLimit {
		var zero T
		u.queue[0] = zero
		u.queue = u.queue[1:]
		u.dropped.Add(1)
	}
	u.queue = append(u.queue, v)
	u.mu.Unlock()

	u.signal()
	return nil
}

// Pop removes the oldest item, blocking until one is available, the queue is
// closed and drained (ErrClosed), or ctx is done.
func (u *Unbounded[T]) Pop(ctx context.Context) (T, error) {
	for {
		v, ok, err := u.TryPop()
		if ok || err != nil {
			return v, err
		}

		select {
		case <-u.wake:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryPop removes the oldest item if one is buffered. It reports ErrClosed
// when the producer has closed and nothing is left.
func (u *Unbounded[T]) TryPop() (T, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var zero T
	if len(u.queue) > 0 {
		v := u.queue[0]
		u.queue[0] = zero
		u.queue = u.queue[1:]
		if len(u.queue) == 0 {
			// Drop the consumed prefix so the backing array can be collected.
			u.queue = nil
		}
		return v, true, nil
	}
	if u.closed || u.detached {
		return zero, false, ErrClosed
	}
	return zero, false, nil
}

// Close marks the producer as gone. Buffered items remain poppable.
func (u *Unbounded[T]) Close() {
	u.mu.Lock()
	u.closed = true
	u.mu.Unlock()
	u.signal()
}

// Detach marks the consumer as gone and discards the backlog. Later pushes
// fail with ErrDetached so producers can log and carry on.
func (u *Unbounded[T]) Detach() {
	u.mu.Lock()
	u.detached = true
	u.queue = nil
	u.mu.Unlock()
	u.signal()
}

// Len returns the number of buffered items.
func (u *Unbounded[T]) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.queue)
}

// Dropped returns how many items the hard limit has discarded.
func (u *Unbounded[T]) Dropped() int64 {
	return u.dropped.Load()
}

func (u *Unbounded[T]) signal() {
	select {
	case u.wake <- struct{}{}:
	default:
	}
}
