package capture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrQueueClosed is returned by Pop once the queue is closed and drained.
var ErrQueueClosed = errors.New("queue closed")

// DefaultQueueSize keeps at most one frame waiting behind the one being
// processed.
const DefaultQueueSize = 2

// Queue is a bounded hand-off between one producer and one consumer. Push
// never blocks: when the queue is full the oldest item is evicted, so the
// consumer always sees the freshest frames.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	onDrop   func(T)
	closed   bool

	ready chan struct{}
	done  chan struct{}

	dropped atomic.Uint64
}

// NewQueue creates a queue holding up to capacity items. onDrop, if not nil,
// is called for every evicted or discarded item, outside the queue lock.
func NewQueue[T any](capacity int, onDrop func(T)) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Queue[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
		onDrop:   onDrop,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Push adds v, evicting the oldest item if the queue is full. It reports
// whether an item was dropped. Pushing to a closed queue drops v.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.drop(v)
		return true
	}

	var (
		evicted T
		full    = len(q.items) == q.capacity
	)
	if full {
		evicted = q.items[0]
		copy(q.items, q.items[1:])
		q.items = q.items[:len(q.items)-1]
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}

	if full {
		q.drop(evicted)
	}
	return full
}

// Pop removes and returns the oldest item, blocking until one is available,
// ctx is done, or the queue is closed.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	return q.wait(ctx, q.TryPop)
}

// PopLatest is Pop for a consumer that only wants the freshest item: it
// returns the newest item and drops everything queued before it.
func (q *Queue[T]) PopLatest(ctx context.Context) (T, error) {
	return q.wait(ctx, q.TryPopLatest)
}

func (q *Queue[T]) wait(ctx context.Context, try func() (T, bool)) (T, error) {
	for {
		if v, ok := try(); ok {
			return v, nil
		}

		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			var zero T
			return zero, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-q.done:
		case <-q.ready:
		}
	}
}

// TryPop returns the oldest item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// TryPopLatest returns the newest item without blocking and drops the
// older ones.
func (q *Queue[T]) TryPopLatest() (T, bool) {
	q.mu.Lock()
	var zero T
	n := len(q.items)
	if n == 0 {
		q.mu.Unlock()
		return zero, false
	}
	v := q.items[n-1]
	stale := make([]T, n-1)
	copy(stale, q.items[:n-1])
	clear(q.items)
	q.items = q.items[:0]
	q.mu.Unlock()

	for _, old := range stale {
		q.drop(old)
	}
	return v, true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many items have been evicted or discarded.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}

// Close stops accepting items and wakes any waiting consumer. Items already
// queued can still be popped. It is safe to call more than once.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Drain discards every queued item through onDrop.
func (q *Queue[T]) Drain() {
	q.mu.Lock()
	rest := q.items
	q.items = nil
	q.mu.Unlock()

	for _, v := range rest {
		q.drop(v)
	}
}

func (q *Queue[T]) drop(v T) {
	q.dropped.Add(1)
	if q.onDrop != nil {
		q.onDrop(v)
	}
}
