package irc

import (
	"sync"

	"github.com/gammazero/deque"
)

// queue is an unbounded FIFO with a single consumer. Pushing never blocks;
// the consumer wakes as soon as an item is pushed.
type queue[T any] struct {
	mu     sync.Mutex
	items  deque.Deque[T]
	wake   chan struct{}
	closed bool
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{wake: make(chan struct{}, 1)}
}

// push appends v. It returns false once the queue is closed.
func (q *queue[T]) push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items.PushBack(v)
	q.mu.Unlock()
	q.signal()
	return true
}

// pop removes the head, blocking until one is available. After close, the
// remaining items are still returned before pop reports false. pop also
// returns false when done is closed.
func (q *queue[T]) pop(done <-chan struct{}) (T, bool) {
	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			v := q.items.PopFront()
			q.mu.Unlock()
			return v, true
		}
		closed := q.closed
		q.mu.Unlock()

		var zero T
		if closed {
			return zero, false
		}
		select {
		case <-q.wake:
		case <-done:
			return zero, false
		}
	}
}

func (q *queue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *queue[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
