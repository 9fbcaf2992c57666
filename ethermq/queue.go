package ethermq

import (
	"context"
	"sync"
)

// Queue is an unbounded fifo of frames. Push never blocks, so a slow consumer can never stall a
// pump; Pop blocks until a frame is available or the context is done. Any number of goroutines
// may push and pop concurrently.
type Queue struct {
	name string

	mu     sync.Mutex
	frames []Frame

	// ready holds a token whenever frames may be waiting.
	ready chan struct{}
}

// NewQueue returns a new, empty Queue.
func NewQueue(name string) *Queue {
	return &Queue{
		name:  name,
		ready: make(chan struct{}, 1),
	}
}

// Name returns the name of the queue.
func (q *Queue) Name() string {
	return q.name
}

// Push appends f to the queue.
func (q *Queue) Push(f Frame) {
	q.mu.Lock()
	q.frames = append(q.frames, f)
	q.mu.Unlock()

	q.signal()
}

// Pop removes and returns the oldest frame in the queue, blocking until there is one or ctx is
// done.
func (q *Queue) Pop(ctx context.Context) (Frame, error) {
	for {
		q.mu.Lock()

		if len(q.frames) > 0 {
			f := q.frames[0]

			q.frames[0] = nil
			q.frames = q.frames[1:]

			remaining := len(q.frames)

			q.mu.Unlock()

			if remaining > 0 {
				// pass the token on so other waiting consumers wake up too
				q.signal()
			}

			return f, nil
		}

		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of frames currently waiting in the queue.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.frames)
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
