package engine

import (
	"sync"

	"github.com/roach88/strata/internal/ir"
)

// commandQueue is a thread-safe FIFO queue of commands waiting for the Run
// loop.
//
// The queue is unbounded so that a listener reacting to an edit can enqueue
// follow-up commands without blocking the loop that delivers to it.
//
// A buffered signal channel lets the Run loop wait on the queue and on
// context cancellation at the same time.
type commandQueue struct {
	mu     sync.Mutex
	cmds   []ir.Command
	closed bool
	signal chan struct{} // buffered, size 1
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		cmds:   make([]ir.Command, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a command to the back of the queue.
// Returns false if the queue is closed.
func (q *commandQueue) Enqueue(cmd ir.Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.cmds = append(q.cmds, cmd)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes and returns the front command without blocking.
// Returns false if the queue is empty.
func (q *commandQueue) TryDequeue() (ir.Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.cmds) == 0 {
		return ir.Command{}, false
	}

	cmd := q.cmds[0]

	// Clear the slot so the args map can be collected.
	q.cmds[0] = ir.Command{}

	if len(q.cmds) == 1 {
		q.cmds = q.cmds[:0]
	} else {
		q.cmds = q.cmds[1:]
	}

	return cmd, true
}

// Wait returns a channel that signals when commands may be available.
// The channel is closed when the queue is closed.
func (q *commandQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.cmds)
}

// Close signals that no more commands will be enqueued and wakes waiters.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
