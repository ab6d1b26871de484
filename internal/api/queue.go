// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultMaxPending is the default capacity of the pending request queue.
// The source behavior had no bound; a cap turns slow resource exhaustion
// during a long outage into an immediate, reportable failure.
const DefaultMaxPending = 256

// outcome is the settled result of a parked request.
type outcome struct {
	resp *Response
	err  error
}

// pendingEntry is one deferred request descriptor together with the
// waiter that will receive its outcome on replay.
type pendingEntry struct {
	ctx      context.Context
	req      *Request
	done     chan outcome
	canceled atomic.Bool
}

// cancel marks the entry so the drain loop skips it. The waiter has
// already stopped listening when this is called.
func (e *pendingEntry) cancel() {
	e.canceled.Store(true)
}

// settle delivers the replay outcome to the waiter. Non-blocking: the
// done channel is buffered and written at most once.
func (e *pendingEntry) settle(resp *Response, err error) {
	select {
	case e.done <- outcome{resp: resp, err: err}:
	default:
	}
}

// =============================================================================
// PENDING QUEUE
// =============================================================================

// pendingQueue is the ordered buffer of requests deferred while offline.
// Only the owning client mutates it; the drain loop takes whole batches
// via swap so concurrent reconnect events can never replay an entry twice.
type pendingQueue struct {
	mu      sync.Mutex
	entries []*pendingEntry
	maxSize int
}

// newPendingQueue creates a queue with the given capacity (0 = DefaultMaxPending).
func newPendingQueue(maxSize int) *pendingQueue {
	if maxSize <= 0 {
		maxSize = DefaultMaxPending
	}
	return &pendingQueue{maxSize: maxSize}
}

// push appends a deferred request, preserving submission order.
// Returns ErrQueueFull when the queue is at capacity.
func (q *pendingQueue) push(ctx context.Context, req *Request) (*pendingEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= q.maxSize {
		return nil, ErrQueueFull
	}

	entry := &pendingEntry{
		ctx:  ctx,
		req:  req,
		done: make(chan outcome, 1),
	}
	q.entries = append(q.entries, entry)
	return entry, nil
}

// swap atomically takes the entire current queue for draining. Requests
// arriving during the drain land on the fresh queue, not the batch being
// replayed.
func (q *pendingQueue) swap() []*pendingEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch := q.entries
	q.entries = nil
	return batch
}

// size returns the number of parked requests.
func (q *pendingQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
