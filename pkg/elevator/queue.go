// Copyright The Elevator Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package elevator

import (
	"context"
	"fmt"
	"sync"

	"github.com/blkdev/elevator/pkg/instrumentation/tracing"
)

// Queue binds one device queue to a scheduling policy. It owns the
// submission and dispatch paths, detects and performs coalescing of
// contiguous requests, and accounts per-queue scheduling statistics.
// Queues are fully independent of each other.
type Queue struct {
	mu     sync.Mutex
	name   string
	policy Policy
	pq     PolicyQueue

	// pending request index for coalescing, keyed by sector range ends
	byStart map[uint64]*Request
	byEnd   map[uint64]*Request

	// scratch slot filled by the policy's dispatch callback
	dispatched *Request

	handler func(*Request)
	stats   QueueStats
	closed  bool

	events    chan *Event
	stop      chan struct{}
	listener  func(*Event)
	eventSize int
	collector *queueCollector
}

// QueueStats is a point-in-time snapshot of a queue's counters.
type QueueStats struct {
	// Submitted counts requests accepted by Submit.
	Submitted uint64
	// Queued counts requests that entered the policy's pending set.
	Queued uint64
	// Dispatched counts requests handed to the device sink.
	Dispatched uint64
	// Extended counts submissions absorbed into an already queued
	// request without ever entering the pending set.
	Extended uint64
	// Merged counts queued requests coalesced into a queued neighbor.
	Merged uint64
	// SeekDistance is the cumulative head movement in sectors.
	SeekDistance uint64
	// EventsDropped counts diagnostic events lost to a full channel.
	EventsDropped uint64
}

// QueueOption is an opaque option for a Queue.
type QueueOption func(*Queue) error

// WithDispatchHandler sets the device sink dispatched requests are
// handed to. The handler runs outside the queue lock and may submit
// new requests.
func WithDispatchHandler(fn func(*Request)) QueueOption {
	return func(q *Queue) error {
		q.handler = fn
		return nil
	}
}

// WithEventListener sets a listener for the queue's diagnostic events.
// The listener runs on the queue's event goroutine.
func WithEventListener(fn func(*Event)) QueueOption {
	return func(q *Queue) error {
		q.listener = fn
		return nil
	}
}

// WithEventBufferSize overrides the diagnostic event channel capacity.
func WithEventBufferSize(size int) QueueOption {
	return func(q *Queue) error {
		if size < 1 {
			return fmt.Errorf("elevator: invalid event buffer size %d", size)
		}
		q.eventSize = size
		return nil
	}
}

// NewQueue attaches the named policy to a new device queue. The name
// identifies the queue in logs and metrics. Attach is aborted if the
// policy is unknown or fails to set up its per-queue state.
func NewQueue(name, policyName string, options ...QueueOption) (*Queue, error) {
	p, ok := Lookup(policyName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policyName)
	}

	q := &Queue{
		name:      name,
		policy:    p,
		byStart:   make(map[uint64]*Request),
		byEnd:     make(map[uint64]*Request),
		eventSize: defaultEventBuffer,
	}

	for _, o := range options {
		if err := o(q); err != nil {
			return nil, err
		}
	}

	pq, err := p.NewQueue(&QueueOptions{
		Dispatch: q.onDispatch,
		Event:    q.sendEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: policy %q for queue %q: %w",
			ErrFailedAttach, policyName, name, err)
	}
	q.pq = pq

	q.startEventProcessing()

	if err := q.registerCollector(); err != nil {
		q.stopEventProcessing()
		pq.Exit()
		return nil, err
	}

	log.Info("queue %q attached to policy %q", name, policyName)

	return q, nil
}

// Name returns the name of the queue.
func (q *Queue) Name() string {
	return q.name
}

// Policy returns the name of the scheduling policy of the queue.
func (q *Queue) Policy() string {
	return q.policy.Name()
}

// Submit accepts a request for eventual dispatch. A request contiguous
// with an already queued one of the same direction is coalesced into
// it instead of being queued; if that in turn makes two queued
// requests contiguous, those are coalesced as well. Once Submit
// returns nil the covered sectors are committed to eventual dispatch.
func (q *Queue) Submit(r *Request) (err error) {
	_, span := tracing.StartSpan(context.Background(), "Queue.Submit")
	defer func() {
		span.SetStatus(err)
		span.End()
	}()

	if r == nil || r.count == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, r)
	}

	span.SetAttributes(
		tracing.Attribute("queue", q.name),
		tracing.Attribute("sector", r.sector),
		tracing.Attribute("count", r.count),
	)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("%w: %q", ErrQueueClosed, q.name)
	}

	q.stats.Submitted++

	// back-merge: extend a queued request ending where this one starts
	if prev, ok := q.byEnd[r.sector]; ok && prev.op == r.op {
		delete(q.byEnd, prev.End())
		prev.extend(r.count)
		q.indexEnd(prev)
		q.stats.Extended++
		log.Debug("queue %q: %v extended to %v", q.name, r, prev)

		if next, ok := q.byStart[prev.End()]; ok && prev.op == next.op {
			q.coalesce(prev, next)
		}
		return nil
	}

	q.pq.Add(r)
	q.stats.Queued++
	q.index(r)

	if next, ok := q.byStart[r.End()]; ok && r.op == next.op && next != r {
		q.coalesce(r, next)
	}

	return nil
}

// Dispatch asks the policy for the next request. The chosen request is
// removed from the pending set, handed to the device sink, and
// returned. It returns (nil, false) if nothing is pending or the queue
// is closed; an idle queue is a normal condition.
func (q *Queue) Dispatch() (*Request, bool) {
	_, span := tracing.StartSpan(context.Background(), "Queue.Dispatch")
	defer span.End()

	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		return nil, false
	}

	prev := q.pq.HeadPosition()
	q.dispatched = nil
	if !q.pq.Dispatch() {
		q.mu.Unlock()
		return nil, false
	}

	r := q.dispatched
	q.dispatched = nil
	q.stats.Dispatched++
	q.stats.SeekDistance += absDelta(prev, q.pq.HeadPosition())
	handler := q.handler

	span.SetAttributes(
		tracing.Attribute("queue", q.name),
		tracing.Attribute("sector", r.sector),
		tracing.Attribute("seek", absDelta(prev, q.pq.HeadPosition())),
	)

	q.mu.Unlock()

	if handler != nil {
		handler(r)
	}

	return r, true
}

// Depth returns the number of pending requests.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pq.Depth()
}

// HeadPosition returns the head position assumed by the policy.
func (q *Queue) HeadPosition() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pq.HeadPosition()
}

// Stats returns a snapshot of the queue's counters.
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// Close detaches the queue from its policy. It refuses to close a
// queue with pending requests: tearing down committed work would
// silently drop I/O. The caller must drain the queue first.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	if d := q.pq.Depth(); d > 0 {
		return fmt.Errorf("%w: %q has %d pending", ErrQueueBusy, q.name, d)
	}

	q.pq.Exit()
	q.closed = true
	q.stopEventProcessing()
	q.unregisterCollector()

	log.Info("queue %q closed", q.name)

	return nil
}

// onDispatch is the dispatch sink handed to the policy. The policy
// invokes it synchronously from PolicyQueue.Dispatch, which only runs
// with q.mu held, so it touches queue state without locking.
func (q *Queue) onDispatch(r *Request) {
	q.unindex(r)
	q.dispatched = r
}

// coalesce absorbs a queued request into its queued predecessor.
// Callers must hold q.mu, and absorbed must be in the pending set.
func (q *Queue) coalesce(surviving, absorbed *Request) {
	q.pq.Merge(surviving, absorbed)
	q.unindex(absorbed)
	if q.byEnd[surviving.End()] == surviving {
		delete(q.byEnd, surviving.End())
	}
	surviving.extend(absorbed.count)
	q.indexEnd(surviving)
	q.stats.Merged++
	log.Debug("queue %q: %v absorbed into %v", q.name, absorbed, surviving)
}

// index records a queued request for coalescing lookups. A request
// colliding with an already indexed one is left unindexed; it is still
// scheduled normally but never participates in merges. Callers must
// hold q.mu.
func (q *Queue) index(r *Request) {
	if _, ok := q.byStart[r.sector]; !ok {
		q.byStart[r.sector] = r
	}
	q.indexEnd(r)
}

func (q *Queue) indexEnd(r *Request) {
	if _, ok := q.byEnd[r.End()]; !ok {
		q.byEnd[r.End()] = r
	}
}

// unindex drops a request from the coalescing index. Callers must hold
// q.mu.
func (q *Queue) unindex(r *Request) {
	if q.byStart[r.sector] == r {
		delete(q.byStart, r.sector)
	}
	if q.byEnd[r.End()] == r {
		delete(q.byEnd, r.End())
	}
}

// absDelta returns the absolute difference of two sectors.
func absDelta(a, b uint64) uint64 {
	if a < b {
		return b - a
	}
	return a - b
}
