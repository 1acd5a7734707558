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

package libsstf

import (
	"fmt"
	"sync"
)

// Request is an opaque handle to a caller-owned block-storage request.
// The scheduler never allocates or frees handles; it only tracks their
// membership in the pending set. Handles are compared by identity, so
// callers are expected to pass pointers.
type Request interface {
	// Sector returns the target location of the request on the medium.
	Sector() uint64
}

// DispatchFn is the sink a dispatched request handle is handed to. It
// is invoked synchronously from Dispatch, with the scheduler state
// already updated, and must not call back into the scheduler.
type DispatchFn func(Request)

// EventFn receives diagnostic events. Like DispatchFn it is invoked
// synchronously and must not call back into the scheduler.
type EventFn func(Event)

// EventKind is the kind of a diagnostic event.
type EventKind string

const (
	// EventAdd records acceptance of a request into the pending set.
	EventAdd EventKind = "add"
	// EventDispatch records a dispatched request. Its location is the
	// head position after the dispatch.
	EventDispatch EventKind = "dispatch"
)

// Event is a diagnostic record emitted on every accepted and every
// dispatched request.
type Event struct {
	Kind   EventKind `json:"event"`
	Sector uint64    `json:"location"`
}

// String returns a string representation of the event.
func (e Event) String() string {
	return fmt.Sprintf("%s %d", e.Kind, e.Sector)
}

// Scheduler schedules pending requests for one device queue in
// shortest-seek-time-first order.
type Scheduler struct {
	mu      sync.Mutex
	pending []Request
	head    uint64
	sink    DispatchFn
	notify  EventFn
	closed  bool
}

// SchedulerOption is an opaque option for a Scheduler.
type SchedulerOption func(*Scheduler) error

// WithEventSink is an option to receive diagnostic events from the
// scheduler.
func WithEventSink(fn EventFn) SchedulerOption {
	return func(s *Scheduler) error {
		if fn == nil {
			return fmt.Errorf("%w: nil event sink", ErrFailedOption)
		}
		s.notify = fn
		return nil
	}
}

// NewScheduler creates a scheduler with an empty pending set and the
// head position at sector 0. Dispatched handles are handed to the
// given sink. A setup failure aborts creation and must abort attaching
// the policy to the device queue.
func NewScheduler(sink DispatchFn, options ...SchedulerOption) (*Scheduler, error) {
	if sink == nil {
		return nil, ErrNoDispatchSink
	}

	s := &Scheduler{
		sink: sink,
	}

	for _, o := range options {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Add appends the given request to the tail of the pending set. It
// performs no distance computation and never fails; acceptance is
// unconditional for a valid handle. A nil handle is a caller bug and
// panics.
func (s *Scheduler) Add(r Request) {
	if r == nil {
		panic(ErrNilRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.check()

	s.pending = append(s.pending, r)
	log.Debug("add %d (depth %d)", r.Sector(), len(s.pending))
	s.event(EventAdd, r.Sector())
}

// Dispatch removes the pending request nearest to the current head
// position, moves the head to its sector, and hands the handle to the
// dispatch sink. It returns false without side effects if nothing is
// pending, which is the normal idle outcome, not an error. Dispatch
// never waits for requests to arrive.
func (s *Scheduler) Dispatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.check()

	i := s.findNearest()
	if i < 0 {
		return false
	}

	r := s.pending[i]
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
	s.head = r.Sector()

	log.Debug("dispatch %d (depth %d)", s.head, len(s.pending))
	s.event(EventDispatch, s.head)
	s.sink(r)

	return true
}

// Peek returns the request Dispatch would pick next, without removing
// it. The second return value is false if nothing is pending.
func (s *Scheduler) Peek() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.check()

	if i := s.findNearest(); i >= 0 {
		return s.pending[i], true
	}
	return nil, false
}

// Merge removes absorbed from the pending set after the caller has
// coalesced its payload into surviving. The coalescing decision and
// the payload merge itself are the caller's business; surviving is
// left untouched, in its current queue position. An absorbed handle
// that is not pending means the caller and the scheduler have diverged
// on what is queued, which is unrecoverable: Merge panics.
func (s *Scheduler) Merge(surviving, absorbed Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.check()

	for i, r := range s.pending {
		if r == absorbed {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			log.Debug("merge %d into %d (depth %d)",
				absorbed.Sector(), surviving.Sector(), len(s.pending))
			return
		}
	}

	log.Error("merge of unqueued request at sector %d", absorbed.Sector())
	panic(fmt.Errorf("%w: sector %d", ErrNotQueued, absorbed.Sector()))
}

// Close tears the scheduler down. Pending requests at teardown mean
// committed work would be silently dropped; that is a fatal invariant
// violation, so Close panics instead of draining or discarding them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.check()

	if n := len(s.pending); n > 0 {
		log.Error("teardown with %d pending requests", n)
		panic(fmt.Errorf("%w: %d pending", ErrQueueNotEmpty, n))
	}

	s.closed = true
	s.pending = nil
}

// Len returns the number of pending requests.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// HeadPosition returns the sector the device head is assumed to be at
// after the most recent dispatch.
func (s *Scheduler) HeadPosition() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head
}

// findNearest returns the index of the pending request with the
// smallest absolute sector distance from the head, or -1 if nothing is
// pending. The scan runs in queue order with a strict less-than
// comparison, so among equidistant requests the earliest-queued one is
// picked. Callers must hold s.mu.
func (s *Scheduler) findNearest() int {
	var (
		nearest = -1
		minimum uint64
	)

	for i, r := range s.pending {
		if d := distance(r.Sector(), s.head); nearest < 0 || d < minimum {
			nearest, minimum = i, d
		}
	}

	return nearest
}

// event emits a diagnostic event if an event sink is set. Callers must
// hold s.mu.
func (s *Scheduler) event(kind EventKind, sector uint64) {
	if s.notify != nil {
		s.notify(Event{Kind: kind, Sector: sector})
	}
}

// check panics if the scheduler has been closed. Callers must hold s.mu.
func (s *Scheduler) check() {
	if s.closed {
		panic(ErrClosed)
	}
}

// distance returns the absolute difference of two sectors.
func distance(a, b uint64) uint64 {
	if a < b {
		return b - a
	}
	return a - b
}
