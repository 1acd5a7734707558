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
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type request struct {
	sector uint64
}

func (r *request) Sector() uint64 {
	return r.sector
}

func req(sector uint64) *request {
	return &request{sector: sector}
}

// collector records dispatched handles and emitted events.
type collector struct {
	dispatched []Request
	events     []Event
}

func (c *collector) sink(r Request) {
	c.dispatched = append(c.dispatched, r)
}

func (c *collector) notify(e Event) {
	c.events = append(c.events, e)
}

func (c *collector) sectors() []uint64 {
	var sectors []uint64
	for _, r := range c.dispatched {
		sectors = append(sectors, r.Sector())
	}
	return sectors
}

func newTestScheduler(t *testing.T) (*Scheduler, *collector) {
	c := &collector{}
	s, err := NewScheduler(c.sink, WithEventSink(c.notify))
	require.NoError(t, err)
	require.NotNil(t, s)
	return s, c
}

func TestNewScheduler(t *testing.T) {
	t.Run("nil dispatch sink", func(t *testing.T) {
		s, err := NewScheduler(nil)
		require.ErrorIs(t, err, ErrNoDispatchSink)
		require.Nil(t, s)
	})
	t.Run("nil event sink", func(t *testing.T) {
		s, err := NewScheduler(func(Request) {}, WithEventSink(nil))
		require.ErrorIs(t, err, ErrFailedOption)
		require.Nil(t, s)
	})
	t.Run("initial state", func(t *testing.T) {
		s, _ := newTestScheduler(t)
		require.Equal(t, 0, s.Len())
		require.Equal(t, uint64(0), s.HeadPosition())
	})
}

func TestDispatchOrder(t *testing.T) {
	t.Run("nearest first from initial head", func(t *testing.T) {
		s, c := newTestScheduler(t)

		s.Add(req(100))
		s.Add(req(10))
		s.Add(req(50))

		for s.Dispatch() {
		}

		require.Equal(t, []uint64{10, 50, 100}, c.sectors())
		require.Equal(t, uint64(100), s.HeadPosition())
		require.Equal(t, 0, s.Len())
	})

	t.Run("head follows dispatched sector", func(t *testing.T) {
		s, c := newTestScheduler(t)

		s.Add(req(500))
		s.Add(req(400))
		s.Add(req(600))

		// 400 is nearest to 0, then 500, then 600
		require.True(t, s.Dispatch())
		require.Equal(t, uint64(400), s.HeadPosition())
		require.True(t, s.Dispatch())
		require.Equal(t, uint64(500), s.HeadPosition())
		require.True(t, s.Dispatch())
		require.Equal(t, uint64(600), s.HeadPosition())

		require.Equal(t, []uint64{400, 500, 600}, c.sectors())
	})

	t.Run("greedy choice is not globally optimal", func(t *testing.T) {
		s, c := newTestScheduler(t)

		// from head 50, the scheduler serves 40 before the far pair
		s.Add(req(40))
		s.Add(req(1000))
		s.Add(req(1010))

		s.Add(req(50))
		require.True(t, s.Dispatch()) // move head to 50

		for s.Dispatch() {
		}
		require.Equal(t, []uint64{50, 40, 1000, 1010}, c.sectors())
	})

	t.Run("large sector distances", func(t *testing.T) {
		s, c := newTestScheduler(t)

		s.Add(req(math.MaxUint64))
		s.Add(req(1))

		for s.Dispatch() {
		}
		require.Equal(t, []uint64{1, math.MaxUint64}, c.sectors())
	})
}

func TestTieBreak(t *testing.T) {
	// move the head off 0, then queue two equidistant requests in
	// both orders; the earlier-queued one must win.
	for _, sectors := range [][]uint64{{10, 30}, {30, 10}} {
		s, c := newTestScheduler(t)

		s.Add(req(20))
		require.True(t, s.Dispatch())
		require.Equal(t, uint64(20), s.HeadPosition())

		s.Add(req(sectors[0]))
		s.Add(req(sectors[1]))

		require.True(t, s.Dispatch())
		require.Equal(t, sectors[0], c.sectors()[1])
	}
}

func TestIdleDispatch(t *testing.T) {
	s, c := newTestScheduler(t)

	require.False(t, s.Dispatch())
	require.False(t, s.Dispatch())
	require.Empty(t, c.dispatched)
	require.Empty(t, c.events)
	require.Equal(t, uint64(0), s.HeadPosition())

	// idle dispatch leaves the scheduler fully usable
	s.Add(req(42))
	require.True(t, s.Dispatch())
	require.False(t, s.Dispatch())
	require.Equal(t, []uint64{42}, c.sectors())
}

func TestPeek(t *testing.T) {
	s, _ := newTestScheduler(t)

	_, ok := s.Peek()
	require.False(t, ok)

	near, far := req(10), req(100)
	s.Add(far)
	s.Add(near)

	r, ok := s.Peek()
	require.True(t, ok)
	require.Same(t, Request(near), r)
	require.Equal(t, 2, s.Len())

	require.True(t, s.Dispatch())
	r, ok = s.Peek()
	require.True(t, ok)
	require.Same(t, Request(far), r)
}

func TestMerge(t *testing.T) {
	t.Run("absorbed leaves the pending set", func(t *testing.T) {
		s, c := newTestScheduler(t)

		surviving, absorbed := req(100), req(108)
		s.Add(req(10))
		s.Add(surviving)
		s.Add(absorbed)
		require.Equal(t, 3, s.Len())

		s.Merge(surviving, absorbed)
		require.Equal(t, 2, s.Len())

		for s.Dispatch() {
		}
		require.Equal(t, []uint64{10, 100}, c.sectors())
	})

	t.Run("unqueued absorbed panics", func(t *testing.T) {
		s, _ := newTestScheduler(t)

		surviving := req(100)
		s.Add(surviving)

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			require.ErrorIs(t, err, ErrNotQueued)
		}()
		s.Merge(surviving, req(108))
	})

	t.Run("nil add panics", func(t *testing.T) {
		s, _ := newTestScheduler(t)

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			require.ErrorIs(t, err, ErrNilRequest)
		}()
		s.Add(nil)
	})
}

func TestClose(t *testing.T) {
	t.Run("empty scheduler closes", func(t *testing.T) {
		s, _ := newTestScheduler(t)
		s.Add(req(10))
		require.True(t, s.Dispatch())
		require.NotPanics(t, s.Close)
	})

	t.Run("pending requests panic", func(t *testing.T) {
		s, _ := newTestScheduler(t)
		s.Add(req(10))

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			require.ErrorIs(t, err, ErrQueueNotEmpty)
		}()
		s.Close()
	})

	t.Run("use after close panics", func(t *testing.T) {
		s, _ := newTestScheduler(t)
		s.Close()

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			require.ErrorIs(t, err, ErrClosed)
		}()
		s.Add(req(10))
	})
}

func TestEvents(t *testing.T) {
	s, c := newTestScheduler(t)

	s.Add(req(100))
	s.Add(req(10))
	require.True(t, s.Dispatch())

	require.Equal(t, []Event{
		{Kind: EventAdd, Sector: 100},
		{Kind: EventAdd, Sector: 10},
		{Kind: EventDispatch, Sector: 10},
	}, c.events)

	// dispatch events carry the post-update head position
	require.Equal(t, s.HeadPosition(), c.events[2].Sector)

	data, err := json.Marshal(c.events[2])
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"dispatch","location":10}`, string(data))
}
