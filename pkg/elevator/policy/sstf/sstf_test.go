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

package sstf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blkdev/elevator/pkg/elevator"
)

func TestPolicyIsRegistered(t *testing.T) {
	p, ok := elevator.Lookup(PolicyName)
	require.True(t, ok)
	require.Equal(t, PolicyName, p.Name())
	require.Equal(t, PolicyDescription, p.Description())
}

func TestPolicyQueue(t *testing.T) {
	var dispatched []uint64

	pq, err := policy{}.NewQueue(&elevator.QueueOptions{
		Dispatch: func(r *elevator.Request) {
			dispatched = append(dispatched, r.Sector())
		},
	})
	require.NoError(t, err)
	require.Equal(t, 0, pq.Depth())
	require.Equal(t, uint64(0), pq.HeadPosition())

	for _, sector := range []uint64{100, 10, 50} {
		pq.Add(elevator.NewRequest(elevator.OpRead, sector, 4))
	}
	require.Equal(t, 3, pq.Depth())

	for pq.Dispatch() {
	}

	require.Equal(t, []uint64{10, 50, 100}, dispatched)
	require.Equal(t, uint64(100), pq.HeadPosition())
	require.NotPanics(t, pq.Exit)
}

func TestPolicyQueueEvents(t *testing.T) {
	var events []elevator.Event

	pq, err := policy{}.NewQueue(&elevator.QueueOptions{
		Dispatch: func(*elevator.Request) {},
		Event: func(e *elevator.Event) {
			events = append(events, *e)
		},
	})
	require.NoError(t, err)

	pq.Add(elevator.NewRequest(elevator.OpRead, 10, 4))
	require.True(t, pq.Dispatch())

	require.Equal(t, []elevator.Event{
		{Kind: elevator.EventAdd, Sector: 10},
		{Kind: elevator.EventDispatch, Sector: 10},
	}, events)
}
