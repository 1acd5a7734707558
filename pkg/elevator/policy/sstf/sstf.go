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

// Package sstf registers the shortest-seek-time-first scheduling
// policy with the elevator framework. Importing the package is enough
// to make the "sstf" policy available to device queues.
package sstf

import (
	"github.com/blkdev/elevator/pkg/elevator"
	libsstf "github.com/blkdev/elevator/pkg/elevator/lib/sstf"
	logger "github.com/blkdev/elevator/pkg/log"
)

const (
	// PolicyName is the name the policy registers under.
	PolicyName = "sstf"
	// PolicyDescription is a verbose description of the policy.
	PolicyDescription = "greedy shortest-seek-time-first request scheduling"
)

var log = logger.Get(PolicyName)

// policy implements elevator.Policy on top of libsstf.
type policy struct{}

// queue adapts one libsstf.Scheduler to elevator.PolicyQueue.
type queue struct {
	s *libsstf.Scheduler
}

// Name returns the well-known name of this policy.
func (policy) Name() string {
	return PolicyName
}

// Description gives a verbose description about the policy implementation.
func (policy) Description() string {
	return PolicyDescription
}

// NewQueue creates the policy-side state for one device queue.
func (policy) NewQueue(o *elevator.QueueOptions) (elevator.PolicyQueue, error) {
	var opts []libsstf.SchedulerOption

	if o.Event != nil {
		opts = append(opts, libsstf.WithEventSink(func(e libsstf.Event) {
			o.Event(&elevator.Event{
				Kind:   elevator.EventKind(e.Kind),
				Sector: e.Sector,
			})
		}))
	}

	s, err := libsstf.NewScheduler(func(r libsstf.Request) {
		o.Dispatch(r.(*elevator.Request))
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &queue{s: s}, nil
}

func (q *queue) Add(r *elevator.Request) {
	q.s.Add(r)
}

func (q *queue) Dispatch() bool {
	return q.s.Dispatch()
}

func (q *queue) Merge(surviving, absorbed *elevator.Request) {
	q.s.Merge(surviving, absorbed)
}

func (q *queue) Depth() int {
	return q.s.Len()
}

func (q *queue) HeadPosition() uint64 {
	return q.s.HeadPosition()
}

func (q *queue) Exit() {
	q.s.Close()
}

func init() {
	if err := elevator.Register(policy{}); err != nil {
		log.Error("failed to register policy: %v", err)
	}
}
