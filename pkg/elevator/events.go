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
	logger "github.com/blkdev/elevator/pkg/log"
)

// Our logger instance for events.
var evtlog = logger.NewLogger("events")

// defaultEventBuffer is the default diagnostic event channel capacity.
const defaultEventBuffer = 64

// startEventProcessing starts the queue's diagnostic event goroutine.
func (q *Queue) startEventProcessing() {
	q.events = make(chan *Event, q.eventSize)
	q.stop = make(chan struct{})

	stop, events := q.stop, q.events
	go func() {
		for {
			select {
			case <-stop:
				return
			case e := <-events:
				q.processEvent(e)
			}
		}
	}()
}

// stopEventProcessing stops the event goroutine. Callers must hold q.mu.
func (q *Queue) stopEventProcessing() {
	if q.stop != nil {
		close(q.stop)
		q.stop = nil
	}
}

// sendEvent queues a diagnostic event for processing. It never blocks
// a scheduling operation: with a full channel the event is dropped and
// accounted. Invoked by the policy with q.mu held.
func (q *Queue) sendEvent(e *Event) {
	select {
	case q.events <- e:
	default:
		q.stats.EventsDropped++
	}
}

// processEvent handles one diagnostic event.
func (q *Queue) processEvent(e *Event) {
	evtlog.Debug("queue %q: %s", q.name, e)

	if q.listener != nil {
		q.listener(e)
	}
}
