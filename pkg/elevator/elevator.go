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
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	logger "github.com/blkdev/elevator/pkg/log"
)

// Policy is the interface scheduling policy implementations register
// with the framework.
type Policy interface {
	// Name gets the well-known name of this policy.
	Name() string
	// Description gives a verbose description about the policy implementation.
	Description() string
	// NewQueue creates the policy-side state for one device queue.
	NewQueue(*QueueOptions) (PolicyQueue, error)
}

// PolicyQueue is the per-device-queue state of a policy: the pending
// request set and the dispatch order decision logic.
type PolicyQueue interface {
	// Add accepts a request into the pending set.
	Add(*Request)
	// Dispatch picks and removes the next request, handing it to the
	// dispatch sink given at creation. It returns false if nothing is
	// pending.
	Dispatch() bool
	// Merge removes absorbed from the pending set after the framework
	// has coalesced it into surviving.
	Merge(surviving, absorbed *Request)
	// Depth returns the number of pending requests.
	Depth() int
	// HeadPosition returns the device head position the policy assumes.
	HeadPosition() uint64
	// Exit tears the policy queue down. The pending set must be empty.
	Exit()
}

// QueueOptions carries the framework-side sinks a policy queue feeds.
type QueueOptions struct {
	// Dispatch is invoked with every dispatched request, synchronously
	// from PolicyQueue.Dispatch.
	Dispatch func(*Request)
	// Event is invoked with every diagnostic event, if non-nil.
	Event func(*Event)
}

// EventKind is the kind of a queue diagnostic event.
type EventKind string

const (
	// EventAdd records acceptance of a request.
	EventAdd EventKind = "add"
	// EventDispatch records a dispatched request; its location is the
	// head position after the dispatch.
	EventDispatch EventKind = "dispatch"
)

// Event is the diagnostic record emitted on the queue's event channel
// for every accepted and dispatched request.
type Event struct {
	Kind   EventKind `json:"event"`
	Sector uint64    `json:"location"`
}

// String returns a string representation of the event.
func (e *Event) String() string {
	return fmt.Sprintf("%s %d", e.Kind, e.Sector)
}

var (
	log = logger.Get("elevator")

	registry = struct {
		sync.RWMutex
		policies map[string]Policy
	}{
		policies: make(map[string]Policy),
	}
)

// Register makes the given policy available for device queues to
// attach to. Registering two policies under one name is an error.
func Register(p Policy) error {
	registry.Lock()
	defer registry.Unlock()

	name := p.Name()
	if _, ok := registry.policies[name]; ok {
		return fmt.Errorf("%w: %q", ErrPolicyExists, name)
	}

	registry.policies[name] = p
	log.Info("registered policy %q (%s)", name, p.Description())

	return nil
}

// Unregister removes the policy registered under the given name.
// Queues already attached to the policy are unaffected.
func Unregister(name string) bool {
	registry.Lock()
	defer registry.Unlock()

	if _, ok := registry.policies[name]; !ok {
		return false
	}

	delete(registry.policies, name)
	log.Info("unregistered policy %q", name)

	return true
}

// Lookup returns the policy registered under the given name.
func Lookup(name string) (Policy, bool) {
	registry.RLock()
	defer registry.RUnlock()

	p, ok := registry.policies[name]
	return p, ok
}

// Policies returns the names of all registered policies.
func Policies() []string {
	registry.RLock()
	defer registry.RUnlock()

	names := make([]string, 0, len(registry.policies))
	for name := range registry.policies {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// CloseQueues closes the given queues, collecting all failures.
func CloseQueues(queues ...*Queue) error {
	var errs *multierror.Error
	for _, q := range queues {
		if err := q.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
