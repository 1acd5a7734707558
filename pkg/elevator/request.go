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
)

// Op is the direction of a block-I/O request.
type Op int

const (
	// OpRead reads sectors from the device.
	OpRead Op = iota
	// OpWrite writes sectors to the device.
	OpWrite
)

// String returns the single-letter direction tag of the operation.
func (o Op) String() string {
	if o == OpWrite {
		return "W"
	}
	return "R"
}

// Request is a block-I/O request: a contiguous range of sectors to be
// read or written. Requests are allocated by the caller, scheduled by
// a policy, and handed back through the queue's dispatch sink once
// chosen. A request queued on contiguous sectors with another may be
// coalesced with it; the absorbed request never reaches the device.
type Request struct {
	op     Op
	sector uint64
	count  uint64
}

// NewRequest creates a request for count sectors starting at sector.
func NewRequest(op Op, sector, count uint64) *Request {
	return &Request{
		op:     op,
		sector: sector,
		count:  count,
	}
}

// Op returns the direction of the request.
func (r *Request) Op() Op {
	return r.op
}

// Sector returns the first target sector of the request.
func (r *Request) Sector() uint64 {
	return r.sector
}

// Count returns the number of sectors the request covers.
func (r *Request) Count() uint64 {
	return r.count
}

// End returns the first sector past the request.
func (r *Request) End() uint64 {
	return r.sector + r.count
}

// Precedes returns true if o starts exactly where r ends, i.e. the two
// requests cover contiguous sector ranges in queue order.
func (r *Request) Precedes(o *Request) bool {
	return r.op == o.op && r.End() == o.Sector()
}

// String returns a string representation of the request.
func (r *Request) String() string {
	return fmt.Sprintf("%s<%d+%d>", r.op, r.sector, r.count)
}

// extend grows the request by count sectors. Only the owning queue
// extends requests, while coalescing under its lock.
func (r *Request) extend(count uint64) {
	r.count += count
}
