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

// Package libsstf implements Shortest-Seek-Time-First scheduling of
// block-storage requests.
//
// A Scheduler owns a set of pending, caller-allocated request handles
// and the last known head position of the device it schedules for.
// Every dispatch rescans the pending set and picks the request whose
// target sector is closest to the head, measured as absolute sector
// distance. Among equidistant candidates the earliest-queued request
// wins, so equidistant requests drain first-come-first-served. The
// head position then moves to the dispatched sector.
//
// This is the unadorned greedy-nearest policy: it minimizes cumulative
// seek distance and makes no attempt to bound how long a far-away
// request can starve.
//
// All scheduler operations are serialized internally, so a single
// Scheduler may be driven concurrently from a submission path and a
// device-ready path. Separate Scheduler instances are fully
// independent. No operation blocks; Dispatch on an empty queue simply
// reports that there was nothing to do.
package libsstf
