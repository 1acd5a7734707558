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

// Package elevator provides a block-I/O request scheduling framework.
//
// Scheduling policies register themselves by name. A device queue is
// bound to a policy with NewQueue; the resulting Queue owns the
// submission path, the dispatch path, adjacent-request coalescing, and
// per-queue diagnostics. The policy only decides dispatch order; the
// Queue decides when requests can be merged and hands dispatched
// requests to the caller's device sink.
package elevator
