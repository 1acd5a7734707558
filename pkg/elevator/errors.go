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

import "fmt"

var (
	ErrPolicyExists   = fmt.Errorf("elevator: policy already registered")
	ErrUnknownPolicy  = fmt.Errorf("elevator: unknown policy")
	ErrFailedAttach   = fmt.Errorf("elevator: failed to attach policy")
	ErrInvalidRequest = fmt.Errorf("elevator: invalid request")
	ErrQueueBusy      = fmt.Errorf("elevator: pending requests in queue")
	ErrQueueClosed    = fmt.Errorf("elevator: queue closed")
)
