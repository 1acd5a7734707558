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

import "fmt"

var (
	ErrFailedOption   = fmt.Errorf("libsstf: failed to apply option")
	ErrNoDispatchSink = fmt.Errorf("libsstf: no dispatch sink")
	ErrNilRequest     = fmt.Errorf("libsstf: nil request")
	ErrNotQueued      = fmt.Errorf("libsstf: request not queued")
	ErrQueueNotEmpty  = fmt.Errorf("libsstf: pending requests at teardown")
	ErrClosed         = fmt.Errorf("libsstf: scheduler already closed")
)
