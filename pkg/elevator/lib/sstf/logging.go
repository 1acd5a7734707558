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
	logger "github.com/blkdev/elevator/pkg/log"
)

var log = logger.Get("libsstf")

// DumpState logs the pending set with per-request seek distances.
func (s *Scheduler) DumpState(prefix string) {
	if !log.DebugEnabled() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log.Debug("%shead position %d", prefix, s.head)

	if len(s.pending) == 0 {
		log.Debug("%s  no pending requests", prefix)
		return
	}

	for i, r := range s.pending {
		log.Debug("%s  #%d: sector %d, distance %d",
			prefix, i, r.Sector(), distance(r.Sector(), s.head))
	}
}
