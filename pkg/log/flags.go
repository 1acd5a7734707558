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

package log

import (
	"os"
	"strings"
)

// debugEnvVar is the environment variable used to seed debugging flags.
const debugEnvVar = "LOGGER_DEBUG"

// parseSources splits a comma-separated source list, mapping the "all"
// alias to the wildcard source.
func parseSources(value string) []string {
	var sources []string
	for _, src := range strings.Split(value, ",") {
		if src = strings.TrimSpace(src); src == "" {
			continue
		}
		if src == "all" {
			src = "*"
		}
		sources = append(sources, src)
	}
	return sources
}

// Seed debug flags from the environment.
func init() {
	if value, ok := os.LookupEnv(debugEnvVar); ok {
		if sources := parseSources(value); len(sources) > 0 {
			EnableDebug(sources...)
			Default().Info("seeded debug flags ($%s): %s",
				debugEnvVar, strings.Join(sources, ","))
		}
	}
}
