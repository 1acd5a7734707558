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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	l := Get("get-test")
	require.Equal(t, "get-test", l.Source())
	require.Equal(t, l, Get("get-test"))
	require.Equal(t, l, NewLogger("get-test"))
	require.NotEqual(t, l, Default())
}

func TestEnableDebug(t *testing.T) {
	l := Get("debug-test")
	require.False(t, l.DebugEnabled())

	require.False(t, l.EnableDebug(true))
	require.True(t, l.DebugEnabled())
	require.True(t, l.EnableDebug(false))
	require.False(t, l.DebugEnabled())
}

func TestDebugWildcard(t *testing.T) {
	l := Get("wildcard-test")
	defer DisableDebug("all")

	EnableDebug("all")
	require.True(t, l.DebugEnabled())

	// an explicit per-source setting wins over the wildcard
	l.EnableDebug(false)
	require.False(t, l.DebugEnabled())
}

func TestParseSources(t *testing.T) {
	require.Equal(t, []string{"*"}, parseSources("all"))
	require.Equal(t, []string{"a", "b"}, parseSources("a,b"))
	require.Equal(t, []string{"a", "b"}, parseSources(" a, b "))
	require.Empty(t, parseSources(""))
}
