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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/require"
)

func newCounter(name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: "test counter",
	})
}

func gathered(t *testing.T) map[string]bool {
	t.Helper()
	families, err := Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestRegister(t *testing.T) {
	c := newCounter("test_register_total")
	require.NoError(t, Register("register-test", c))
	defer Unregister(DefaultGroup + "/register-test")

	require.Error(t, Register("register-test", c))

	c.Inc()
	require.True(t, gathered(t)["test_register_total"])
}

func TestUnregister(t *testing.T) {
	c := newCounter("test_unregister_total")
	require.NoError(t, Register("unregister-test", c, WithGroup("io")))

	require.False(t, Unregister("io/no-such-collector"))
	require.True(t, Unregister("io/unregister-test"))
	require.False(t, gathered(t)["test_unregister_total"])
}

func TestHTTPHandler(t *testing.T) {
	c := newCounter("test_http_handler_total")
	require.NoError(t, Register("http-test", c))
	defer Unregister(DefaultGroup + "/http-test")

	c.Inc()

	w := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the handler must serve parseable exposition format
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	require.NoError(t, err)
	require.Contains(t, families, "test_http_handler_total")

	f := families["test_http_handler_total"]
	require.Len(t, f.GetMetric(), 1)
	require.Equal(t, 1.0, f.GetMetric()[0].GetCounter().GetValue())
}

func TestConfigure(t *testing.T) {
	c := newCounter("test_configure_total")
	require.NoError(t, Register("configure-test", c, WithGroup("io")))
	defer func() {
		require.NoError(t, Configure([]string{"*"}))
		Unregister("io/configure-test")
	}()

	c.Inc()
	require.True(t, gathered(t)["test_configure_total"])

	// disabled by group
	require.NoError(t, Configure([]string{"default"}))
	require.False(t, gathered(t)["test_configure_total"])

	// re-enabled by full name glob
	require.NoError(t, Configure([]string{"io/configure-*"}))
	require.True(t, gathered(t)["test_configure_total"])
}
