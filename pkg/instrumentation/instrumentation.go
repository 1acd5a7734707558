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

// Package instrumentation ties together the observability bits of a
// process: an HTTP server exposing Prometheus metrics and health
// checks, and an OpenTelemetry trace exporter.
package instrumentation

import (
	"sync"

	"github.com/blkdev/elevator/pkg/healthz"
	xhttp "github.com/blkdev/elevator/pkg/http"
	"github.com/blkdev/elevator/pkg/instrumentation/tracing"
	logger "github.com/blkdev/elevator/pkg/log"
	"github.com/blkdev/elevator/pkg/metrics"
)

// Config holds the configuration for instrumentation.
type Config struct {
	// HTTPEndpoint is the address the HTTP server listens on. An
	// empty endpoint disables the server.
	HTTPEndpoint string `json:"httpEndpoint,omitempty"`
	// TracingCollector is the OTLP trace collector endpoint.
	TracingCollector string `json:"tracingCollector,omitempty"`
	// SamplingRatePerMillion is the number of samples collected
	// per million spans, 0 disables trace sampling.
	SamplingRatePerMillion int `json:"samplingRatePerMillion,omitempty"`
	// MetricsNamespaces lists the enabled metrics collector
	// namespaces, glob patterns are allowed.
	MetricsNamespaces []string `json:"metricsNamespaces,omitempty"`
}

var (
	log = logger.Get("instrumentation")
	mu  sync.Mutex
	srv = xhttp.NewServer()
	cfg *Config
)

// Start sets up instrumentation according to the given configuration.
func Start(service string, c *Config) error {
	mu.Lock()
	defer mu.Unlock()

	if c == nil {
		c = &Config{}
	}
	cfg = c

	namespaces := c.MetricsNamespaces
	if len(namespaces) == 0 {
		namespaces = []string{"*"}
	}
	if err := metrics.Configure(namespaces); err != nil {
		return err
	}

	if err := srv.Start(c.HTTPEndpoint); err != nil {
		return err
	}

	if c.HTTPEndpoint != "" {
		mux := srv.GetMux()
		mux.Handle("/metrics", metrics.HTTPHandler())
		healthz.Setup(mux)
	}

	err := tracing.Start(
		tracing.WithServiceName(service),
		tracing.WithCollectorEndpoint(c.TracingCollector),
		tracing.WithSamplingRatio(float64(c.SamplingRatePerMillion)/1000000.0),
	)
	if err != nil {
		srv.Stop()
		return err
	}

	log.Info("instrumentation up and running")

	return nil
}

// Stop shuts down instrumentation.
func Stop() {
	mu.Lock()
	defer mu.Unlock()

	tracing.Stop()
	srv.Stop()
	cfg = nil
}

// Restart restarts instrumentation with the given configuration.
func Restart(service string, c *Config) error {
	Stop()
	return Start(service, c)
}

// HTTPServer returns the instrumentation HTTP server.
func HTTPServer() *xhttp.Server {
	return srv
}
