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

// Package metrics implements a registry for named prometheus
// collectors. Collectors register under a group/name pair and can be
// enabled or disabled by glob patterns.
package metrics

import (
	"fmt"
	"net/http"
	"path"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	model "github.com/prometheus/client_model/go"

	logger "github.com/blkdev/elevator/pkg/log"
)

var log = logger.Get("metrics")

// Collector is a registered prometheus.Collector.
type Collector struct {
	collector prometheus.Collector
	name      string
	group     string
	enabled   bool
}

// CollectorOption is an option for a Collector.
type CollectorOption func(*Collector)

// DefaultGroup is the group collectors register in by default.
const DefaultGroup = "default"

// WithGroup is an option to register a collector in the given group.
func WithGroup(group string) CollectorOption {
	return func(c *Collector) {
		c.group = group
	}
}

// registry is our set of registered collectors.
var registry = struct {
	sync.Mutex
	collectors map[string]*Collector
	enabled    []string
	prom       *prometheus.Registry
}{
	collectors: make(map[string]*Collector),
	enabled:    []string{"*"},
	prom:       prometheus.NewRegistry(),
}

// Name returns the full group-qualified name of the collector.
func (c *Collector) Name() string {
	return c.group + "/" + c.name
}

// matches returns true if the collector matches the given glob.
func (c *Collector) matches(glob string) bool {
	for _, s := range []string{c.group, c.name, c.Name()} {
		ok, err := path.Match(glob, s)
		if err != nil {
			log.Warn("invalid glob pattern %q: %v", glob, err)
			return false
		}
		if ok {
			return true
		}
	}
	return false
}

// Register adds a named collector to the registry. It is hooked up for
// collection right away if it matches the enabled patterns.
func Register(name string, collector prometheus.Collector, options ...CollectorOption) error {
	registry.Lock()
	defer registry.Unlock()

	c := &Collector{
		name:      name,
		group:     DefaultGroup,
		collector: collector,
	}
	for _, o := range options {
		o(c)
	}

	if _, ok := registry.collectors[c.Name()]; ok {
		return fmt.Errorf("metrics: collector %q already registered", c.Name())
	}
	registry.collectors[c.Name()] = c

	for _, glob := range registry.enabled {
		if c.matches(glob) {
			if err := registry.prom.Register(c.collector); err != nil {
				delete(registry.collectors, c.Name())
				return fmt.Errorf("metrics: failed to register %q: %w", c.Name(), err)
			}
			c.enabled = true
			break
		}
	}

	log.Info("registered collector %q (%s)", c.Name(),
		map[bool]string{true: "enabled", false: "disabled"}[c.enabled])

	return nil
}

// Unregister removes a collector registered under the given full name.
func Unregister(name string) bool {
	registry.Lock()
	defer registry.Unlock()

	c, ok := registry.collectors[name]
	if !ok {
		return false
	}

	if c.enabled {
		registry.prom.Unregister(c.collector)
	}
	delete(registry.collectors, name)

	return true
}

// Configure sets the glob patterns for enabled collectors and
// reconciles all registered ones against them.
func Configure(enabled []string) error {
	registry.Lock()
	defer registry.Unlock()

	registry.enabled = enabled

	for _, c := range registry.collectors {
		want := false
		for _, glob := range enabled {
			if c.matches(glob) {
				want = true
				break
			}
		}
		switch {
		case want && !c.enabled:
			if err := registry.prom.Register(c.collector); err != nil {
				return fmt.Errorf("metrics: failed to enable %q: %w", c.Name(), err)
			}
			c.enabled = true
		case !want && c.enabled:
			registry.prom.Unregister(c.collector)
			c.enabled = false
		}
	}

	return nil
}

// Gather collects metrics from all enabled collectors.
func Gather() ([]*model.MetricFamily, error) {
	return registry.prom.Gather()
}

// HTTPHandler returns an HTTP handler serving the registry in
// prometheus exposition format.
func HTTPHandler() http.Handler {
	return promhttp.HandlerFor(registry.prom, promhttp.HandlerOpts{})
}
