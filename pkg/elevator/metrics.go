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

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blkdev/elevator/pkg/metrics"
)

// metricsGroup is the collector group all queues register in.
const metricsGroup = "elevator"

// queueCollector exposes one queue's counters to prometheus. Each
// collector carries its own descriptors, with the queue and policy
// names as constant labels, so any number of queues can share the
// metrics registry.
type queueCollector struct {
	queue *Queue

	depth      *prometheus.Desc
	head       *prometheus.Desc
	submitted  *prometheus.Desc
	dispatched *prometheus.Desc
	merged     *prometheus.Desc
	extended   *prometheus.Desc
	seek       *prometheus.Desc
	dropped    *prometheus.Desc
}

func newQueueCollector(q *Queue) *queueCollector {
	labels := prometheus.Labels{
		"queue":  q.Name(),
		"policy": q.Policy(),
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, nil, labels)
	}

	return &queueCollector{
		queue: q,
		depth: desc("elevator_queue_depth",
			"Number of pending requests in the queue."),
		head: desc("elevator_head_position",
			"Assumed device head position after the last dispatch."),
		submitted: desc("elevator_requests_submitted_total",
			"Requests accepted by the submission path."),
		dispatched: desc("elevator_requests_dispatched_total",
			"Requests handed to the device sink."),
		merged: desc("elevator_requests_merged_total",
			"Queued requests coalesced into a queued neighbor."),
		extended: desc("elevator_requests_extended_total",
			"Submissions absorbed into a queued request."),
		seek: desc("elevator_seek_distance_sectors_total",
			"Cumulative head movement in sectors."),
		dropped: desc("elevator_events_dropped_total",
			"Diagnostic events lost to a full event channel."),
	}
}

// registerCollector hooks the queue up for metrics collection.
func (q *Queue) registerCollector() error {
	c := newQueueCollector(q)
	if err := metrics.Register(q.name, c, metrics.WithGroup(metricsGroup)); err != nil {
		return err
	}
	q.collector = c
	return nil
}

// unregisterCollector detaches the queue from metrics collection.
func (q *Queue) unregisterCollector() {
	if q.collector != nil {
		metrics.Unregister(metricsGroup + "/" + q.name)
		q.collector = nil
	}
}

// Describe implements the prometheus.Collector interface.
func (c *queueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.depth
	ch <- c.head
	ch <- c.submitted
	ch <- c.dispatched
	ch <- c.merged
	ch <- c.extended
	ch <- c.seek
	ch <- c.dropped
}

// Collect implements the prometheus.Collector interface.
func (c *queueCollector) Collect(ch chan<- prometheus.Metric) {
	var (
		q     = c.queue
		stats = q.Stats()
		depth = q.Depth()
		head  = q.HeadPosition()
	)

	emit := func(d *prometheus.Desc, t prometheus.ValueType, v float64) {
		m, err := prometheus.NewConstMetric(d, t, v)
		if err != nil {
			log.Error("queue %q: failed to collect metric: %v", q.Name(), err)
			return
		}
		ch <- m
	}

	emit(c.depth, prometheus.GaugeValue, float64(depth))
	emit(c.head, prometheus.GaugeValue, float64(head))
	emit(c.submitted, prometheus.CounterValue, float64(stats.Submitted))
	emit(c.dispatched, prometheus.CounterValue, float64(stats.Dispatched))
	emit(c.merged, prometheus.CounterValue, float64(stats.Merged))
	emit(c.extended, prometheus.CounterValue, float64(stats.Extended))
	emit(c.seek, prometheus.CounterValue, float64(stats.SeekDistance))
	emit(c.dropped, prometheus.CounterValue, float64(stats.EventsDropped))
}
