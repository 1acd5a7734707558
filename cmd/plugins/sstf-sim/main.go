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

// sstf-sim drives an elevator queue with a reproducible pseudo-random
// workload and reports seek statistics for the attached policy.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/blkdev/elevator/pkg/elevator"
	_ "github.com/blkdev/elevator/pkg/elevator/policy/sstf"
	"github.com/blkdev/elevator/pkg/healthz"
	"github.com/blkdev/elevator/pkg/instrumentation"
	logger "github.com/blkdev/elevator/pkg/log"
)

var log = logger.Get("sstf-sim")

func errInvalidState(format string, args ...interface{}) error {
	return fmt.Errorf("sstf-sim: "+format, args...)
}

type simulator struct {
	cfg     *config
	queue   *elevator.Queue
	rnd     *rand.Rand
	limiter *rate.Limiter
	events  uint64
}

func newSimulator(cfg *config) (*simulator, error) {
	s := &simulator{
		cfg: cfg,
		rnd: rand.New(rand.NewSource(cfg.Seed)),
	}

	if cfg.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	q, err := elevator.NewQueue(cfg.Queue, cfg.Policy,
		elevator.WithDispatchHandler(s.dispatched),
		elevator.WithEventListener(s.event),
	)
	if err != nil {
		return nil, err
	}
	s.queue = q

	healthz.RegisterHealthChecker("sstf-sim", s.healthCheck)

	return s, nil
}

func (s *simulator) dispatched(r *elevator.Request) {
	log.Debug("dispatched %s, head now at %d", r, s.queue.HeadPosition())
}

func (s *simulator) event(e *elevator.Event) {
	atomic.AddUint64(&s.events, 1)
	log.Debug("event %s", e)
}

// healthCheck reports degraded operation if the queue has had to
// drop diagnostic events.
func (s *simulator) healthCheck() (healthz.Status, error) {
	if dropped := s.queue.Stats().EventsDropped; dropped > 0 {
		return healthz.Degraded, errInvalidState("%d diagnostic events dropped", dropped)
	}
	return healthz.Healthy, nil
}

// nextRequest generates the next workload request. Reads and writes
// are evenly likely, sectors are uniform over the sector space.
func (s *simulator) nextRequest() *elevator.Request {
	op := elevator.OpRead
	if s.rnd.Intn(2) == 1 {
		op = elevator.OpWrite
	}
	count := uint64(s.rnd.Int63n(int64(s.cfg.MaxCount))) + 1
	sector := uint64(0)
	if span := int64(s.cfg.Sectors - count); span > 0 {
		sector = uint64(s.rnd.Int63n(span))
	}

	return elevator.NewRequest(op, sector, count)
}

func (s *simulator) run(ctx context.Context) error {
	for i := 0; i < s.cfg.Requests; i++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := s.queue.Submit(s.nextRequest()); err != nil {
			return err
		}
		if s.cfg.DispatchEvery > 0 && (i+1)%s.cfg.DispatchEvery == 0 {
			s.queue.Dispatch()
		}
	}

	// drain, the queue refuses to close with pending requests
	for {
		if _, ok := s.queue.Dispatch(); !ok {
			break
		}
	}

	return s.queue.Close()
}

func (s *simulator) report() {
	stats := s.queue.Stats()

	log.Info("queue %s (%s policy):", s.queue.Name(), s.queue.Policy())
	log.Info("  submitted: %d, queued: %d, dispatched: %d",
		stats.Submitted, stats.Queued, stats.Dispatched)
	log.Info("  back-merged: %d, coalesced: %d", stats.Extended, stats.Merged)
	log.Info("  total seek distance: %d sectors", stats.SeekDistance)
	if stats.Dispatched > 0 {
		log.Info("  mean seek distance: %.1f sectors",
			float64(stats.SeekDistance)/float64(stats.Dispatched))
	}
	log.Info("  diagnostic events: %d seen, %d dropped",
		atomic.LoadUint64(&s.events), stats.EventsDropped)
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		log.Fatal("invalid configuration: %v", err)
	}

	if err := instrumentation.Start("sstf-sim", &cfg.Instrumentation); err != nil {
		log.Fatal("failed to start instrumentation: %v", err)
	}
	defer instrumentation.Stop()

	sim, err := newSimulator(cfg)
	if err != nil {
		log.Fatal("failed to set up simulation: %v", err)
	}

	log.Info("running %d requests over %d sectors, seed %d...",
		cfg.Requests, cfg.Sectors, cfg.Seed)

	if err := sim.run(context.Background()); err != nil {
		log.Fatal("simulation failed: %v", err)
	}

	sim.report()
	logger.Flush()
}
