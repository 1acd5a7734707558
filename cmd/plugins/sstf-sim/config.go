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

package main

import (
	"flag"
	"math"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/blkdev/elevator/pkg/instrumentation"
)

// config is the simulated workload configuration. Flags override
// values loaded from an optional YAML config file.
type config struct {
	// Queue is the name of the simulated device queue.
	Queue string `json:"queue"`
	// Policy is the scheduling policy to attach.
	Policy string `json:"policy"`
	// Requests is the number of requests to submit.
	Requests int `json:"requests"`
	// Sectors is the size of the simulated sector space.
	Sectors uint64 `json:"sectors"`
	// MaxCount is the maximum sector count per request.
	MaxCount uint64 `json:"maxCount"`
	// Seed seeds the workload generator for reproducible runs.
	Seed int64 `json:"seed"`
	// Rate limits submission to this many requests per second,
	// 0 disables rate limiting.
	Rate float64 `json:"rate"`
	// DispatchEvery dispatches one request after every N submissions.
	DispatchEvery int `json:"dispatchEvery"`
	// Instrumentation configures metrics, health and tracing.
	Instrumentation instrumentation.Config `json:"instrumentation,omitempty"`
}

func defaultConfig() *config {
	return &config{
		Queue:         "sim0",
		Policy:        "sstf",
		Requests:      1024,
		Sectors:       1 << 20,
		MaxCount:      256,
		Seed:          1,
		DispatchEvery: 2,
	}
}

// parseConfig builds the effective configuration from an optional
// YAML file and command line flags, flags taking precedence.
func parseConfig(args []string) (*config, error) {
	cfg := defaultConfig()

	flags := flag.NewFlagSet("sstf-sim", flag.ExitOnError)
	file := flags.String("config", "", "YAML configuration file to load")
	flags.StringVar(&cfg.Queue, "queue", cfg.Queue, "name of the simulated queue")
	flags.StringVar(&cfg.Policy, "policy", cfg.Policy, "scheduling policy to attach")
	flags.IntVar(&cfg.Requests, "requests", cfg.Requests, "number of requests to submit")
	flags.Uint64Var(&cfg.Sectors, "sectors", cfg.Sectors, "size of the simulated sector space")
	flags.Uint64Var(&cfg.MaxCount, "max-count", cfg.MaxCount, "maximum sector count per request")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "workload generator seed")
	flags.Float64Var(&cfg.Rate, "rate", cfg.Rate, "submission rate limit in requests per second, 0 for unlimited")
	flags.IntVar(&cfg.DispatchEvery, "dispatch-every", cfg.DispatchEvery, "dispatch one request after every N submissions")
	flags.StringVar(&cfg.Instrumentation.HTTPEndpoint, "http-endpoint",
		cfg.Instrumentation.HTTPEndpoint, "address to serve /metrics and /healthz on, empty to disable")
	flags.StringVar(&cfg.Instrumentation.TracingCollector, "tracing-collector",
		cfg.Instrumentation.TracingCollector, "OTLP trace collector endpoint")
	flags.IntVar(&cfg.Instrumentation.SamplingRatePerMillion, "sampling-rate-per-million",
		cfg.Instrumentation.SamplingRatePerMillion, "trace samples to collect per million spans")

	// Parse once to pick up -config, then again after loading the
	// file so command line flags win over file values.
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %q", *file)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %q", *file)
		}
		if err := flags.Parse(args); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.validate()
}

func (c *config) validate() error {
	var errs *multierror.Error

	if c.Queue == "" {
		errs = multierror.Append(errs, errors.New("empty queue name"))
	}
	if c.Policy == "" {
		errs = multierror.Append(errs, errors.New("empty policy name"))
	}
	if c.Requests <= 0 {
		errs = multierror.Append(errs, errors.Errorf("invalid request count %d", c.Requests))
	}
	// the workload generator draws sectors and counts as int63
	if c.Sectors == 0 || c.Sectors > math.MaxInt64 {
		errs = multierror.Append(errs, errors.Errorf("invalid sector space size %d", c.Sectors))
	}
	if c.MaxCount == 0 || c.MaxCount > c.Sectors {
		errs = multierror.Append(errs,
			errors.Errorf("invalid max. request count %d for %d sectors", c.MaxCount, c.Sectors))
	}
	if c.Rate < 0 {
		errs = multierror.Append(errs, errors.Errorf("invalid submission rate %f", c.Rate))
	}
	if c.DispatchEvery < 0 {
		errs = multierror.Append(errs, errors.Errorf("invalid dispatch interval %d", c.DispatchEvery))
	}

	return errs.ErrorOrNil()
}
