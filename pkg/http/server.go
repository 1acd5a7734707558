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

// Package http provides a shared HTTP server and request multiplexer
// for the diagnostic endpoints of a process (metrics, healthz, and the
// like). Handlers can be registered before or after the server is
// started, and the server can be moved to another endpoint at runtime.
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	logger "github.com/blkdev/elevator/pkg/log"
)

var log = logger.Get("http")

// shutdownTimeout is the timeout for draining active connections.
const shutdownTimeout = 3 * time.Second

// ServeMux is the request multiplexer handlers register with.
type ServeMux = http.ServeMux

// Server is an HTTP server for diagnostic endpoints.
type Server struct {
	sync.Mutex
	mux      *ServeMux
	server   *http.Server
	listener net.Listener
	endpoint string
}

// NewServer creates a new, unstarted server.
func NewServer() *Server {
	return &Server{
		mux: http.NewServeMux(),
	}
}

// GetMux returns the request multiplexer of the server.
func (s *Server) GetMux() *ServeMux {
	return s.mux
}

// Start starts the server on the given endpoint. An empty endpoint
// leaves the server disabled.
func (s *Server) Start(endpoint string) error {
	s.Lock()
	defer s.Unlock()

	if endpoint == "" {
		log.Info("HTTP server disabled, no endpoint set")
		return nil
	}

	return s.start(endpoint)
}

// Stop stops the server, if it is running.
func (s *Server) Stop() {
	s.Lock()
	defer s.Unlock()
	s.stop()
}

// Reconfigure moves the server to the given endpoint, stopping or
// restarting it as necessary.
func (s *Server) Reconfigure(endpoint string) error {
	s.Lock()
	defer s.Unlock()

	if s.endpoint == endpoint {
		return nil
	}

	s.stop()

	if endpoint == "" {
		return nil
	}

	return s.start(endpoint)
}

func (s *Server) start(endpoint string) error {
	ln, err := net.Listen("tcp", endpoint)
	if err != nil {
		return httpError("failed to listen on %q: %w", endpoint, err)
	}

	srv := &http.Server{Handler: s.mux}
	s.server = srv
	s.listener = ln
	s.endpoint = endpoint

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server exited: %v", err)
		}
	}()

	log.Info("HTTP server listening on %q", endpoint)

	return nil
}

func (s *Server) stop() {
	if s.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error("failed to shut down HTTP server: %v", err)
		s.server.Close()
	}

	s.server = nil
	s.listener = nil
	s.endpoint = ""
}

// httpError returns a package-specific formatted error.
func httpError(format string, args ...interface{}) error {
	return fmt.Errorf("http: "+format, args...)
}
