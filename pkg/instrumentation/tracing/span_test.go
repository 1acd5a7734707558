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

package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/pkg/errors"
)

// withSpanRecorder points the package tracer at an in-memory span
// recorder for the duration of a test.
func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	trc.tracer = provider.Tracer("tracing-test")
	t.Cleanup(func() { trc.tracer = nil })

	return recorder
}

func TestStartSpanInactive(t *testing.T) {
	ctx := context.Background()

	sctx, span := StartSpan(ctx, "inactive")
	require.Equal(t, ctx, sctx)
	require.Nil(t, span)

	// all span operations are no-ops without an active tracer
	require.NotPanics(t, func() {
		span.SetAttributes(Attribute("sector", uint64(10)))
		span.SetStatus(nil)
		span.End()
	})
}

func TestStartSpanRecords(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := StartSpan(context.Background(), "Queue.Submit")
	require.NotNil(t, span)
	span.SetAttributes(
		Attribute("queue", "vda"),
		Attribute("sector", uint64(100)),
	)
	span.SetStatus(nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, "Queue.Submit", ended[0].Name())
	require.Contains(t, ended[0].Attributes(), attribute.String("queue", "vda"))
	require.Contains(t, ended[0].Attributes(), attribute.Int64("sector", 100))
	require.Equal(t, codes.Ok, ended[0].Status().Code)
}

func TestSpanErrorStatus(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := StartSpan(context.Background(), "Queue.Submit")
	span.SetStatus(errors.New("invalid request"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, codes.Error, ended[0].Status().Code)
	require.Equal(t, "invalid request", ended[0].Status().Description)
}

func TestAttribute(t *testing.T) {
	require.Equal(t, attribute.Bool("b", true), Attribute("b", true))
	require.Equal(t, attribute.Int("i", 5), Attribute("i", 5))
	require.Equal(t, attribute.Int64("u", 5), Attribute("u", uint64(5)))
	require.Equal(t, attribute.Float64("f", 0.5), Attribute("f", 0.5))
	require.Equal(t, attribute.String("s", "v"), Attribute("s", "v"))
	require.Equal(t, attribute.StringSlice("l", []string{"a"}), Attribute("l", []string{"a"}))
}
