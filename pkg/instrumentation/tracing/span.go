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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type (
	// KeyValue is an alias for the opentelemetry attribute KeyValue.
	KeyValue = attribute.KeyValue
	// SpanStartOption is an alias for the opentelemetry trace SpanStartOption.
	SpanStartOption = trace.SpanStartOption
)

// Span is a wrapper around an opentelemetry span. A zero or nil Span
// is valid and all of its methods are no-ops.
type Span struct {
	span trace.Span
}

// StartSpan starts a new span with the given name and options. It is
// a no-op if tracing is not active.
func StartSpan(ctx context.Context, name string, options ...SpanStartOption) (context.Context, *Span) {
	if trc.tracer == nil {
		return ctx, nil
	}

	s := &Span{}
	ctx, s.span = trc.tracer.Start(ctx, name, options...)

	return ctx, s
}

// SetAttributes sets attributes on the span.
func (s *Span) SetAttributes(attributes ...KeyValue) {
	if s == nil || s.span == nil {
		return
	}
	s.span.SetAttributes(attributes...)
}

// SetStatus sets the status of the span according to the given error.
func (s *Span) SetStatus(err error) {
	if s == nil || s.span == nil {
		return
	}
	if err != nil {
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
}

// End ends the span.
func (s *Span) End(options ...trace.SpanEndOption) {
	if s == nil || s.span == nil {
		return
	}
	s.span.End(options...)
}

// Attribute creates an attribute KeyValue for the given value.
func Attribute(name string, value interface{}) KeyValue {
	switch v := value.(type) {
	case bool:
		return attribute.Bool(name, v)
	case int:
		return attribute.Int(name, v)
	case int64:
		return attribute.Int64(name, v)
	case uint64:
		return attribute.Int64(name, int64(v))
	case float64:
		return attribute.Float64(name, v)
	case string:
		return attribute.String(name, v)
	case []string:
		return attribute.StringSlice(name, v)
	default:
		return attribute.String(name, "<unsupported attribute type>")
	}
}
