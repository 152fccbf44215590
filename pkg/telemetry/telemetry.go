// Package telemetry carries the best-effort events emitted while rules run. Events become
// OpenTelemetry spans and metrics; emitting never fails and never blocks the caller's
// result.
package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/walteh/liquidtags"

// Event describes one rule match or completion batch.
type Event struct {
	// Rule is the rule or tag name.
	Rule string
	// Key is the attribute key completion was computed for, if any.
	Key      string
	Success  bool
	Results  int
	Start    time.Time
	Duration time.Duration
}

// Sink receives events.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}

// Emit hands ev to sink and swallows anything the sink throws.
func Emit(ctx context.Context, sink Sink, ev Event) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Debug().Interface("panic", r).Str("rule", ev.Rule).Msg("telemetry sink panicked")
		}
	}()
	sink.Emit(ctx, ev)
}

// OtelSink records every event as a span named after the rule, plus a match counter and a
// duration histogram.
type OtelSink struct {
	tracer   trace.Tracer
	matches  metric.Int64Counter
	duration metric.Float64Histogram
}

func NewOtelSink(tp trace.TracerProvider, mp metric.MeterProvider) *OtelSink {
	s := &OtelSink{tracer: tp.Tracer(instrumentationName)}

	meter := mp.Meter(instrumentationName)
	if c, err := meter.Int64Counter(
		"liquidtags_rule_matches_total",
		metric.WithDescription("Rule matches by rule and outcome"),
	); err == nil {
		s.matches = c
	}
	if h, err := meter.Float64Histogram(
		"liquidtags_rule_duration_ms",
		metric.WithDescription("Time spent applying a matched rule"),
		metric.WithUnit("ms"),
	); err == nil {
		s.duration = h
	}
	return s
}

func (s *OtelSink) Emit(ctx context.Context, ev Event) {
	attrs := []attribute.KeyValue{
		attribute.String("liquidtags.rule", ev.Rule),
		attribute.String("liquidtags.key", ev.Key),
		attribute.Bool("liquidtags.success", ev.Success),
		attribute.Int("liquidtags.results", ev.Results),
		attribute.Float64("liquidtags.timing_ms", milliseconds(ev.Duration)),
	}

	start := ev.Start
	if start.IsZero() {
		start = time.Now().Add(-ev.Duration)
	}
	_, span := s.tracer.Start(ctx, "liquidtags.rule."+ev.Rule,
		trace.WithTimestamp(start),
		trace.WithAttributes(attrs...),
	)
	span.End(trace.WithTimestamp(start.Add(ev.Duration)))

	set := metric.WithAttributes(
		attribute.String("rule", ev.Rule),
		attribute.Bool("success", ev.Success),
	)
	if s.matches != nil {
		s.matches.Add(ctx, 1, set)
	}
	if s.duration != nil {
		s.duration.Record(ctx, milliseconds(ev.Duration), set)
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
