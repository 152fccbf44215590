package telemetry_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/walteh/liquidtags/pkg/telemetry"
)

type panickingSink struct{}

func (panickingSink) Emit(context.Context, telemetry.Event) { panic("collector down") }

func TestEmit_SwallowsSinkPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.Emit(context.Background(), panickingSink{}, telemetry.Event{Rule: "include"})
	})
	assert.NotPanics(t, func() {
		telemetry.Emit(context.Background(), nil, telemetry.Event{Rule: "include"})
	})
}

func TestOtelSink_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	sink := telemetry.NewOtelSink(tp, metricnoop.NewMeterProvider())

	start := time.Now()
	telemetry.Emit(context.Background(), sink, telemetry.Event{
		Rule:     "entityform",
		Key:      "name",
		Success:  true,
		Results:  2,
		Start:    start,
		Duration: 3 * time.Millisecond,
	})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "liquidtags.rule.entityform", spans[0].Name())
	assert.Equal(t, 3*time.Millisecond, spans[0].EndTime().Sub(spans[0].StartTime()))
	assert.Contains(t, spans[0].Attributes(), attribute.String("liquidtags.key", "name"))
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("liquidtags.success", true))
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	sink, shutdown, err := telemetry.Init(ctx, telemetry.DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, telemetry.NopSink{}, sink)
	require.NoError(t, shutdown(ctx))

	var buf bytes.Buffer
	cfg := telemetry.DefaultConfig()
	cfg.Exporter = "stdout"
	cfg.Writer = &buf
	sink, shutdown, err = telemetry.Init(ctx, cfg)
	require.NoError(t, err)
	telemetry.Emit(ctx, sink, telemetry.Event{Rule: "include", Success: true, Duration: time.Millisecond})
	require.NoError(t, shutdown(ctx))
	assert.Contains(t, buf.String(), "liquidtags.rule.include")

	cfg.Exporter = "zipkin"
	_, _, err = telemetry.Init(ctx, cfg)
	assert.ErrorIs(t, err, telemetry.ErrUnknownExporter)
}
