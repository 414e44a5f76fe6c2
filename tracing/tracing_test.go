package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")
	require.NoError(t, Init("kernelsim", "0.0.1", fname))

	_, span := StartSpan(context.Background(), "test", "INTERNAL")
	span.WithAttributes(map[string]string{"k": "v"})
	EndSpan(span, nil)

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "no data written to trace file")
}

func TestTracer_Start(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := NewProvider("kernelsim", "test", exporter)
	require.NoError(t, err)
	tracer := NewTracer(provider)

	ctx, parent := tracer.Start(context.Background(), "scenario", "")
	_, child := tracer.Start(ctx, "send", "")
	child.WithInt("pid", 3).WithAttributes(map[string]string{"operation": "send"})
	EndSpan(child, errors.New("process not found"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "send", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Int("pid", 3))
	assert.Contains(t, spans[0].Attributes, attribute.String("operation", "send"))
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, codes.Ok, spans[1].Status.Code)

	found, ok := SpanFromContext(ctx)
	assert.True(t, ok)
	assert.NotNil(t, found)
	_, ok = SpanFromContext(context.Background())
	assert.False(t, ok)
}

func TestNilSpan(t *testing.T) {
	var tracer *Tracer
	ctx, span := tracer.Start(context.Background(), "noop", "")
	assert.Nil(t, span)
	span.WithInt("pid", 1)
	EndSpan(span, nil)
	assert.Equal(t, context.Background(), ctx)
}
