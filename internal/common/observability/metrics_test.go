package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"attrition-workers/internal/common/logger"
)

func TestNilObservabilityIsNoOp(t *testing.T) {
	var o *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		o.RecordJobProcessed(ctx, "parse-attrition-insight", "completed")
		o.RecordJobDuration(ctx, "parse-attrition-insight", time.Second, "completed")
		o.RecordBullets(ctx, "drivers", 3)
		o.Shutdown()
	})
}

func TestZeroObservabilityIsNoOp(t *testing.T) {
	o := &Observability{}
	assert.NotPanics(t, func() {
		o.RecordJobProcessed(context.Background(), "build-risk-chart-data", "failed")
		o.Shutdown()
	})
}

func TestNew_RecordsWithoutError(t *testing.T) {
	o := New("observability-test", logger.NewTestLogger(t))
	defer o.Shutdown()

	ctx := context.Background()
	assert.NotPanics(t, func() {
		o.RecordJobProcessed(ctx, "export-insight-report", "completed")
		o.RecordJobDuration(ctx, "export-insight-report", 25*time.Millisecond, "completed")
		o.RecordBullets(ctx, "sentiment", 2)
	})
}

func TestStartJobSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	o := New("span-test", logger.NewTestLogger(t), WithSpanProcessor(recorder))
	defer o.Shutdown()

	ctx, span := o.StartJobSpan(context.Background(), "query-employee-records", 11, 22)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "job query-employee-records", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("task_type", "query-employee-records"))
}

func TestStartJobSpan_NilIsNoOp(t *testing.T) {
	var o *Observability
	_, span := o.StartJobSpan(context.Background(), "parse-attrition-insight", 1, 2)
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}
