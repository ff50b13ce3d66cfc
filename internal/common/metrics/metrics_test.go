package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestJobTimer(t *testing.T) {
	const taskType = "metrics-test-task"

	timer := StartJob(taskType)
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(taskType)))

	timer.Complete()
	assert.Equal(t, 0.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(taskType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(taskType)))

	StartJob(taskType).Fail("EXPORT_FAILED")
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues(taskType, "EXPORT_FAILED")))
	assert.Equal(t, 0.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(taskType)))
}

func TestInsightSectionsMissing(t *testing.T) {
	before := testutil.ToFloat64(InsightSectionsMissing.WithLabelValues("sentiment"))
	InsightSectionsMissing.WithLabelValues("sentiment").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(InsightSectionsMissing.WithLabelValues("sentiment")))
}
