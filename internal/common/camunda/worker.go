// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"attrition-workers/internal/common/config"
	"attrition-workers/internal/common/observability"
)

// JobHandler is implemented by every worker package.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// JobHandlerFunc adapts a plain function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) { f(client, job) }

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. The handler is wrapped so a
// panic fails the job instead of killing the process. Every job gets a span
// and its duration recorded.
func NewWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	logger *zap.Logger,
) *CamundaWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, obs, logger)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

func instrument(taskType string, handler JobHandler, obs *observability.Observability, logger *zap.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		status := "handled"
		_, span := obs.StartJobSpan(context.Background(), taskType, job.Key, job.ProcessInstanceKey)

		defer func() {
			if r := recover(); r != nil {
				status = "panic"
				span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", r))
				logger.Error("handler panicked",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Any("panic", r),
				)
				_, err := client.NewFailJobCommand().
					JobKey(job.Key).
					Retries(0).
					ErrorMessage(fmt.Sprintf("handler panicked: %v", r)).
					Send(context.Background())
				if err != nil {
					logger.Error("failed to fail job after panic", zap.Error(err))
				}
			}
			obs.RecordJobProcessed(context.Background(), taskType, status)
			obs.RecordJobDuration(context.Background(), taskType, time.Since(start), status)
			span.End()
		}()

		handler.Handle(client, job)
	}
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
