// internal/workers/insight/build-risk-chart-data/handler.go
package buildriskchartdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "attrition-workers/internal/common/errors"
	"attrition-workers/internal/common/logger"
	"attrition-workers/internal/common/metrics"
	"attrition-workers/internal/common/validation"
)

const (
	TaskType = "build-risk-chart-data"
)

var (
	ErrInvalidInput = errors.New("INPUT_VALIDATION_FAILED")
)

type Handler struct {
	config    *Config
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, validator *validation.Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		validator: validator,
		errors:    apperrors.NewErrorHandler(l),
		logger:    l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", logger.JobFields(job.Key, job.ProcessInstanceKey))
	timer := metrics.StartJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	res, err := h.validator.ValidateJSON(TaskType, job.Variables)
	if err == nil && !res.Valid {
		err = errors.New(res.Error())
	}
	if err != nil {
		timer.Fail(string(apperrors.ErrCodeInputValidationFailed))
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInputValidationError(err.Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		timer.Fail(string(apperrors.ErrCodeInputValidationFailed))
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInputValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		if errors.Is(err, ErrInvalidInput) {
			stdErr = apperrors.NewInputValidationError(err.Error())
		}
		timer.Fail(string(stdErr.Code))
		h.errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	h.completeJob(ctx, client, job, output)
	timer.Complete()
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	charts := buildCharts(input.Predictions, h.config.UnassignedLabel)

	h.logger.Info("chart data built", map[string]interface{}{
		"predictions": len(input.Predictions),
		"departments": len(charts.Bar),
	})

	return &Output{Charts: charts, Total: len(input.Predictions)}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
