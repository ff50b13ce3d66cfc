// internal/workers/insight/export-insight-report/handler.go
package exportinsightreport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "attrition-workers/internal/common/errors"
	"attrition-workers/internal/common/logger"
	"attrition-workers/internal/common/metrics"
	"attrition-workers/internal/common/validation"
)

const (
	TaskType = "export-insight-report"

	fileExt = ".xlsx"
)

var (
	ErrInvalidInput = errors.New("INPUT_VALIDATION_FAILED")
	ErrExportFailed = errors.New("EXPORT_FAILED")
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
		stdErr := toStandardError(err)
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

	reportID := uuid.NewString()
	name, err := fileName(input.FileName, reportID)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(h.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", ErrExportFailed, err)
	}
	path := filepath.Join(h.config.OutputDir, name)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := writeReport(path, input.Predictions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	h.logger.Info("report exported", map[string]interface{}{
		"reportId": reportID,
		"path":     path,
		"rows":     len(input.Predictions),
	})

	return &Output{
		ReportID: reportID,
		FilePath: path,
		RowCount: len(input.Predictions),
	}, nil
}

// fileName returns a bare .xlsx file name. Anything resembling a path is
// rejected rather than cleaned.
func fileName(requested, reportID string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "attrition-report-" + reportID + fileExt, nil
	}
	if requested != filepath.Base(requested) || strings.HasPrefix(requested, ".") || strings.ContainsAny(requested, `/\`) {
		return "", fmt.Errorf("%w: invalid file name %q", ErrInvalidInput, requested)
	}
	if !strings.EqualFold(filepath.Ext(requested), fileExt) {
		requested += fileExt
	}
	return requested, nil
}

func toStandardError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInputValidationError(err.Error())
	case errors.Is(err, ErrExportFailed):
		return apperrors.NewExportFailedError(err)
	default:
		return apperrors.Normalize(err)
	}
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
