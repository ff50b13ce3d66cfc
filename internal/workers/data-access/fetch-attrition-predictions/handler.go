// internal/workers/data-access/fetch-attrition-predictions/handler.go
package fetchattritionpredictions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"attrition-workers/internal/analytics"
	"attrition-workers/internal/common/database"
	apperrors "attrition-workers/internal/common/errors"
	"attrition-workers/internal/common/logger"
	"attrition-workers/internal/common/metrics"
	"attrition-workers/internal/common/validation"
	"attrition-workers/internal/models"
)

const (
	TaskType = "fetch-attrition-predictions"

	cacheKeyPrefix = "predictions"
)

var (
	ErrInvalidInput = errors.New("INPUT_VALIDATION_FAILED")
)

// PredictionSource is the part of the analytics client this worker needs.
type PredictionSource interface {
	FetchPredictions(ctx context.Context, f analytics.Filter) ([]models.Prediction, error)
}

type Handler struct {
	config    *Config
	source    PredictionSource
	cache     *database.RedisClient
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

// NewHandler builds the handler. A nil cache disables caching.
func NewHandler(config *Config, source PredictionSource, cache *database.RedisClient, validator *validation.Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		source:    source,
		cache:     cache,
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

	if res, err := h.validator.ValidateJSON(TaskType, job.Variables); err != nil || !res.Valid {
		details := fmt.Sprint(err)
		if err == nil {
			details = res.Error()
		}
		timer.Fail(string(apperrors.ErrCodeInputValidationFailed))
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInputValidationError(details))
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

	filter := analytics.Filter{Department: input.Department, EmployeeID: input.EmployeeID}
	key := cacheKey(filter)

	if !input.ForceRefresh {
		if cached, ok := h.readCache(ctx, key); ok {
			return &Output{Predictions: cached, Count: len(cached), FromCache: true}, nil
		}
	}

	predictions, err := h.source.FetchPredictions(ctx, filter)
	if err != nil {
		return nil, err
	}
	if predictions == nil {
		predictions = []models.Prediction{}
	}

	h.writeCache(ctx, key, predictions)

	h.logger.Info("predictions fetched", map[string]interface{}{
		"department": input.Department,
		"employeeId": input.EmployeeID,
		"count":      len(predictions),
	})

	return &Output{Predictions: predictions, Count: len(predictions)}, nil
}

func (h *Handler) readCache(ctx context.Context, key string) ([]models.Prediction, bool) {
	if h.cache == nil {
		return nil, false
	}

	var cached []models.Prediction
	err := h.cache.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.PredictionCacheLookups.WithLabelValues("hit").Inc()
		if cached == nil {
			cached = []models.Prediction{}
		}
		return cached, true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.PredictionCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.PredictionCacheLookups.WithLabelValues("error").Inc()
		h.logger.Warn("prediction cache read failed", map[string]interface{}{
			"key":   key,
			"error": apperrors.NewCacheUnavailableError(err),
		})
	}
	return nil, false
}

func (h *Handler) writeCache(ctx context.Context, key string, predictions []models.Prediction) {
	if h.cache == nil || h.config.CacheTTL <= 0 {
		return
	}
	if err := h.cache.SetJSON(ctx, key, predictions, h.config.CacheTTL); err != nil {
		h.logger.Warn("prediction cache write failed", map[string]interface{}{
			"key":   key,
			"error": apperrors.NewCacheUnavailableError(err),
		})
	}
}

// cacheKey is predictions:<department>:<employeeId> with * for unset parts.
func cacheKey(f analytics.Filter) string {
	dept, emp := f.Department, f.EmployeeID
	if dept == "" {
		dept = "*"
	}
	if emp == "" {
		emp = "*"
	}
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, dept, emp)
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
