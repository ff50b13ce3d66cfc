// internal/workers/data-access/query-employee-records/handler.go
package queryemployeerecords

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "attrition-workers/internal/common/errors"
	"attrition-workers/internal/common/logger"
	"attrition-workers/internal/common/metrics"
	"attrition-workers/internal/common/validation"
	"attrition-workers/internal/models"
	"attrition-workers/internal/workers/data-access/query-employee-records/queries"
)

const (
	TaskType = "query-employee-records"
)

var (
	ErrDatabaseConnectionFailed = errors.New("DATABASE_CONNECTION_FAILED")
	ErrQueryExecutionFailed     = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout             = errors.New("QUERY_TIMEOUT")
	ErrInvalidQueryType         = errors.New("INVALID_QUERY_TYPE")
	ErrInvalidInput             = errors.New("INPUT_VALIDATION_FAILED")
)

type Handler struct {
	config    *Config
	db        *sql.DB
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, validator *validation.Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		db:        db,
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
		stdErr := toStandardError(input.QueryType, err)
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

	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQueryType, input.QueryType)
	}

	params := make(map[string]interface{})
	if input.EmployeeID != "" {
		params["employeeId"] = input.EmployeeID
	}
	if input.Department != "" {
		params["department"] = input.Department
	}
	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}
	params["limit"] = limit

	data, rowCount, execTime, err := queries.Execute(ctx, h.db, queryType, params)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		if errors.Is(err, queries.ErrMissingParam) {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, input.QueryType, err)
		}
		if errors.Is(err, sql.ErrConnDone) {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseConnectionFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	h.logger.Info("query executed", map[string]interface{}{
		"queryType": input.QueryType,
		"rowCount":  rowCount,
		"execMs":    execTime,
	})

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
}

func toStandardError(queryType string, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrQueryTimeout):
		return apperrors.NewQueryTimeoutError(queryType)
	case errors.Is(err, ErrInvalidQueryType):
		return apperrors.NewInvalidQueryTypeError(queryType)
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInputValidationError(err.Error())
	case errors.Is(err, ErrDatabaseConnectionFailed):
		return apperrors.NewDatabaseConnectionFailedError(err)
	case errors.Is(err, ErrQueryExecutionFailed):
		return apperrors.NewQueryExecutionFailedError(queryType, err)
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
