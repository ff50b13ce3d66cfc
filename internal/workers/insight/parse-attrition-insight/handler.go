// internal/workers/insight/parse-attrition-insight/handler.go
package parseattritioninsight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "attrition-workers/internal/common/errors"
	"attrition-workers/internal/common/logger"
	"attrition-workers/internal/common/metrics"
	"attrition-workers/internal/common/observability"
	"attrition-workers/internal/common/validation"
	"attrition-workers/internal/insight"
	"attrition-workers/internal/render"
)

const (
	TaskType = "parse-attrition-insight"
)

var (
	ErrInvalidInput = errors.New("INPUT_VALIDATION_FAILED")
)

type Handler struct {
	config    *Config
	validator *validation.Validator
	renderer  *render.Renderer
	obs       *observability.Observability
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

// NewHandler builds the handler. validator, renderer and obs may be nil.
func NewHandler(config *Config, validator *validation.Validator, renderer *render.Renderer, obs *observability.Observability, log logger.Logger) *Handler {
	if renderer == nil {
		renderer = render.NewRenderer(nil)
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		validator: validator,
		renderer:  renderer,
		obs:       obs,
		errors:    apperrors.NewErrorHandler(l),
		logger:    l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", logger.JobFields(job.Key, job.ProcessInstanceKey))
	timer := metrics.StartJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := h.validate(job.Variables); err != nil {
		timer.Fail(string(apperrors.ErrCodeInputValidationFailed))
		h.errors.HandleJobError(ctx, client, job, toStandardError(err))
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

func (h *Handler) validate(variables string) error {
	res, err := h.validator.ValidateJSON(TaskType, variables)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !res.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidInput, res.Error())
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidInput)
	}

	if strings.TrimSpace(input.TextAI) == "" {
		h.logger.Warn("empty narrative", map[string]interface{}{"employeeId": input.EmployeeID})
	}

	parsed := insight.Parse(input.TextAI, input.Classification)

	view := InsightView{
		Insight:         parsed,
		EmployeeID:      input.EmployeeID,
		MissingSections: make([]string, 0, len(parsed.Missing)),
	}
	for _, s := range parsed.Missing {
		view.MissingSections = append(view.MissingSections, s.String())
		metrics.InsightSectionsMissing.WithLabelValues(s.String()).Inc()
	}
	if h.config.RenderHTML {
		view.ActionsHTML = h.renderer.ActionsHTML(parsed.Actions, parsed.ActionItems)
	}

	h.obs.RecordBullets(ctx, insight.SectionDrivers.String(), len(parsed.Drivers))
	h.obs.RecordBullets(ctx, insight.SectionSentiment.String(), len(parsed.Sentiment))
	h.obs.RecordBullets(ctx, insight.SectionAssessment.String(), len(parsed.Assessment))

	h.logger.Info("insight parsed", map[string]interface{}{
		"employeeId": input.EmployeeID,
		"riskLevel":  parsed.RiskLevel,
		"drivers":    len(parsed.Drivers),
		"missing":    len(parsed.Missing),
	})

	return &Output{Insight: view}, nil
}

func toStandardError(err error) *apperrors.StandardError {
	if errors.Is(err, ErrInvalidInput) {
		return apperrors.NewInputValidationError(err.Error())
	}
	return apperrors.Normalize(err)
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
