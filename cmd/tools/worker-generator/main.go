// cmd/tools/worker-generator/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"attrition-workers/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Category     string
	Description  string
	Timeout      string
	ErrorCodes   []string
	InputFields  []Field
	OutputFields []Field
}

// Field is one struct field derived from a JSON schema property.
type Field struct {
	Name     string
	GoType   string
	JSONName string
	Required bool
	Comment  string
}

// schemaFields extracts sorted struct fields from a JSON schema object.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		comment, _ := details["description"].(string)
		fields = append(fields, Field{
			Name:     goFieldName(name),
			GoType:   goTypeFromJSONType(details["type"]),
			JSONName: name,
			Required: required[name],
			Comment:  comment,
		})
	}
	return fields
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// goFieldName upper-cases the first rune and expands a trailing "Id".
func goFieldName(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if strings.HasSuffix(s, "Id") {
		s = strings.TrimSuffix(s, "Id") + "ID"
	}
	return s
}

func jsonTag(f Field) string {
	if f.Required {
		return fmt.Sprintf("`json:\"%s\"`", f.JSONName)
	}
	return fmt.Sprintf("`json:\"%s,omitempty\"`", f.JSONName)
}

const configTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ timeoutLiteral .Timeout }},
	}
}
`

const modelsTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/models.go
package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .GoType }} {{ jsonTag . }}{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .GoType }} {{ jsonTag . }}{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}
`

const handlerTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/handler.go
package {{ .PackageName }}

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
	TaskType = "{{ .TaskType }}"
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
	return &Output{}, ctx.Err()
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"attrition-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(createTestConfig(), nil, createTestLogger(t))
	out, err := h.execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := NewHandler(createTestConfig(), nil, createTestLogger(t))
	_, err := h.Execute(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
`

// timeoutLiteral renders a registry timeout such as "15s" as a Go duration
// expression, defaulting to ten seconds.
func timeoutLiteral(timeout string) string {
	units := []struct{ suffix, unit string }{{"ms", "time.Millisecond"}, {"s", "time.Second"}, {"m", "time.Minute"}}
	for _, u := range units {
		if n := strings.TrimSuffix(timeout, u.suffix); n != timeout && n != "" && strings.Trim(n, "0123456789") == "" {
			return n + " * " + u.unit
		}
	}
	return "10 * time.Second"
}

var templates = map[string]string{
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler.go":      handlerTemplate,
	"handler_test.go": testTemplate,
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("worker-generator", flag.ContinueOnError)
	activity := fs.String("activity", "", "Activity ID from registry (e.g., parse-attrition-insight)")
	outputDir := fs.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := fs.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := fs.Bool("force", false, "Overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *activity == "" {
		return errors.New("usage: worker-generator -activity <id> [-output <dir>] [-registry <path>] [-force]")
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		return fmt.Errorf("load registry %s: %w", *registryPath, err)
	}

	var found *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			found = &reg.Activities[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("activity %q not found in registry %s", *activity, *registryPath)
	}

	data := WorkerData{
		Name:         found.DisplayName,
		PackageName:  strings.ReplaceAll(found.ID, "-", ""),
		TaskType:     found.TaskType,
		Category:     categoryDirectory(found.Category),
		Description:  found.Description,
		Timeout:      found.Timeout,
		ErrorCodes:   found.ErrorCodes,
		InputFields:  schemaFields(found.InputSchema),
		OutputFields: schemaFields(found.OutputSchema),
	}

	workerDir := filepath.Join(*outputDir, data.Category, found.ID)
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	funcs := template.FuncMap{"jsonTag": jsonTag, "timeoutLiteral": timeoutLiteral}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(workerDir, name)
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Fprintf(out, "skip %s (exists)\n", path)
			continue
		}

		tmpl, err := template.New(name).Funcs(funcs).Parse(templates[name])
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(out, "generated %s\n", path)
	}

	fmt.Fprintf(out, "register %s.TaskType in cmd/worker-manager/main.go and add it to configs/config.yaml\n", data.PackageName)
	return nil
}

// categoryDirectory maps registry categories to directory names
func categoryDirectory(category string) string {
	switch category {
	case "data-access", "database":
		return "data-access"
	case "insight", "analytics", "export", "reporting":
		return "insight"
	default:
		return strings.ToLower(category)
	}
}
