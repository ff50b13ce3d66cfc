package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"attrition-workers/pkg/registry"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins every failure into one line.
func (r *ValidationResult) Error() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validator checks job variables against the input schemas declared in the
// activity registry. Schemas are compiled once.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the input schema of every activity that declares one.
func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", a.TaskType, err)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

// Has reports whether taskType has a compiled schema.
func (v *Validator) Has(taskType string) bool {
	_, ok := v.schemas[taskType]
	return ok
}

// ValidateJSON validates a raw job variables document. Task types without a
// schema always pass.
func (v *Validator) ValidateJSON(taskType, variables string) (*ValidationResult, error) {
	return v.validate(taskType, gojsonschema.NewStringLoader(variables))
}

// ValidateInput validates an already decoded document.
func (v *Validator) ValidateInput(taskType string, input interface{}) (*ValidationResult, error) {
	return v.validate(taskType, gojsonschema.NewGoLoader(input))
}

func (v *Validator) validate(taskType string, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	if v == nil {
		return &ValidationResult{Valid: true}, nil
	}
	schema, ok := v.schemas[taskType]
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validate %s input: %w", taskType, err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	sort.Slice(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})
	return out, nil
}
