package validation

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrition-workers/pkg/registry"
)

func loadValidator(t *testing.T) *Validator {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	reg, err := registry.LoadRegistry(filepath.Join(filepath.Dir(file), "..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	v, err := NewValidator(reg)
	require.NoError(t, err)
	return v
}

// ==========================
// ValidateJSON
// ==========================

func TestValidateJSON(t *testing.T) {
	v := loadValidator(t)

	tests := []struct {
		name       string
		taskType   string
		variables  string
		valid      bool
		wantFields []string
	}{
		{
			name:      "insight ok",
			taskType:  "parse-attrition-insight",
			variables: `{"textAi":"Risk Level: High","classification":"High Risk"}`,
			valid:     true,
		},
		{
			name:       "insight missing text",
			taskType:   "parse-attrition-insight",
			variables:  `{"classification":"High Risk"}`,
			wantFields: []string{"(root)"},
		},
		{
			name:       "bad query type and limit",
			taskType:   "query-employee-records",
			variables:  `{"queryType":"salary_history","limit":0}`,
			wantFields: []string{"limit", "queryType"},
		},
		{
			name:       "probability out of range",
			taskType:   "build-risk-chart-data",
			variables:  `{"predictions":[{"employeeId":"E1","probability":1.5}]}`,
			wantFields: []string{"predictions.0.probability"},
		},
		{
			name:       "unsafe file name",
			taskType:   "export-insight-report",
			variables:  `{"predictions":[],"fileName":"../etc/passwd"}`,
			wantFields: []string{"fileName"},
		},
		{
			name:      "unknown task passes",
			taskType:  "no-such-task",
			variables: `{"anything":true}`,
			valid:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateJSON(tt.taskType, tt.variables)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)

			var fields []string
			for _, e := range res.Errors {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Code)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateJSON_MalformedDocument(t *testing.T) {
	v := loadValidator(t)
	_, err := v.ValidateJSON("parse-attrition-insight", `{"textAi":`)
	assert.Error(t, err)
}

func TestValidateInput_GoValue(t *testing.T) {
	v := loadValidator(t)
	res, err := v.ValidateInput("fetch-attrition-predictions", map[string]interface{}{"forceRefresh": "yes"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error(), "forceRefresh")
}

func TestNilValidator(t *testing.T) {
	var v *Validator
	res, err := v.ValidateJSON("parse-attrition-insight", `{}`)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestNewValidator_BadSchema(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{{
		TaskType:    "broken",
		InputSchema: map[string]interface{}{"type": 42},
	}}}
	_, err := NewValidator(reg)
	assert.Error(t, err)
}

func TestValidator_Has(t *testing.T) {
	v := loadValidator(t)
	assert.True(t, v.Has("export-insight-report"))
	assert.False(t, v.Has("no-such-task"))
}
