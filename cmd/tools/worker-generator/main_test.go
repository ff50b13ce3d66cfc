package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryFile = "../../../configs/activity-registry.json"

func TestSchemaFields(t *testing.T) {
	fields := schemaFields(map[string]interface{}{
		"properties": map[string]interface{}{
			"textAi":     map[string]interface{}{"type": "string", "description": "narrative"},
			"employeeId": map[string]interface{}{"type": "string"},
			"limit":      map[string]interface{}{"type": "integer"},
		},
		"required": []interface{}{"textAi"},
	})

	require.Len(t, fields, 3)
	assert.Equal(t, Field{Name: "EmployeeID", GoType: "string", JSONName: "employeeId"}, fields[0])
	assert.Equal(t, "int", fields[1].GoType)
	assert.True(t, fields[2].Required)
	assert.Equal(t, "`json:\"textAi\"`", jsonTag(fields[2]))
	assert.Equal(t, "`json:\"employeeId,omitempty\"`", jsonTag(fields[0]))
}

func TestTimeoutLiteral(t *testing.T) {
	tests := map[string]string{
		"5s":    "5 * time.Second",
		"250ms": "250 * time.Millisecond",
		"2m":    "2 * time.Minute",
		"":      "10 * time.Second",
		"1h30m": "10 * time.Second",
	}
	for in, want := range tests {
		assert.Equal(t, want, timeoutLiteral(in), in)
	}
}

func TestRun_GeneratesScaffold(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, run([]string{"-activity", "parse-attrition-insight", "-output", dir, "-registry", registryFile}, &out))

	workerDir := filepath.Join(dir, "insight", "parse-attrition-insight")
	for _, name := range []string{"config.go", "models.go", "handler.go", "handler_test.go"} {
		assert.FileExists(t, filepath.Join(workerDir, name))
	}

	models, err := os.ReadFile(filepath.Join(workerDir, "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "TextAi string `json:\"textAi\"`")
	assert.Contains(t, string(models), "EmployeeID string `json:\"employeeId,omitempty\"`")

	handler, err := os.ReadFile(filepath.Join(workerDir, "handler.go"))
	require.NoError(t, err)
	assert.Contains(t, string(handler), `TaskType = "parse-attrition-insight"`)
	assert.Contains(t, string(handler), "package parseattritioninsight")

	config, err := os.ReadFile(filepath.Join(workerDir, "config.go"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "5 * time.Second")

	out.Reset()
	require.NoError(t, run([]string{"-activity", "parse-attrition-insight", "-output", dir, "-registry", registryFile}, &out))
	assert.Contains(t, out.String(), "skip")
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorContains(t, run(nil, &out), "usage")
	assert.ErrorContains(t, run([]string{"-activity", "nope", "-registry", registryFile, "-output", t.TempDir()}, &out), "not found")
	assert.ErrorContains(t, run([]string{"-activity", "x", "-registry", "missing.json"}, &out), "load registry")
}
