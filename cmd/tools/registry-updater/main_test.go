package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrition-workers/pkg/registry"
)

func TestRun_AddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	var out bytes.Buffer

	err := run([]string{"add", "-path", path, "-id", "score-flight-risk", "-displayName", "Score Flight Risk",
		"-category", "insight", "-taskType", "score-flight-risk"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added activity: score-flight-risk")

	err = run([]string{"add", "-path", path, "-id", "score-flight-risk", "-displayName", "Again",
		"-category", "insight", "-taskType", "other"}, &out)
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, run([]string{"update", "-path", path, "-id", "score-flight-risk", "-field", "status", "-value", "completed"}, &out))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 1)
	assert.Equal(t, registry.StatusCompleted, reg.Activities[0].ImplementationStatus)

	out.Reset()
	require.NoError(t, run([]string{"validate", "-path", path}, &out))
	assert.Contains(t, out.String(), "1 activities")
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing.json")

	assert.Error(t, run(nil, &out))
	assert.ErrorContains(t, run([]string{"add", "-path", path, "-id", "x"}, &out), "required")
	assert.ErrorContains(t, run([]string{"update", "-path", path, "-id", "x", "-field", "status", "-value", "done"}, &out), "failed to load registry")
	assert.ErrorContains(t, run([]string{"validate", "-path", path}, &out), "failed to load registry")
}

func TestRun_ShippedRegistryIsValid(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"validate", "-path", "../../../configs/activity-registry.json"}, &out))
	assert.Contains(t, out.String(), "5 activities")
}
