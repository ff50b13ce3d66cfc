package exportinsightreport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	apperrors "attrition-workers/internal/common/errors"
	"attrition-workers/internal/common/logger"
	"attrition-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(t *testing.T) *Config {
	return &Config{
		Timeout:   5 * time.Second,
		OutputDir: filepath.Join(t.TempDir(), "reports"),
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func readSheet(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_WritesWorkbook(t *testing.T) {
	h := NewHandler(createTestConfig(t), nil, createTestLogger(t))

	predictions := []models.Prediction{
		{
			EmployeeID:     "E1",
			Name:           "Ana",
			Department:     "Sales",
			Classification: "High Risk",
			Probability:    0.82,
			TextAI: "Prioritized Risk Drivers:\n- Pay\n- Commute\n" +
				"Recommended Actions: **Controllable by Us:** Raise pay. Controllable by the Client: Allow remote.",
		},
		{EmployeeID: "E2", Name: "Bo", Department: "HR", Classification: "Low Risk", Probability: 0.1},
	}

	out, err := h.execute(context.Background(), &Input{Predictions: predictions})
	require.NoError(t, err)

	assert.Equal(t, 2, out.RowCount)
	assert.NotEmpty(t, out.ReportID)
	assert.Equal(t, "attrition-report-"+out.ReportID+".xlsx", filepath.Base(out.FilePath))

	rows := readSheet(t, out.FilePath)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Employee ID", "Name", "Department", "Risk Level", "Probability", "Drivers", "Actions"}, rows[0])
	assert.Equal(t, []string{
		"E1", "Ana", "Sales", "High", "0.82", "Pay.; Commute.",
		"Controllable by Us: Raise pay. | Controllable by the Client: Allow remote.",
	}, rows[1])
	assert.Equal(t, []string{"E2", "Bo", "HR", "Low", "0.1"}, rows[2][:5])
}

func TestHandler_Execute_CustomFileName(t *testing.T) {
	h := NewHandler(createTestConfig(t), nil, createTestLogger(t))

	out, err := h.execute(context.Background(), &Input{FileName: "q3-sales"})
	require.NoError(t, err)
	assert.Equal(t, "q3-sales.xlsx", filepath.Base(out.FilePath))
	assert.Equal(t, 0, out.RowCount)

	_, err = os.Stat(out.FilePath)
	require.NoError(t, err)
	assert.Len(t, readSheet(t, out.FilePath), 1)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		requested string
		want      string
		wantErr   bool
	}{
		{requested: "", want: "attrition-report-id.xlsx"},
		{requested: "report.xlsx", want: "report.xlsx"},
		{requested: "Report.XLSX", want: "Report.XLSX"},
		{requested: "report.csv", want: "report.csv.xlsx"},
		{requested: "../etc/passwd", wantErr: true},
		{requested: ".hidden", wantErr: true},
		{requested: `dir\file`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			got, err := fileName(tt.requested, "id")
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Error Handling
// ==========================

func TestHandler_Execute_UnwritableDir(t *testing.T) {
	cfg := createTestConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	cfg.OutputDir = filepath.Join(blocker, "reports")

	h := NewHandler(cfg, nil, createTestLogger(t))
	_, err := h.execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExportFailed))

	std := toStandardError(err)
	assert.Equal(t, apperrors.ErrCodeExportFailed, std.Code)
	assert.True(t, std.Retryable)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := NewHandler(createTestConfig(t), nil, createTestLogger(t))
	_, err := h.Execute(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, strings.HasPrefix(string(toStandardError(err).Code), "INPUT_"))
}
