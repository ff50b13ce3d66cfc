// internal/workers/insight/export-insight-report/models.go
package exportinsightreport

import "attrition-workers/internal/models"

type Input struct {
	Predictions []models.Prediction `json:"predictions"`
	FileName    string              `json:"fileName,omitempty"`
}

type Output struct {
	ReportID string `json:"reportId"`
	FilePath string `json:"filePath"`
	RowCount int    `json:"rowCount"`
}
