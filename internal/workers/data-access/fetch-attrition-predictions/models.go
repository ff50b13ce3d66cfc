// internal/workers/data-access/fetch-attrition-predictions/models.go
package fetchattritionpredictions

import "attrition-workers/internal/models"

type Input struct {
	Department   string `json:"department,omitempty"`
	EmployeeID   string `json:"employeeId,omitempty"`
	ForceRefresh bool   `json:"forceRefresh,omitempty"`
}

type Output struct {
	Predictions []models.Prediction `json:"predictions"`
	Count       int                 `json:"count"`
	FromCache   bool                `json:"fromCache"`
}
