// internal/models/prediction.go
package models

// Prediction is the attrition model output for one employee. TextAI holds the
// free-text narrative parsed by the insight package.
type Prediction struct {
	EmployeeID     string  `json:"employeeId"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	Classification string  `json:"classification"`
	Probability    float64 `json:"probability"`
	TextAI         string  `json:"textAi,omitempty"`
}
