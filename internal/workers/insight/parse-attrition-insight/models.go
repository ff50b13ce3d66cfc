// internal/workers/insight/parse-attrition-insight/models.go
package parseattritioninsight

import "attrition-workers/internal/insight"

type Input struct {
	TextAI         string `json:"textAi"`
	Classification string `json:"classification,omitempty"`
	EmployeeID     string `json:"employeeId,omitempty"`
}

// InsightView is the parsed narrative plus what the dashboard renders from it.
type InsightView struct {
	insight.Insight
	EmployeeID      string   `json:"employeeId,omitempty"`
	ActionsHTML     string   `json:"actionsHtml,omitempty"`
	MissingSections []string `json:"missingSections"`
}

type Output struct {
	Insight InsightView `json:"insight"`
}
