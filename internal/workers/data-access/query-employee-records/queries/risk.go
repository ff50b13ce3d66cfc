// internal/workers/data-access/query-employee-records/queries/risk.go
package queries

import (
	"sort"

	"attrition-workers/internal/insight"
	"attrition-workers/internal/models"
)

// isHighRisk uses the same risk level the dashboard shows: the narrative's
// own "Risk Level:" section first, then the classification label.
func isHighRisk(p models.Prediction) bool {
	if p.Probability >= HighRiskThreshold {
		return true
	}
	level := insight.NormalizeRiskLevel(insight.ParseSections(p.TextAI).RiskLevel, p.Classification)
	return level == insight.RiskHigh
}

func sortByProbability(predictions []models.Prediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		if predictions[i].Probability != predictions[j].Probability {
			return predictions[i].Probability > predictions[j].Probability
		}
		return predictions[i].EmployeeID < predictions[j].EmployeeID
	})
}
