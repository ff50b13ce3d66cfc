// internal/workers/insight/build-risk-chart-data/models.go
package buildriskchartdata

import "attrition-workers/internal/models"

type Input struct {
	Predictions []models.Prediction `json:"predictions"`
}

// Point is one labelled value of a chart series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Charts struct {
	Donut []Point `json:"donut"` // employees per risk level
	Bar   []Point `json:"bar"`   // employees per department
	Radar []Point `json:"radar"` // mean attrition probability per department
	Pie   []Point `json:"pie"`   // percentage share per classification
}

type Output struct {
	Charts Charts `json:"charts"`
	Total  int    `json:"total"`
}
