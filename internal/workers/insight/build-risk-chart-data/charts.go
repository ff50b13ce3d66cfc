// internal/workers/insight/build-risk-chart-data/charts.go
package buildriskchartdata

import (
	"math"
	"sort"
	"strings"

	"attrition-workers/internal/insight"
	"attrition-workers/internal/models"
)

var riskOrder = []string{insight.RiskHigh, insight.RiskMedium, insight.RiskLow, insight.RiskUnknown}

type group struct {
	label string
	count int
	sum   float64
}

// buildCharts reshapes predictions into the four dashboard series. Every
// series is non-nil so the output always serialises as arrays.
func buildCharts(predictions []models.Prediction, unassigned string) Charts {
	byDept := groupBy(predictions, func(p models.Prediction) string { return labelOr(p.Department, unassigned) })
	byClass := groupBy(predictions, func(p models.Prediction) string { return labelOr(p.Classification, unassigned) })

	return Charts{
		Donut: donut(predictions),
		Bar:   bar(byDept),
		Radar: radar(byDept),
		Pie:   pie(byClass, len(predictions)),
	}
}

// RiskLevelOf prefers the narrative's own risk level over the classification.
func RiskLevelOf(p models.Prediction) string {
	return insight.NormalizeRiskLevel(insight.ParseSections(p.TextAI).RiskLevel, p.Classification)
}

func donut(predictions []models.Prediction) []Point {
	counts := make(map[string]int, len(riskOrder))
	for _, p := range predictions {
		counts[RiskLevelOf(p)]++
	}
	points := make([]Point, 0, len(riskOrder))
	for _, level := range riskOrder {
		points = append(points, Point{Label: level, Value: float64(counts[level])})
	}
	return points
}

func bar(groups []group) []Point {
	sorted := append([]group(nil), groups...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].label < sorted[j].label
	})
	points := make([]Point, 0, len(sorted))
	for _, g := range sorted {
		points = append(points, Point{Label: g.label, Value: float64(g.count)})
	}
	return points
}

func radar(groups []group) []Point {
	sorted := append([]group(nil), groups...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].label < sorted[j].label })
	points := make([]Point, 0, len(sorted))
	for _, g := range sorted {
		points = append(points, Point{Label: g.label, Value: round(g.sum/float64(g.count), 3)})
	}
	return points
}

func pie(groups []group, total int) []Point {
	points := make([]Point, 0, len(groups))
	if total == 0 {
		return points
	}
	for _, p := range bar(groups) {
		points = append(points, Point{Label: p.Label, Value: round(p.Value*100/float64(total), 1)})
	}
	return points
}

func groupBy(predictions []models.Prediction, key func(models.Prediction) string) []group {
	index := make(map[string]int)
	var groups []group
	for _, p := range predictions {
		k := key(p)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{label: k})
		}
		groups[i].count++
		groups[i].sum += clamp01(p.Probability)
	}
	return groups
}

func labelOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
