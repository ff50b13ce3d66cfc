// Package insight turns the free-text attrition narrative returned by the
// analytics API into structured sections, bullet lists and a split of
// recommended actions.
//
// Every function in this package is pure and total: malformed or partial
// input yields empty fields, never an error.
package insight

import (
	"strings"
)

// Risk levels recognised in the "Risk Level:" section or the classification.
const (
	RiskHigh    = "High"
	RiskMedium  = "Medium"
	RiskLow     = "Low"
	RiskUnknown = "Unknown"
)

// Insight is the display-ready form of one narrative.
type Insight struct {
	Classification string      `json:"classification"`
	RiskLevel      string      `json:"riskLevel"`
	Brief          string      `json:"brief"`
	Drivers        []string    `json:"drivers"`
	Sentiment      []string    `json:"sentiment"`
	Assessment     []string    `json:"assessment"`
	Actions        ActionSplit `json:"actions"`
	// ActionItems is the flat list used when no controllable labels exist.
	ActionItems []string  `json:"actionItems"`
	Missing     []Section `json:"-"`
}

// Parse runs the full pipeline over a narrative.
func Parse(text, classification string) Insight {
	sections := ParseSections(text)

	out := Insight{
		Classification: strings.TrimSpace(classification),
		RiskLevel:      NormalizeRiskLevel(sections.RiskLevel, classification),
		Brief:          strings.TrimSpace(stripEmphasis(sections.Brief)),
		Drivers:        ToBulletListJoiningContinuations(sections.Drivers),
		Sentiment:      ToBulletList(sections.Sentiment),
		Assessment:     ToBulletList(sections.Assessment),
		Actions:        SplitControllableActions(sections.Actions),
		ActionItems:    []string{},
		Missing:        sections.Missing(),
	}

	if out.Actions.Empty() {
		out.ActionItems = ToBulletList(sections.Actions)
	}

	return out
}

// NormalizeRiskLevel maps the risk level section to High, Medium or Low,
// falling back to the classification label and then to Unknown.
func NormalizeRiskLevel(section, classification string) string {
	if level := matchRiskLevel(section); level != RiskUnknown {
		return level
	}
	return matchRiskLevel(classification)
}

func matchRiskLevel(s string) string {
	s = strings.ToLower(stripEmphasis(s))
	for _, word := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		switch word {
		case "high", "critical", "severe":
			return RiskHigh
		case "medium", "moderate":
			return RiskMedium
		case "low", "minimal":
			return RiskLow
		}
	}
	return RiskUnknown
}
