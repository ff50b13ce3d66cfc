// internal/insight/markers.go
package insight

import (
	"regexp"
	"strings"
)

// Section identifies one labelled block of an insight narrative.
type Section int

const (
	SectionBrief Section = iota
	SectionRiskLevel
	SectionDrivers
	SectionSentiment
	SectionAssessment
	SectionActions
)

func (s Section) String() string {
	switch s {
	case SectionBrief:
		return "brief"
	case SectionRiskLevel:
		return "riskLevel"
	case SectionDrivers:
		return "drivers"
	case SectionSentiment:
		return "sentiment"
	case SectionAssessment:
		return "assessment"
	case SectionActions:
		return "actions"
	default:
		return "unknown"
	}
}

// Marker is a section label as it appears in the narrative. The pattern
// matches the label case-insensitively with optional ** emphasis around it.
type Marker struct {
	Section Section
	Label   string
	pattern *regexp.Regexp
}

// NewMarker compiles a marker for label. The trailing colon is optional in
// label and always required in the text.
func NewMarker(section Section, label string) Marker {
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), ":"))
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	expr := `(?i)(?:\*\*)?` + strings.Join(words, `\s+`) + `(?:\*\*)?\s*:(?:\*\*)?`
	return Marker{
		Section: section,
		Label:   name + ":",
		pattern: regexp.MustCompile(expr),
	}
}

// find returns the first match of the marker at or after offset.
func (m Marker) find(text string, offset int) (start, end int, ok bool) {
	if offset > len(text) {
		return 0, 0, false
	}
	loc := m.pattern.FindStringIndex(text[offset:])
	if loc == nil {
		return 0, 0, false
	}
	return offset + loc[0], offset + loc[1], true
}

// CanonicalMarkers is the fixed order sections appear in.
var CanonicalMarkers = []Marker{
	NewMarker(SectionBrief, "Attrition Risk Brief:"),
	NewMarker(SectionRiskLevel, "Risk Level:"),
	NewMarker(SectionDrivers, "Prioritized Risk Drivers:"),
	NewMarker(SectionSentiment, "Sentiment Analysis:"),
	NewMarker(SectionAssessment, "Overall Situation Assessment:"),
	NewMarker(SectionActions, "Recommended Actions:"),
}

// SliceSections captures, for every marker found in text, the text between
// the end of that marker and the start of the nearest later-ordered marker
// that follows it, or the end of text. Markers are located by first match;
// each one only looks forward for its successors.
func SliceSections(text string, markers []Marker) map[Section]string {
	out := make(map[Section]string, len(markers))
	for _, m := range markers {
		out[m.Section] = ""
	}

	for i, m := range markers {
		_, end, ok := m.find(text, 0)
		if !ok {
			continue
		}

		stop := len(text)
		for _, next := range markers[i+1:] {
			if s, _, found := next.find(text, end); found && s < stop {
				stop = s
			}
		}
		out[m.Section] = text[end:stop]
	}

	return out
}
