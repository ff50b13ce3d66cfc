// internal/insight/sections.go
package insight

// ParsedInsight holds the raw text of each narrative section. Fields are
// empty when the section is absent.
type ParsedInsight struct {
	Brief      string `json:"brief"`
	RiskLevel  string `json:"riskLevel"`
	Drivers    string `json:"drivers"`
	Sentiment  string `json:"sentiment"`
	Assessment string `json:"assessment"`
	Actions    string `json:"actions"`
}

// ParseSections splits an insight narrative into its six sections.
func ParseSections(text string) ParsedInsight {
	s := SliceSections(text, CanonicalMarkers)
	return ParsedInsight{
		Brief:      s[SectionBrief],
		RiskLevel:  s[SectionRiskLevel],
		Drivers:    s[SectionDrivers],
		Sentiment:  s[SectionSentiment],
		Assessment: s[SectionAssessment],
		Actions:    s[SectionActions],
	}
}

// Get returns the raw text for a section.
func (p ParsedInsight) Get(s Section) string {
	switch s {
	case SectionBrief:
		return p.Brief
	case SectionRiskLevel:
		return p.RiskLevel
	case SectionDrivers:
		return p.Drivers
	case SectionSentiment:
		return p.Sentiment
	case SectionAssessment:
		return p.Assessment
	case SectionActions:
		return p.Actions
	}
	return ""
}

// Missing lists the sections with no content, in canonical order.
func (p ParsedInsight) Missing() []Section {
	var missing []Section
	for _, m := range CanonicalMarkers {
		if isBlank(p.Get(m.Section)) {
			missing = append(missing, m.Section)
		}
	}
	return missing
}
