// internal/insight/actions.go
package insight

import (
	"regexp"
	"strings"
)

const (
	LabelUs     = "Controllable by Us"
	LabelClient = "Controllable by the Client"
)

var (
	usMarker     = "<b>" + LabelUs + ":</b>"
	clientMarker = "<b>" + LabelClient + ":</b>"

	// label with any **, __ or inline-tag wrapping and an optional colon
	controllableLabel = regexp.MustCompile(
		`(?i)(?:(?:\*\*|__|<(?:b|strong|em|i)>)\s*)*` +
			`controllable\s+by\s+(the\s+client|client|us)(?:__|\b)` +
			`(?:\s*(?:\*\*|__|</(?:b|strong|em|i)>))*\s*:?(?:\s*(?:\*\*|__|</(?:b|strong|em|i)>))*`,
	)
)

// ActionSplit holds recommended actions divided by who can act on them.
// Both sides may carry inline emphasis tags and must be sanitised before
// being rendered as HTML.
type ActionSplit struct {
	Us     string `json:"us"`
	Client string `json:"client"`
}

// Empty reports whether neither label was found.
func (a ActionSplit) Empty() bool {
	return a.Us == "" && a.Client == ""
}

// NormalizeControllableLabels rewrites every "Controllable by ..." label to
// its canonical inline marker.
func NormalizeControllableLabels(actions string) string {
	return controllableLabel.ReplaceAllStringFunc(actions, func(match string) string {
		sub := controllableLabel.FindStringSubmatch(match)
		if len(sub) > 1 && strings.EqualFold(sub[1], "us") {
			return usMarker + " "
		}
		return clientMarker + " "
	})
}

// SplitControllableActions extracts the text following each controllable
// label up to the next label or the end of the section.
func SplitControllableActions(actions string) ActionSplit {
	normalized := NormalizeControllableLabels(actions)
	return ActionSplit{
		Us:     sliceAfter(normalized, usMarker),
		Client: sliceAfter(normalized, clientMarker),
	}
}

func sliceAfter(text, marker string) string {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	start := idx + len(marker)
	rest := text[start:]

	stop := len(rest)
	for _, m := range []string{usMarker, clientMarker} {
		if i := strings.Index(rest, m); i >= 0 && i < stop {
			stop = i
		}
	}
	return strings.TrimSpace(rest[:stop])
}
