// internal/insight/bullets.go
package insight

import (
	"regexp"
	"strings"
)

var (
	// newline or sentence-ending ". "
	sentenceSplit = regexp.MustCompile(`\r?\n|\. `)

	leadingHyphen   = regexp.MustCompile(`^(?:-\s*)+`)
	trailingNumbers = regexp.MustCompile(`(?:^|\s+)\d+(?:\s+\d+)*$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)

	// •, -, *, "1." or "(a)" at the start of a line
	bulletStart = regexp.MustCompile(`^\s*(?:•|-|\*|\d+\.(?:\s|$)|\([A-Za-z]\))\s*`)
)

// ToBulletList turns a section into bullet strings, one per line or sentence.
func ToBulletList(section string) []string {
	items := []string{}
	if isBlank(section) {
		return items
	}

	for _, part := range sentenceSplit.Split(stripEmphasis(section), -1) {
		item := strings.TrimSpace(part)
		item = strings.TrimSpace(leadingHyphen.ReplaceAllString(item, ""))
		item = strings.TrimSpace(trailingNumbers.ReplaceAllString(item, ""))
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// ToBulletListJoiningContinuations groups lines into bullets. A line opens a
// new bullet when it starts with a bullet marker; any other non-empty line
// continues the open bullet. Every bullet ends with a period.
func ToBulletListJoiningContinuations(section string) []string {
	bullets := []string{}
	if isBlank(section) {
		return bullets
	}

	var (
		current []string
		open    bool
	)
	flush := func() {
		if !open {
			return
		}
		if b := finishBullet(strings.Join(current, " ")); b != "" {
			bullets = append(bullets, b)
		}
		current = current[:0]
		open = false
	}

	for _, raw := range strings.Split(stripEmphasis(section), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if loc := bulletStart.FindStringIndex(line); loc != nil {
			flush()
			open = true
			current = append(current, line[loc[1]:])
			continue
		}

		open = true
		current = append(current, line)
	}
	flush()

	return bullets
}

func finishBullet(text string) string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(strings.TrimRight(text, ")]"), ".") {
		text += "."
	}
	return text
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
