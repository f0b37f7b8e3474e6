package extract

import (
	"regexp"
	"strings"
)

// roleMarkerRe matches chat role-marker tokens that could steer the model
// if an attacker embeds them in issue text.
var roleMarkerRe = regexp.MustCompile(`(?im)^\s*(system|assistant|user|human|tool)\s*:`)

// markupTagRe matches HTML/XML-style tags.
var markupTagRe = regexp.MustCompile(`<[^>]*>`)

// whitespaceRe collapses runs of whitespace.
var whitespaceRe = regexp.MustCompile(`[ \t]+`)

// blankLinesRe collapses runs of blank lines.
var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// Sanitize strips prompt-injection vectors from user text before it is
// embedded in a model prompt: role markers, markup tags, and excess
// whitespace. Returns the empty string if nothing survives.
func Sanitize(text string) string {
	s := roleMarkerRe.ReplaceAllString(text, "")
	s = markupTagRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
