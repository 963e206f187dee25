package extractor

import (
	"context"
	"strings"
	"unicode"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

const LineStrategyName = "line"

var headerPrefixes = []string{"from:", "to:", "subject:", "sent:", "date:", "channel:", "message:"}

const bulletMarkers = "•◦-*"

// LineStrategy treats bulleted, numbered or "label: value" lines of an email
// or chat body as tasks. A document with no such line yields one review task.
type LineStrategy struct {
	deps
}

func (s *LineStrategy) Name() string { return LineStrategyName }

func (s *LineStrategy) Extract(ctx context.Context, text string, source models.SourceType) []Candidate {
	var out []Candidate

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !isTaskLine(line) {
			continue
		}
		out = append(out, s.candidate(ctx, stripMarkers(line), line, line))
	}

	if len(out) == 0 {
		out = append(out, Candidate{
			Title:       "Review " + string(source),
			Description: truncate(text, fallbackDescRunes),
			Priority:    models.PriorityMedium,
		})
	}
	return out
}

func isTaskLine(line string) bool {
	if len([]rune(line)) < 5 {
		return false
	}

	lower := strings.ToLower(line)
	for _, p := range headerPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}

	first := []rune(line)[0]
	if strings.ContainsRune(bulletMarkers, first) || unicode.IsDigit(first) {
		return true
	}
	return strings.Contains(line, ":")
}

// stripMarkers removes leading bullets and list numbering such as "1." or "2)".
func stripMarkers(line string) string {
	s := strings.TrimLeft(line, bulletMarkers+" \t")

	digits := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if digits > 0 && (s[digits] == '.' || s[digits] == ')') {
		s = s[digits+1:]
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return line
	}
	return s
}
