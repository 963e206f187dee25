package extractor

import (
	"context"
	"strings"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

const SentenceStrategyName = "sentence"

var actionVerbs = []string{"please", "action", "complete", "update", "prepare", "send", "submit", "resolve"}

// SentenceStrategy keeps every sentence that contains an action verb. It has
// no fallback: a document without one yields nothing.
type SentenceStrategy struct {
	deps
}

func (s *SentenceStrategy) Name() string { return SentenceStrategyName }

func (s *SentenceStrategy) Extract(ctx context.Context, text string, _ models.SourceType) []Candidate {
	flat := strings.ReplaceAll(text, "\n", " ")

	var out []Candidate
	for _, sentence := range strings.Split(flat, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" || !hasActionVerb(sentence) {
			continue
		}
		out = append(out, s.candidate(ctx, sentence, sentence, sentence))
	}
	return out
}

func hasActionVerb(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, v := range actionVerbs {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}
