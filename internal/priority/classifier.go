package priority

import (
	"context"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

// Classifier assigns a priority to a piece of text.
type Classifier interface {
	Classify(ctx context.Context, text string, due *time.Time) (models.Priority, error)
}

// Decision explains how a priority was chosen.
type Decision struct {
	Priority models.Priority
	Reason   string
}

// KeywordClassifier is pure and always succeeds: keyword rules first, then
// the due date tiers, then medium.
type KeywordClassifier struct {
	Rules RuleSet
	Now   dates.Clock
}

func NewKeywordClassifier(rules RuleSet, now dates.Clock) *KeywordClassifier {
	if now == nil {
		now = time.Now
	}
	return &KeywordClassifier{Rules: rules, Now: now}
}

func (k *KeywordClassifier) Classify(_ context.Context, text string, due *time.Time) (models.Priority, error) {
	return k.Decide(text, due).Priority, nil
}

func (k *KeywordClassifier) Decide(text string, due *time.Time) Decision {
	if level, kw, ok := k.Rules.Match(text); ok {
		return Decision{Priority: level, Reason: "keyword \"" + kw + "\""}
	}

	if due != nil {
		days := dates.DaysUntil(*due, k.Now())
		switch {
		case days <= 1:
			return Decision{Priority: models.PriorityHigh, Reason: "due within 1 day"}
		case days <= 5:
			return Decision{Priority: models.PriorityMedium, Reason: "due within 5 days"}
		default:
			return Decision{Priority: models.PriorityLow, Reason: "due in more than 5 days"}
		}
	}

	return Decision{Priority: models.PriorityMedium, Reason: "default"}
}
