package priority

import (
	"context"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

// Engine tries the optional model first and silently falls back to the
// keyword classifier.
type Engine struct {
	keyword *KeywordClassifier
	model   Classifier
	log     *logging.Logger
}

func NewEngine(keyword *KeywordClassifier, model Classifier, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{keyword: keyword, model: model, log: log}
}

func (e *Engine) Rules() RuleSet {
	return e.keyword.Rules
}

func (e *Engine) Decide(ctx context.Context, text string, due *time.Time) Decision {
	if e.model != nil {
		p, err := e.model.Classify(ctx, text, due)
		if err == nil && p.Valid() {
			return Decision{Priority: p, Reason: "model"}
		}
		e.log.Debug().Err(err).Msg("model classification failed, using keyword rules")
	}
	return e.keyword.Decide(text, due)
}

// Classify never fails; it satisfies Classifier so engines can be nested.
func (e *Engine) Classify(ctx context.Context, text string, due *time.Time) (models.Priority, error) {
	return e.Decide(ctx, text, due).Priority, nil
}
