package extractor

import (
	"context"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/priority"
)

const (
	maxTitleRunes       = 80
	maxDescriptionRunes = 200
	fallbackDescRunes   = 100
)

// Candidate is a task found in a document before identity and provenance
// are attached.
type Candidate struct {
	Title       string
	Description string
	Priority    models.Priority
	DueDate     *time.Time
	AssignedTo  string
}

// Strategy finds task candidates in one document of the given source type.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, text string, source models.SourceType) []Candidate
}

type deps struct {
	resolver   *dates.Resolver
	classifier *priority.Engine
}

func (d deps) candidate(ctx context.Context, title, description, basis string) Candidate {
	var due *time.Time
	if t, ok := d.resolver.Resolve(basis); ok {
		due = &t
	}
	return Candidate{
		Title:       truncate(title, maxTitleRunes),
		Description: truncate(description, maxDescriptionRunes),
		Priority:    d.classifier.Decide(ctx, basis, due).Priority,
		DueDate:     due,
	}
}

// New returns the strategy registered under name. Unknown names fall back
// to the line strategy.
func New(name string, resolver *dates.Resolver, classifier *priority.Engine) Strategy {
	d := deps{resolver: resolver, classifier: classifier}
	switch name {
	case SentenceStrategyName:
		return &SentenceStrategy{deps: d}
	default:
		return &LineStrategy{deps: d}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
