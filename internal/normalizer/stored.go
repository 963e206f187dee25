package normalizer

import (
	"context"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/extractor"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/priority"
)

// StoredNormalizer builds rows for the database-backed pipeline. Its date
// handling is lenient: an unparseable ETA is dropped, not reported.
type StoredNormalizer struct {
	strategy   extractor.Strategy
	resolver   *dates.Resolver
	classifier *priority.Engine
}

func NewStored(strategy extractor.Strategy, resolver *dates.Resolver, classifier *priority.Engine) *StoredNormalizer {
	return &StoredNormalizer{strategy: strategy, resolver: resolver, classifier: classifier}
}

func (n *StoredNormalizer) FromTodo(ctx context.Context, t models.TodoItem) models.StoredTask {
	var eta *time.Time
	if t.ETADate != nil {
		eta = dateOnly(n.resolver.ParseLenient(*t.ETADate))
	}

	return models.StoredTask{
		Title:         t.TaskTitle,
		Source:        models.StoredSourceTodo,
		ETA:           eta,
		Priority:      models.StoredPriorityFor(n.classifier.Decide(ctx, t.TaskTitle, eta).Priority),
		Status:        models.StoredStatusPending,
		ExtractedFrom: t.TaskTitle,
	}
}

func (n *StoredNormalizer) FromEmail(ctx context.Context, e models.EmailItem) []models.StoredTask {
	var out []models.StoredTask
	for _, c := range n.strategy.Extract(ctx, e.EmailBody, models.SourceEmail) {
		out = append(out, models.StoredTask{
			Title:         c.Title,
			Source:        models.StoredSourceEmail,
			SourceRef:     e.Subject,
			ETA:           dateOnly(c.DueDate),
			Priority:      models.StoredPriorityFor(c.Priority),
			Status:        models.StoredStatusPending,
			ExtractedFrom: c.Description,
		})
	}
	return out
}

func (n *StoredNormalizer) Normalize(ctx context.Context, req models.ExtractRequest) []models.StoredTask {
	var out []models.StoredTask
	for _, t := range req.Todos {
		out = append(out, n.FromTodo(ctx, t))
	}
	for _, e := range req.Emails {
		out = append(out, n.FromEmail(ctx, e)...)
	}
	return out
}

// dateOnly keeps the calendar day of t at UTC midnight. The ETA column is a
// date, so every driver must compare the same representation.
func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
