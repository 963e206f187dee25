package normalizer

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/extractor"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

var loopPriorities = map[string]models.Priority{
	"high":   models.PriorityHigh,
	"medium": models.PriorityMedium,
	"low":    models.PriorityLow,
}

var loopStatuses = map[string]models.Status{
	"pending":     models.StatusPending,
	"in-progress": models.StatusInProgress,
	"completed":   models.StatusCompleted,
}

// Normalizer turns raw source documents into canonical tasks and owns task
// identity.
type Normalizer struct {
	strategy extractor.Strategy
	newID    func() uuid.UUID
}

func New(strategy extractor.Strategy) *Normalizer {
	return &Normalizer{
		strategy: strategy,
		newID:    func() uuid.UUID { return uuid.Must(uuid.NewV4()) },
	}
}

func (n *Normalizer) FromEmail(ctx context.Context, e models.OutlookEmail) []models.Task {
	content := e.Subject + "\n" + e.Body
	tasks := n.fromCandidates(n.strategy.Extract(ctx, content, models.SourceEmail), models.SourceEmail, e.ID)
	for i := range tasks {
		tasks[i].SetMetadata("email_subject", e.Subject)
		tasks[i].SetMetadata("sender", e.SenderName)
		tasks[i].SetMetadata("sender_email", e.Sender)
	}
	return tasks
}

func (n *Normalizer) FromTeams(ctx context.Context, m models.TeamsMessage) []models.Task {
	content := m.Channel + "\n" + m.SenderName + "\n" + m.Message
	tasks := n.fromCandidates(n.strategy.Extract(ctx, content, models.SourceTeams), models.SourceTeams, m.ID)
	for i := range tasks {
		tasks[i].SetMetadata("channel", m.Channel)
		tasks[i].SetMetadata("sender", m.SenderName)
		mentions := m.Mentions
		if mentions == nil {
			mentions = []string{}
		}
		tasks[i].SetMetadata("mentions", mentions)
	}
	return tasks
}

// FromLoop maps a structured to-do item onto exactly one task. A malformed
// due date is the caller's problem and is returned as an error.
func (n *Normalizer) FromLoop(l models.LoopTask) (models.Task, error) {
	due, err := dates.ParseISO(l.DueDate)
	if err != nil {
		return models.Task{}, fmt.Errorf("loop task %s: %w", l.ID, err)
	}

	p, ok := loopPriorities[l.Priority]
	if !ok {
		p = models.PriorityMedium
	}
	st, ok := loopStatuses[l.Status]
	if !ok {
		st = models.StatusPending
	}

	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}

	return models.Task{
		ID:          n.newID(),
		Title:       l.Title,
		Description: l.Description,
		SourceType:  models.SourceLoop,
		SourceID:    l.ID,
		Priority:    p,
		DueDate:     &due,
		Status:      st,
		AssignedTo:  l.AssignedTo,
		Metadata:    map[string]any{"tags": tags},
	}, nil
}

// Normalize converts a whole batch. The first malformed loop item aborts the
// batch so a half-built collection is never published.
func (n *Normalizer) Normalize(ctx context.Context, src models.Sources) ([]models.Task, error) {
	var tasks []models.Task

	for _, e := range src.Emails {
		tasks = append(tasks, n.FromEmail(ctx, e)...)
	}
	for _, l := range src.Loop {
		t, err := n.FromLoop(l)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	for _, m := range src.Teams {
		tasks = append(tasks, n.FromTeams(ctx, m)...)
	}

	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (n *Normalizer) fromCandidates(cs []extractor.Candidate, source models.SourceType, sourceID string) []models.Task {
	tasks := make([]models.Task, 0, len(cs))
	for _, c := range cs {
		tasks = append(tasks, models.Task{
			ID:          n.newID(),
			Title:       c.Title,
			Description: c.Description,
			SourceType:  source,
			SourceID:    sourceID,
			Priority:    c.Priority,
			DueDate:     c.DueDate,
			Status:      models.StatusPending,
			AssignedTo:  c.AssignedTo,
			Metadata:    map[string]any{},
		})
	}
	return tasks
}
