package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/extractor"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/normalizer"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/priority"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/query"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/sources"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/store"
)

func sampleSources() models.Sources {
	return models.Sources{
		Emails: []models.OutlookEmail{{
			ID:      "email-1",
			Subject: "Quarter close",
			Body:    "Hi team,\n- Urgent: send the revenue figures today\n- Review the budget draft by Friday",
			Sender:  "cfo@example.com",
		}},
		Loop: []models.LoopTask{{
			ID:       "loop-1",
			Title:    "Renew TLS certificate",
			Priority: "low",
			DueDate:  "2025-03-20T17:00:00",
			Status:   "in-progress",
		}},
		Teams: []models.TeamsMessage{{
			ID:         "teams-1",
			Channel:    "#general",
			SenderName: "Sam",
			Message:    "Thanks everyone for a great week",
		}},
	}
}

func TestAgentService_Extract(t *testing.T) {
	svc := newAgentService(t, t.TempDir())

	res, err := svc.Extract(context.Background(), sampleSources())
	require.NoError(t, err)

	assert.Equal(t, "Tasks extracted successfully", res.Message)
	assert.Equal(t, 4, res.TotalTasks)
	assert.Equal(t, map[string]int{"email": 2, "loop": 1, "teams": 1}, res.BySource)
	assert.Len(t, svc.Tasks(), 4)
}

func TestAgentService_Extract_MalformedLoopKeepsStore(t *testing.T) {
	svc := newAgentService(t, t.TempDir())
	_, err := svc.Extract(context.Background(), sampleSources())
	require.NoError(t, err)

	bad := sampleSources()
	bad.Loop[0].DueDate = "next-ish"
	_, err = svc.Extract(context.Background(), bad)

	var perr *dates.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Len(t, svc.Tasks(), 4)
}

func TestAgentService_ExtractFromDir(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, sources.LoopFile, `[{"id":"l1","title":"Plan offsite","due_date":"2025-03-30","priority":"medium"}]`)

	svc := newAgentService(t, dir)
	res, err := svc.ExtractFromDir(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalTasks)
	assert.Equal(t, 1, res.BySource["loop"])
}

func TestAgentService_Prioritize(t *testing.T) {
	svc := newAgentService(t, t.TempDir())
	ctx := context.Background()

	_, err := svc.Prioritize(ctx)
	assert.ErrorIs(t, err, ErrNoTasks)

	_, err = svc.Extract(ctx, sampleSources())
	require.NoError(t, err)

	res, err := svc.Prioritize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalTasks)

	tasks := svc.Tasks()
	assert.Equal(t, models.PriorityCritical, tasks[0].Priority)
	for _, task := range tasks {
		assert.Contains(t, task.Metadata, "priority_reasoning")
	}
	for i := 1; i < len(tasks); i++ {
		assert.LessOrEqual(t, tasks[i-1].Priority.Rank(), tasks[i].Priority.Rank())
	}
}

// slowModel blocks every classification until released.
type slowModel struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (m *slowModel) Classify(ctx context.Context, text string, due *time.Time) (models.Priority, error) {
	m.once.Do(func() { close(m.entered) })
	<-m.release
	return models.PriorityLow, nil
}

func TestAgentService_PrioritizeDoesNotBlockReaders(t *testing.T) {
	model := &slowModel{entered: make(chan struct{}), release: make(chan struct{})}
	resolver := dates.NewResolver(clock)
	keyword := priority.NewEngine(priority.NewKeywordClassifier(priority.FourLevel, clock), nil, nil)
	slow := priority.NewEngine(priority.NewKeywordClassifier(priority.FourLevel, clock), model, nil)
	svc := NewAgentService(
		store.New(),
		normalizer.New(extractor.New(extractor.LineStrategyName, resolver, keyword)),
		slow,
		query.NewEngine(clock),
		sources.NewLoader(t.TempDir()),
		nil,
	)

	ctx := context.Background()
	_, err := svc.Extract(ctx, sampleSources())
	require.NoError(t, err)
	victim := svc.Tasks()[0].ID

	done := make(chan error, 1)
	go func() {
		_, err := svc.Prioritize(ctx)
		done <- err
	}()
	<-model.entered

	read := make(chan int, 1)
	go func() { read <- len(svc.Tasks()) }()
	select {
	case n := <-read:
		assert.Equal(t, 4, n)
	case <-time.After(time.Second):
		t.Fatal("reads blocked while the model was classifying")
	}
	require.NoError(t, svc.Delete(victim))

	close(model.release)
	require.NoError(t, <-done)

	tasks := svc.Tasks()
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		assert.NotEqual(t, victim, task.ID)
		assert.Equal(t, models.PriorityLow, task.Priority)
		assert.Contains(t, task.Metadata["priority_reasoning"], "model")
	}
}

func TestAgentService_ChatAndInsights(t *testing.T) {
	svc := newAgentService(t, t.TempDir())

	reply := svc.Chat("what is due today?")
	assert.Equal(t, query.NoTasksReply, reply.Text)

	_, ok := svc.Insights()
	assert.False(t, ok)

	_, err := svc.Extract(context.Background(), sampleSources())
	require.NoError(t, err)

	reply = svc.Chat("how many loop tasks")
	assert.NotEqual(t, query.NoMatchReply, reply.Text)
	require.Len(t, reply.Tasks, 1)
	assert.Equal(t, "Renew TLS certificate", reply.Tasks[0].Title)

	insights, ok := svc.Insights()
	require.True(t, ok)
	assert.Equal(t, 4, insights.TotalTasks)
	assert.Equal(t, 1, insights.BySource["teams"])
}

func TestAgentService_Filter(t *testing.T) {
	svc := newAgentService(t, t.TempDir())
	_, err := svc.Extract(context.Background(), sampleSources())
	require.NoError(t, err)

	got := svc.Filter(query.Criteria{SourceType: models.SourceLoop})
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusInProgress, got[0].Status)

	got = svc.Filter(query.Criteria{Priority: models.PriorityHigh, SourceType: models.SourceTeams})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestAgentService_DeleteAndUpdateStatus(t *testing.T) {
	svc := newAgentService(t, t.TempDir())
	_, err := svc.Extract(context.Background(), sampleSources())
	require.NoError(t, err)

	id := svc.Tasks()[0].ID

	task, err := svc.UpdateStatus(id, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, task.Status)

	require.NoError(t, svc.Delete(id))
	assert.ErrorIs(t, svc.Delete(id), store.ErrTaskNotFound)

	_, err = svc.UpdateStatus(uuid.Must(uuid.NewV4()), models.StatusPending)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Len(t, svc.Tasks(), 3)
}
