package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/monitoring"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/normalizer"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/priority"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/query"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/ranking"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/sources"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/store"
)

const agentPipeline = "agent"

var ErrNoTasks = errors.New("no tasks to prioritize, please extract tasks first")

type ExtractResult struct {
	Message    string         `json:"message"`
	TotalTasks int            `json:"total_tasks"`
	BySource   map[string]int `json:"by_source"`
}

type PrioritizeResult struct {
	Message    string `json:"message"`
	TotalTasks int    `json:"total_tasks"`
}

// AgentService runs the in-memory pipeline: sources are normalized into the
// store, which chat, insights and filter read from.
type AgentService struct {
	store      *store.Store
	normalizer *normalizer.Normalizer
	classifier *priority.Engine
	query      *query.Engine
	loader     *sources.Loader
	log        *logging.Logger

	// extractMu serializes whole extraction runs so a watcher-triggered
	// reload cannot interleave with an API call.
	extractMu sync.Mutex
}

func NewAgentService(
	st *store.Store,
	n *normalizer.Normalizer,
	classifier *priority.Engine,
	q *query.Engine,
	loader *sources.Loader,
	log *logging.Logger,
) *AgentService {
	if log == nil {
		log = logging.Nop()
	}
	return &AgentService{
		store:      st,
		normalizer: n,
		classifier: classifier,
		query:      q,
		loader:     loader,
		log:        log,
	}
}

func (s *AgentService) Tasks() []models.Task {
	return s.store.All()
}

// Extract rebuilds the collection from src. On error the previous
// collection is left untouched.
func (s *AgentService) Extract(ctx context.Context, src models.Sources) (ExtractResult, error) {
	s.extractMu.Lock()
	defer s.extractMu.Unlock()

	tasks, err := s.normalizer.Normalize(ctx, src)
	monitoring.RecordExtraction(agentPipeline, len(tasks), err)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("error extracting tasks: %w", err)
	}

	s.store.Replace(tasks)
	s.log.Info().
		Int("emails", len(src.Emails)).
		Int("teams", len(src.Teams)).
		Int("loop", len(src.Loop)).
		Int("tasks", len(tasks)).
		Msg("tasks extracted")

	return ExtractResult{
		Message:    "Tasks extracted successfully",
		TotalTasks: len(tasks),
		BySource: map[string]int{
			string(models.SourceEmail): countSource(tasks, models.SourceEmail),
			string(models.SourceLoop):  countSource(tasks, models.SourceLoop),
			string(models.SourceTeams): countSource(tasks, models.SourceTeams),
		},
	}, nil
}

// ExtractFromDir loads the data directory and extracts from it.
func (s *AgentService) ExtractFromDir(ctx context.Context) (ExtractResult, error) {
	if s.loader == nil {
		return ExtractResult{}, errors.New("no data directory configured")
	}
	src, err := s.loader.Sources()
	if err != nil {
		monitoring.RecordExtraction(agentPipeline, 0, err)
		return ExtractResult{}, fmt.Errorf("error extracting tasks: %w", err)
	}
	return s.Extract(ctx, src)
}

func (s *AgentService) Prioritize(ctx context.Context) (PrioritizeResult, error) {
	// Classification may call out to the model, so it runs on a snapshot
	// and only the merge takes the write lock.
	snapshot := s.store.All()
	n := len(snapshot)
	if n == 0 {
		return PrioritizeResult{}, ErrNoTasks
	}
	s.store.Apply(ranking.Prioritize(ctx, snapshot, s.classifier))

	monitoring.RecordPrioritize()
	return PrioritizeResult{Message: "Tasks prioritized successfully", TotalTasks: n}, nil
}

func (s *AgentService) Chat(message string) query.Reply {
	monitoring.RecordChat(agentPipeline)
	tasks := s.store.All()
	if len(tasks) == 0 {
		return query.Reply{Text: query.NoTasksReply}
	}
	return s.query.Chat(message, tasks)
}

// Insights reports ok=false when there is nothing to analyse.
func (s *AgentService) Insights() (query.Insights, bool) {
	tasks := s.store.All()
	if len(tasks) == 0 {
		return query.Insights{}, false
	}
	return s.query.Insights(tasks), true
}

func (s *AgentService) Filter(c query.Criteria) []models.Task {
	return query.Filter(s.store.All(), c)
}

func (s *AgentService) Delete(id uuid.UUID) error {
	return s.store.Delete(id)
}

func (s *AgentService) UpdateStatus(id uuid.UUID, status models.Status) (models.Task, error) {
	return s.store.UpdateStatus(id, status)
}

func countSource(tasks []models.Task, src models.SourceType) int {
	n := 0
	for _, t := range tasks {
		if t.SourceType == src {
			n++
		}
	}
	return n
}
