package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/database"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/monitoring"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/normalizer"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/repositories"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/sources"
)

const (
	dbPipeline = "db"

	pendingReplyLimit = 5
	weekDays          = 7
)

// TaskService is the database-backed pipeline. Each call runs in its own
// session.
type TaskService interface {
	List(ctx context.Context, skip, limit int) ([]models.StoredTask, error)
	ListByRange(ctx context.Context, start, end *time.Time) ([]models.StoredTask, error)
	Extract(ctx context.Context, req models.ExtractRequest) ([]models.StoredTask, error)
	Chat(ctx context.Context, message string) (ChatReply, error)
	ReloadMock(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) (models.StoredTask, error)
	Delete(ctx context.Context, id uint) error
}

type ChatCounts struct {
	Total      int64            `json:"total"`
	ByPriority map[string]int64 `json:"by_priority"`
}

type ChatReply struct {
	Reply  string              `json:"reply"`
	Tasks  []models.StoredTask `json:"tasks,omitempty"`
	Counts *ChatCounts         `json:"counts,omitempty"`
}

type taskService struct {
	pool       *database.DatabasePool
	repo       *repositories.TaskRepository
	normalizer *normalizer.StoredNormalizer
	loader     *sources.Loader
	now        dates.Clock
	log        *logging.Logger
}

func NewTaskService(
	pool *database.DatabasePool,
	repo *repositories.TaskRepository,
	n *normalizer.StoredNormalizer,
	loader *sources.Loader,
	now dates.Clock,
	log *logging.Logger,
) TaskService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logging.Nop()
	}
	return &taskService{pool: pool, repo: repo, normalizer: n, loader: loader, now: now, log: log}
}

func (s *taskService) List(ctx context.Context, skip, limit int) ([]models.StoredTask, error) {
	var tasks []models.StoredTask
	err := s.pool.WithSession(ctx, func(tx *gorm.DB) error {
		var err error
		tasks, err = s.repo.List(tx, skip, limit)
		return err
	})
	return tasks, err
}

func (s *taskService) ListByRange(ctx context.Context, start, end *time.Time) ([]models.StoredTask, error) {
	var tasks []models.StoredTask
	err := s.pool.WithSession(ctx, func(tx *gorm.DB) error {
		var err error
		tasks, err = s.repo.ListByDateRange(tx, dayBound(start), dayBound(end))
		return err
	})
	return tasks, err
}

func (s *taskService) Extract(ctx context.Context, req models.ExtractRequest) ([]models.StoredTask, error) {
	rows := s.normalizer.Normalize(ctx, req)
	err := s.pool.WithSession(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateBatch(tx, rows)
	})
	monitoring.RecordExtraction(dbPipeline, len(rows), err)
	if err != nil {
		return nil, fmt.Errorf("store extracted tasks: %w", err)
	}

	s.log.Info().Int("todos", len(req.Todos)).Int("emails", len(req.Emails)).Int("added", len(rows)).Msg("tasks stored")
	if rows == nil {
		rows = []models.StoredTask{}
	}
	return rows, nil
}

// Chat answers the small fixed vocabulary of the database pipeline:
// today, this week, summary/total, otherwise the top pending tasks.
func (s *taskService) Chat(ctx context.Context, message string) (ChatReply, error) {
	monitoring.RecordChat(dbPipeline)
	text := strings.ToLower(message)
	today := utcDay(s.now())

	var reply ChatReply
	err := s.pool.WithSession(ctx, func(tx *gorm.DB) error {
		switch {
		case strings.Contains(text, "today"):
			tasks, err := s.repo.ListByDateRange(tx, &today, &today)
			if err != nil {
				return err
			}
			reply = ChatReply{Reply: fmt.Sprintf("You have %d task(s) due today.", len(tasks)), Tasks: nonNil(tasks)}

		case strings.Contains(text, "this week"):
			end := today.AddDate(0, 0, weekDays)
			tasks, err := s.repo.ListByDateRange(tx, &today, &end)
			if err != nil {
				return err
			}
			reply = ChatReply{Reply: fmt.Sprintf("You have %d task(s) due this week.", len(tasks)), Tasks: nonNil(tasks)}

		case strings.Contains(text, "summary") || strings.Contains(text, "total"):
			total, err := s.repo.Count(tx)
			if err != nil {
				return err
			}
			byPriority, err := s.repo.CountByPriority(tx)
			if err != nil {
				return err
			}
			reply = ChatReply{
				Reply:  fmt.Sprintf("Total tasks: %d", total),
				Counts: &ChatCounts{Total: total, ByPriority: byPriority},
			}

		default:
			tasks, err := s.repo.ListByStatus(tx, models.StoredStatusPending, pendingReplyLimit)
			if err != nil {
				return err
			}
			reply = ChatReply{Reply: fmt.Sprintf("Here are your top %d pending tasks.", len(tasks)), Tasks: nonNil(tasks)}
		}
		return nil
	})
	return reply, err
}

// ReloadMock clears the table and reseeds it from the mock files. The
// files are read before the table is touched.
func (s *taskService) ReloadMock(ctx context.Context) (int64, error) {
	if s.loader == nil {
		return 0, errors.New("no mock data directory configured")
	}
	req, err := s.loader.Mock()
	if err != nil {
		return 0, fmt.Errorf("load mock data: %w", err)
	}

	todos := s.normalizer.Normalize(ctx, models.ExtractRequest{Todos: req.Todos})
	emails := s.normalizer.Normalize(ctx, models.ExtractRequest{Emails: req.Emails})

	var count int64
	err = s.pool.WithSession(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteAll(tx); err != nil {
			return err
		}
		if err := s.repo.CreateBatch(tx, todos); err != nil {
			return err
		}
		if err := s.repo.CreateBatch(tx, emails); err != nil {
			return err
		}
		var err error
		count, err = s.repo.Count(tx)
		return err
	})
	monitoring.RecordExtraction(dbPipeline, int(count), err)
	if err != nil {
		return 0, fmt.Errorf("reload mock data: %w", err)
	}

	s.log.Info().Int64("count", count).Str("dir", s.loader.Dir()).Msg("mock data reloaded")
	return count, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, id uint, status string) (models.StoredTask, error) {
	var task models.StoredTask
	err := s.pool.WithSession(ctx, func(tx *gorm.DB) error {
		var err error
		task, err = s.repo.UpdateStatus(tx, id, status)
		return err
	})
	return task, err
}

func (s *taskService) Delete(ctx context.Context, id uint) error {
	return s.pool.WithSession(ctx, func(tx *gorm.DB) error {
		return s.repo.Delete(tx, id)
	})
}

func utcDay(t time.Time) time.Time {
	n := dates.ToNaive(t)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// dayBound reduces a range bound to its calendar day, matching the
// date-only ETA column.
func dayBound(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := utcDay(*t)
	return &d
}

func nonNil(tasks []models.StoredTask) []models.StoredTask {
	if tasks == nil {
		return []models.StoredTask{}
	}
	return tasks
}
