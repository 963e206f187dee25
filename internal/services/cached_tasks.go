package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/cache"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

const (
	tasksTag = "tasks"

	defaultListTTL = 5 * time.Minute
	warmSkip       = 0
	warmLimit      = 100
)

// CachedTaskService caches the read paths of a TaskService. Every write
// drops all cached listings through the shared tag.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.MultiLevelCache
	ttl         time.Duration
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.MultiLevelCache, ttl time.Duration) *CachedTaskService {
	if ttl <= 0 {
		ttl = defaultListTTL
	}
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
		ttl:         ttl,
	}
}

func listKey(skip, limit int) string {
	return fmt.Sprintf("tasks:%d:%d", skip, limit)
}

func rangeKey(start, end *time.Time) string {
	return fmt.Sprintf("range:%s:%s", dayKey(start), dayKey(end))
}

func dayKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return utcDay(*t).Format("2006-01-02")
}

func (s *CachedTaskService) List(ctx context.Context, skip, limit int) ([]models.StoredTask, error) {
	cacheKey := listKey(skip, limit)

	var cachedTasks []models.StoredTask
	if err := s.cache.Get(ctx, cacheKey, &cachedTasks); err == nil {
		return cachedTasks, nil
	}

	tasks, err := s.taskService.List(ctx, skip, limit)
	if err != nil {
		return tasks, err
	}

	_ = s.cache.Set(ctx, cacheKey, tasks, s.ttl, tasksTag)
	return tasks, nil
}

func (s *CachedTaskService) ListByRange(ctx context.Context, start, end *time.Time) ([]models.StoredTask, error) {
	cacheKey := rangeKey(start, end)

	var cachedTasks []models.StoredTask
	if err := s.cache.Get(ctx, cacheKey, &cachedTasks); err == nil {
		return cachedTasks, nil
	}

	tasks, err := s.taskService.ListByRange(ctx, start, end)
	if err != nil {
		return tasks, err
	}

	_ = s.cache.Set(ctx, cacheKey, tasks, s.ttl, tasksTag)
	return tasks, nil
}

func (s *CachedTaskService) Extract(ctx context.Context, req models.ExtractRequest) ([]models.StoredTask, error) {
	added, err := s.taskService.Extract(ctx, req)
	if err == nil {
		s.invalidate(ctx)
	}
	return added, err
}

// Chat is not cached; its answers depend on the current day.
func (s *CachedTaskService) Chat(ctx context.Context, message string) (ChatReply, error) {
	return s.taskService.Chat(ctx, message)
}

func (s *CachedTaskService) ReloadMock(ctx context.Context) (int64, error) {
	n, err := s.taskService.ReloadMock(ctx)
	if err == nil {
		s.invalidate(ctx)
	}
	return n, err
}

func (s *CachedTaskService) UpdateStatus(ctx context.Context, id uint, status string) (models.StoredTask, error) {
	task, err := s.taskService.UpdateStatus(ctx, id, status)
	if err == nil {
		s.invalidate(ctx)
	}
	return task, err
}

func (s *CachedTaskService) Delete(ctx context.Context, id uint) error {
	err := s.taskService.Delete(ctx, id)
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CachedTaskService) invalidate(ctx context.Context) {
	s.cache.InvalidateTag(ctx, tasksTag)
	s.cache.DeletePattern(ctx, "tasks:*")
	s.cache.DeletePattern(ctx, "range:*")
}

// WarmCriticalData preloads the default listing served to the dashboard.
func (s *CachedTaskService) WarmCriticalData(ctx context.Context) error {
	tasks, err := s.taskService.List(ctx, warmSkip, warmLimit)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, listKey(warmSkip, warmLimit), tasks, s.ttl, tasksTag)
}

func (s *CachedTaskService) GetCacheStats() map[string]any {
	return s.cache.Stats()
}
