package query

import (
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

// Criteria fields are optional and combine with AND. Tasks without a due
// date never match a date bound.
type Criteria struct {
	Start      *time.Time
	End        *time.Time
	SourceType models.SourceType
	Priority   models.Priority
	Status     models.Status
}

func Filter(tasks []models.Task, c Criteria) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c Criteria) matches(t models.Task) bool {
	if c.Start != nil || c.End != nil {
		if t.DueDate == nil {
			return false
		}
		due := dates.ToNaive(*t.DueDate)
		if c.Start != nil && due.Before(dates.ToNaive(*c.Start)) {
			return false
		}
		if c.End != nil && due.After(dates.ToNaive(*c.End)) {
			return false
		}
	}
	if c.SourceType != "" && t.SourceType != c.SourceType {
		return false
	}
	if c.Priority != "" && t.Priority != c.Priority {
		return false
	}
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	return true
}

func where(tasks []models.Task, keep func(models.Task) bool) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func countWhere(tasks []models.Task, keep func(models.Task) bool) int {
	n := 0
	for _, t := range tasks {
		if keep(t) {
			n++
		}
	}
	return n
}

func withPriority(p models.Priority) func(models.Task) bool {
	return func(t models.Task) bool { return t.Priority == p }
}

func withStatus(s models.Status) func(models.Task) bool {
	return func(t models.Task) bool { return t.Status == s }
}

func withSource(s models.SourceType) func(models.Task) bool {
	return func(t models.Task) bool { return t.SourceType == s }
}

func overdueAt(now time.Time) func(models.Task) bool {
	naiveNow := dates.ToNaive(now)
	return func(t models.Task) bool {
		return t.DueDate != nil && dates.ToNaive(*t.DueDate).Before(naiveNow)
	}
}
