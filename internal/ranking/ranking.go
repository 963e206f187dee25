package ranking

import (
	"context"
	"sort"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/priority"
)

// Before reports whether a ranks ahead of b: lower priority rank first,
// then earlier due date, with undated tasks after every dated one.
func Before(a, b models.Task) bool {
	ra, rb := a.Priority.Rank(), b.Priority.Rank()
	if ra != rb {
		return ra < rb
	}

	switch {
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	}
	return dates.ToNaive(*a.DueDate).Before(dates.ToNaive(*b.DueDate))
}

// Sort orders tasks in place. Equal keys keep their input order.
func Sort(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return Before(tasks[i], tasks[j])
	})
}

// Sorted returns a ranked copy and leaves the input untouched.
func Sorted(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	Sort(out)
	return out
}

// Prioritize re-derives every priority from the task text when a classifier
// is given, records the reasoning in metadata, then sorts in place.
func Prioritize(ctx context.Context, tasks []models.Task, classifier *priority.Engine) []models.Task {
	if classifier != nil {
		for i := range tasks {
			t := &tasks[i]
			d := classifier.Decide(ctx, t.Title+" "+t.Description, t.DueDate)
			t.Priority = d.Priority
			t.SetMetadata("priority_reasoning", "Re-prioritized to "+string(d.Priority)+" ("+d.Reason+")")
		}
	}
	Sort(tasks)
	return tasks
}

// Due returns the naive due date, or ok=false for undated tasks.
func Due(t models.Task) (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	return dates.ToNaive(*t.DueDate), true
}
