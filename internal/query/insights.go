package query

import (
	"fmt"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

const upcomingWindowDays = 3

var recommendations = []string{
	"Focus on critical and high-priority tasks first.",
	"Review upcoming deadlines to plan your week effectively.",
	"Consider breaking down large tasks into smaller subtasks.",
}

type Insights struct {
	TotalTasks        int            `json:"total_tasks"`
	ByPriority        map[string]int `json:"by_priority"`
	BySource          map[string]int `json:"by_source"`
	OverdueTasks      int            `json:"overdue_tasks"`
	UpcomingDeadlines []string       `json:"upcoming_deadlines"`
	KeyInsights       []string       `json:"key_insights"`
	Recommendations   []string       `json:"recommendations"`
}

func (e *Engine) Insights(tasks []models.Task) Insights {
	now := dates.ToNaive(e.now())
	horizon := now.AddDate(0, 0, upcomingWindowDays)

	byPriority := map[string]int{}
	for _, p := range []models.Priority{models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		byPriority[string(p)] = countWhere(tasks, withPriority(p))
	}

	bySource := map[string]int{}
	for _, s := range []models.SourceType{models.SourceEmail, models.SourceTeams, models.SourceLoop} {
		bySource[string(s)] = countWhere(tasks, withSource(s))
	}

	overdue := 0
	upcoming := []string{}
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := dates.ToNaive(*t.DueDate)
		if due.Before(now) {
			overdue++
		}
		if !due.Before(now) && !due.After(horizon) {
			upcoming = append(upcoming, t.Title)
		}
	}

	critical := byPriority[string(models.PriorityCritical)]
	var key []string
	if critical > 0 {
		key = append(key, fmt.Sprintf("You have %d critical tasks that need immediate attention.", critical))
	}
	key = append(key, fmt.Sprintf("%d tasks from emails, %d from Teams, %d from Loop.",
		bySource[string(models.SourceEmail)], bySource[string(models.SourceTeams)], bySource[string(models.SourceLoop)]))
	if overdue > 0 {
		key = append(key, fmt.Sprintf("Total of %d overdue tasks.", overdue))
	}

	recs := make([]string, len(recommendations))
	copy(recs, recommendations)

	return Insights{
		TotalTasks:        len(tasks),
		ByPriority:        byPriority,
		BySource:          bySource,
		OverdueTasks:      overdue,
		UpcomingDeadlines: upcoming,
		KeyInsights:       key,
		Recommendations:   recs,
	}
}
