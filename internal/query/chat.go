package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/ranking"
)

const (
	NoMatchReply = "No tasks match your query. Would you like to see all tasks or ask something else?"
	NoTasksReply = "You don't have any tasks yet. Please extract tasks from your emails, Teams, or Loop first."

	listLimit     = 15
	priorityLimit = 3
)

type Reply struct {
	Text  string        `json:"response"`
	Tasks []models.Task `json:"tasks"`
}

// Chat narrows tasks by the time window, source, status and priority words
// found in the query, ranks the result and renders it with the template
// chosen by the query's intent.
func (e *Engine) Chat(query string, tasks []models.Task) Reply {
	q := strings.ToLower(query)
	matched := ranking.Sorted(e.narrow(q, tasks))

	if len(matched) == 0 {
		return Reply{Text: NoMatchReply, Tasks: []models.Task{}}
	}

	var text string
	switch {
	case containsAny(q, "how many", "count", "total"):
		text = countReply(matched)
	case containsAny(q, "list", "show", "what are", "get"):
		text = listReply(matched)
	case containsAny(q, "priority", "urgent"):
		text = priorityReply(matched)
	case containsAny(q, "next", "what should", "recommend"):
		text = recommendReply(matched[0])
	case containsAny(q, "summary", "overview", "status"):
		text = e.summaryReply(tasks)
	default:
		text = digestReply(matched)
	}

	return Reply{Text: text, Tasks: matched}
}

func (e *Engine) narrow(q string, tasks []models.Task) []models.Task {
	now := e.now()
	today := dates.StartOfDay(dates.ToNaive(now))

	switch {
	case strings.Contains(q, "today"):
		tasks = where(tasks, dueOn(today))
	case strings.Contains(q, "tomorrow"):
		tasks = where(tasks, dueOn(today.AddDate(0, 0, 1)))
	case strings.Contains(q, "week"):
		last := today.AddDate(0, 0, 7)
		tasks = where(tasks, func(t models.Task) bool {
			if t.DueDate == nil {
				return false
			}
			d := dates.StartOfDay(dates.ToNaive(*t.DueDate))
			return !d.Before(today) && !d.After(last)
		})
	case strings.Contains(q, "overdue"):
		tasks = where(tasks, overdueAt(now))
	}

	switch {
	case strings.Contains(q, "email") && !strings.Contains(q, "@"):
		tasks = where(tasks, withSource(models.SourceEmail))
	case strings.Contains(q, "teams"):
		tasks = where(tasks, withSource(models.SourceTeams))
	case strings.Contains(q, "loop"):
		tasks = where(tasks, withSource(models.SourceLoop))
	}

	switch {
	case containsAny(q, "pending", "incomplete"):
		tasks = where(tasks, withStatus(models.StatusPending))
	case containsAny(q, "completed", "done"):
		tasks = where(tasks, withStatus(models.StatusCompleted))
	}

	switch {
	case strings.Contains(q, "critical"):
		tasks = where(tasks, withPriority(models.PriorityCritical))
	case strings.Contains(q, "high") && strings.Contains(q, "priority"):
		tasks = where(tasks, withPriority(models.PriorityHigh))
	}

	return tasks
}

func dueOn(day time.Time) func(models.Task) bool {
	return func(t models.Task) bool {
		return t.DueDate != nil && dates.SameDay(dates.ToNaive(*t.DueDate), day)
	}
}

func countReply(tasks []models.Task) string {
	total := len(tasks)
	critical := countWhere(tasks, withPriority(models.PriorityCritical))
	high := countWhere(tasks, withPriority(models.PriorityHigh))

	var b strings.Builder
	fmt.Fprintf(&b, "You have **%d tasks** matching your criteria.\n", total)
	if critical > 0 {
		fmt.Fprintf(&b, "• %d critical (require immediate attention)\n", critical)
	}
	if high > 0 {
		fmt.Fprintf(&b, "• %d high priority (should be done soon)\n", high)
	}
	if rest := total - critical - high; rest > 0 {
		fmt.Fprintf(&b, "• %d medium/low priority (can be scheduled later)", rest)
	}
	return strings.TrimSpace(b.String())
}

func listReply(tasks []models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d tasks** found:\n\n", len(tasks))

	for i, t := range tasks {
		if i == listLimit {
			break
		}
		due := "No deadline"
		if t.DueDate != nil {
			due = t.DueDate.Format("Jan 02")
		}
		fmt.Fprintf(&b, "%s %d. **%s** (%s)\n", marker(t.Priority), i+1, t.Title, due)
	}

	if len(tasks) > listLimit {
		fmt.Fprintf(&b, "\n...and %d more tasks", len(tasks)-listLimit)
	}
	return strings.TrimSpace(b.String())
}

func priorityReply(tasks []models.Task) string {
	critical := where(tasks, withPriority(models.PriorityCritical))
	high := where(tasks, withPriority(models.PriorityHigh))

	var b strings.Builder
	b.WriteString("**Priority Analysis:**\n\n")

	if len(critical) > 0 {
		fmt.Fprintf(&b, "🔴 **CRITICAL (%d tasks)** - Act now!\n", len(critical))
		writeBullets(&b, critical)
	}
	if len(high) > 0 {
		fmt.Fprintf(&b, "\n🟠 **HIGH PRIORITY (%d tasks)** - Important\n", len(high))
		writeBullets(&b, high)
	}
	if len(critical) == 0 && len(high) == 0 {
		b.WriteString("No critical or high-priority tasks right now. Good job! 👍")
	}
	return strings.TrimSpace(b.String())
}

func writeBullets(b *strings.Builder, tasks []models.Task) {
	for i, t := range tasks {
		if i == priorityLimit {
			break
		}
		fmt.Fprintf(b, "  • %s\n", t.Title)
	}
	if len(tasks) > priorityLimit {
		fmt.Fprintf(b, "  ... and %d more\n", len(tasks)-priorityLimit)
	}
}

func recommendReply(t models.Task) string {
	var b strings.Builder
	b.WriteString("**Recommended Next Task:**\n\n")
	fmt.Fprintf(&b, "**%s**\n", t.Title)
	fmt.Fprintf(&b, "Priority: %s\n", strings.ToUpper(string(t.Priority)))
	if t.DueDate != nil {
		fmt.Fprintf(&b, "Due: %s\n", t.DueDate.Format("Monday, January 02, 2006"))
	}
	fmt.Fprintf(&b, "Source: %s\n", t.SourceType)
	b.WriteString("\n💡 Start with this task to maintain momentum!")
	return strings.TrimSpace(b.String())
}

// summaryReply reports on the whole collection, not the filtered view.
func (e *Engine) summaryReply(all []models.Task) string {
	completed := countWhere(all, withStatus(models.StatusCompleted))
	pending := countWhere(all, withStatus(models.StatusPending))
	critical := countWhere(all, withPriority(models.PriorityCritical))
	overdue := countWhere(all, overdueAt(e.now()))

	var b strings.Builder
	b.WriteString("**📊 Task Summary:**\n\n")
	fmt.Fprintf(&b, "Total Tasks: %d\n", len(all))
	fmt.Fprintf(&b, "✅ Completed: %d\n", completed)
	fmt.Fprintf(&b, "⏳ Pending: %d\n", pending)
	fmt.Fprintf(&b, "🔴 Critical: %d\n", critical)
	fmt.Fprintf(&b, "⚠️  Overdue: %d\n", overdue)

	if overdue > 0 {
		fmt.Fprintf(&b, "\n⚠️  You have %d overdue tasks! Prioritize these.", overdue)
	} else {
		b.WriteString("\n✨ You're on track! Keep up the good work.")
	}
	return strings.TrimSpace(b.String())
}

func digestReply(tasks []models.Task) string {
	critical := where(tasks, withPriority(models.PriorityCritical))
	high := where(tasks, withPriority(models.PriorityHigh))

	var b strings.Builder
	b.WriteString("**📋 Current Status:**\n\n")

	switch {
	case len(critical) > 0:
		fmt.Fprintf(&b, "🔴 **Critical**: %d tasks need immediate attention\n", len(critical))
		fmt.Fprintf(&b, "   → Start with: **%s**\n\n", critical[0].Title)
	case len(high) > 0:
		fmt.Fprintf(&b, "🟠 **High Priority**: %d important tasks\n", len(high))
		fmt.Fprintf(&b, "   → Next: **%s**\n\n", high[0].Title)
	}

	fmt.Fprintf(&b, "📊 You have %d tasks matching your criteria.\n", len(tasks))
	b.WriteString("**What else would you like to know?**")
	return strings.TrimSpace(b.String())
}

func marker(p models.Priority) string {
	switch p {
	case models.PriorityCritical:
		return "🔴"
	case models.PriorityHigh:
		return "🟠"
	case models.PriorityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
