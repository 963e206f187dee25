package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/query"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/services"
)

type styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Accent  lipgloss.Style
}

func newStyles() styles {
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Accent:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
	}
}

var priorityColors = map[models.Priority]lipgloss.Color{
	models.PriorityCritical: lipgloss.Color("196"),
	models.PriorityHigh:     lipgloss.Color("208"),
	models.PriorityMedium:   lipgloss.Color("220"),
	models.PriorityLow:      lipgloss.Color("76"),
}

func priorityBadge(p models.Priority) string {
	return lipgloss.NewStyle().Bold(true).Foreground(priorityColors[p]).Render(fmt.Sprintf("%-8s", p))
}

func renderExtract(res services.ExtractResult) string {
	s := newStyles()
	var b strings.Builder
	b.WriteString(s.Title.Render(res.Message))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %d\n", s.Label.Render("Total:"), res.TotalTasks))
	for _, src := range sortedKeys(res.BySource) {
		b.WriteString(fmt.Sprintf("  %s %d\n", s.Label.Render(src+":"), res.BySource[src]))
	}
	return b.String()
}

func renderTasks(tasks []models.Task) string {
	s := newStyles()
	if len(tasks) == 0 {
		return s.Muted.Render("No tasks.") + "\n"
	}

	var b strings.Builder
	for _, t := range tasks {
		due := "no due date"
		if t.DueDate != nil {
			due = t.DueDate.Format("Mon Jan 2")
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			priorityBadge(t.Priority),
			t.Title,
			s.Muted.Render(fmt.Sprintf("(%s, %s, %s)", t.SourceType, t.Status, due)),
		))
	}
	return b.String()
}

func renderReply(reply query.Reply) string {
	return newStyles().Accent.Render("agent") + " " + reply.Text + "\n"
}

func renderStoredReply(reply services.ChatReply) string {
	s := newStyles()
	var b strings.Builder
	b.WriteString(s.Accent.Render("agent") + " " + reply.Reply + "\n")
	for _, t := range reply.Tasks {
		b.WriteString(fmt.Sprintf("  #%d %s %s\n", t.ID, t.Title, s.Muted.Render("("+t.Priority+")")))
	}
	if reply.Counts != nil {
		for _, p := range sortedKeys(reply.Counts.ByPriority) {
			b.WriteString(fmt.Sprintf("  %s %d\n", s.Label.Render(p+":"), reply.Counts.ByPriority[p]))
		}
	}
	return b.String()
}

func renderInsights(in query.Insights) string {
	s := newStyles()
	var b strings.Builder
	b.WriteString(s.Title.Render("Task insights"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %d\n", s.Label.Render("Total:"), in.TotalTasks))
	b.WriteString(fmt.Sprintf("  %s %d\n", s.Label.Render("Overdue:"), in.OverdueTasks))

	b.WriteString(s.Section.Render("By priority"))
	b.WriteString("\n")
	for _, p := range []models.Priority{models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		b.WriteString(fmt.Sprintf("  %s %d\n", priorityBadge(p), in.ByPriority[string(p)]))
	}

	writeList(&b, s, "Upcoming deadlines", in.UpcomingDeadlines)
	writeList(&b, s, "Key insights", in.KeyInsights)
	writeList(&b, s, "Recommendations", in.Recommendations)
	return b.String()
}

func writeList(b *strings.Builder, s styles, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(s.Section.Render(title))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("  - " + item + "\n")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
