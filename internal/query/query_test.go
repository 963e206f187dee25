package query

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 12 March 2025, 10:00.
var fixedNow = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func on(day, hour int) *time.Time {
	t := time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func fixture() []models.Task {
	return []models.Task{
		{Title: "Fix prod outage", SourceType: models.SourceEmail, Priority: models.PriorityCritical, Status: models.StatusPending, DueDate: on(12, 17)},
		{Title: "Send invoice", SourceType: models.SourceEmail, Priority: models.PriorityHigh, Status: models.StatusPending, DueDate: on(13, 9)},
		{Title: "Renew cert", SourceType: models.SourceLoop, Priority: models.PriorityHigh, Status: models.StatusCompleted, DueDate: on(10, 9)},
		{Title: "Team lunch", SourceType: models.SourceTeams, Priority: models.PriorityLow, Status: models.StatusPending, DueDate: on(18, 12)},
		{Title: "Read RFC", SourceType: models.SourceTeams, Priority: models.PriorityMedium, Status: models.StatusInProgress},
		{Title: "Quarterly plan", SourceType: models.SourceLoop, Priority: models.PriorityMedium, Status: models.StatusPending, DueDate: on(30, 9)},
	}
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestChat_TimeWindows(t *testing.T) {
	e := NewEngine(clock)

	tests := []struct {
		query    string
		expected []string
	}{
		{"what is due today", []string{"Fix prod outage"}},
		{"anything for tomorrow", []string{"Send invoice"}},
		{"this week please", []string{"Fix prod outage", "Send invoice", "Team lunch"}},
		{"overdue items", []string{"Renew cert"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, titles(e.Chat(tt.query, fixture()).Tasks))
		})
	}
}

func TestChat_SourceStatusPriorityFilters(t *testing.T) {
	e := NewEngine(clock)

	assert.Equal(t, []string{"Fix prod outage", "Send invoice"}, titles(e.Chat("email tasks", fixture()).Tasks))
	assert.Len(t, e.Chat("tasks from bob@email.com", fixture()).Tasks, 6)
	assert.Equal(t, []string{"Read RFC", "Team lunch"}, titles(e.Chat("teams stuff", fixture()).Tasks))
	assert.Equal(t, []string{"Renew cert"}, titles(e.Chat("completed loop", fixture()).Tasks))
	assert.Equal(t, []string{"Fix prod outage"}, titles(e.Chat("critical", fixture()).Tasks))
	assert.Equal(t, []string{"Renew cert", "Send invoice"}, titles(e.Chat("high priority", fixture()).Tasks))
}

func TestChat_NoMatch(t *testing.T) {
	e := NewEngine(clock)

	r := e.Chat("critical teams", fixture())

	assert.Equal(t, NoMatchReply, r.Text)
	assert.Empty(t, r.Tasks)
	assert.Equal(t, NoMatchReply, e.Chat("list", nil).Text)
}

func TestChat_CountTemplate(t *testing.T) {
	e := NewEngine(clock)

	r := e.Chat("how many pending", fixture())

	assert.Equal(t, "You have **4 tasks** matching your criteria.\n"+
		"• 1 critical (require immediate attention)\n"+
		"• 1 high priority (should be done soon)\n"+
		"• 2 medium/low priority (can be scheduled later)", r.Text)
}

func TestChat_ListTemplate(t *testing.T) {
	e := NewEngine(clock)

	r := e.Chat("show email", fixture())

	assert.Equal(t, "**2 tasks** found:\n\n"+
		"🔴 1. **Fix prod outage** (Mar 12)\n"+
		"🟠 2. **Send invoice** (Mar 13)", r.Text)
}

func TestChat_ListTemplateOverflow(t *testing.T) {
	e := NewEngine(clock)

	var tasks []models.Task
	for i := 0; i < 18; i++ {
		tasks = append(tasks, models.Task{Title: fmt.Sprintf("task %d", i), Priority: models.PriorityMedium})
	}

	r := e.Chat("list", tasks)

	assert.Contains(t, r.Text, "**18 tasks** found:")
	assert.Contains(t, r.Text, "🟡 15. **task 14** (No deadline)")
	assert.NotContains(t, r.Text, "16.")
	assert.True(t, strings.HasSuffix(r.Text, "...and 3 more tasks"))
}

func TestChat_PriorityTemplate(t *testing.T) {
	e := NewEngine(clock)

	r := e.Chat("anything urgent", fixture())
	assert.Equal(t, "**Priority Analysis:**\n\n"+
		"🔴 **CRITICAL (1 tasks)** - Act now!\n"+
		"  • Fix prod outage\n\n"+
		"🟠 **HIGH PRIORITY (2 tasks)** - Important\n"+
		"  • Renew cert\n"+
		"  • Send invoice", r.Text)

	calm := []models.Task{{Title: "Read RFC", Priority: models.PriorityLow}}
	assert.Equal(t, "**Priority Analysis:**\n\nNo critical or high-priority tasks right now. Good job! 👍",
		e.Chat("urgent", calm).Text)
}

func TestChat_RecommendTemplate(t *testing.T) {
	e := NewEngine(clock)

	r := e.Chat("what should I do", fixture())

	assert.Equal(t, "**Recommended Next Task:**\n\n"+
		"**Fix prod outage**\n"+
		"Priority: CRITICAL\n"+
		"Due: Wednesday, March 12, 2025\n"+
		"Source: email\n\n"+
		"💡 Start with this task to maintain momentum!", r.Text)
}

func TestChat_SummaryUsesWholeCollection(t *testing.T) {
	e := NewEngine(clock)

	r := e.Chat("give me a summary of teams", fixture())

	assert.Equal(t, "**📊 Task Summary:**\n\n"+
		"Total Tasks: 6\n"+
		"✅ Completed: 1\n"+
		"⏳ Pending: 4\n"+
		"🔴 Critical: 1\n"+
		"⚠️  Overdue: 1\n\n"+
		"⚠️  You have 1 overdue tasks! Prioritize these.", r.Text)
}

func TestChat_DefaultDigest(t *testing.T) {
	e := NewEngine(clock)

	r := e.Chat("hello there", fixture())

	assert.Equal(t, "**📋 Current Status:**\n\n"+
		"🔴 **Critical**: 1 tasks need immediate attention\n"+
		"   → Start with: **Fix prod outage**\n\n"+
		"📊 You have 6 tasks matching your criteria.\n"+
		"**What else would you like to know?**", r.Text)
}

func TestInsights(t *testing.T) {
	e := NewEngine(clock)

	in := e.Insights(fixture())

	assert.Equal(t, 6, in.TotalTasks)
	assert.Equal(t, map[string]int{"critical": 1, "high": 2, "medium": 2, "low": 1}, in.ByPriority)
	assert.Equal(t, map[string]int{"email": 2, "teams": 2, "loop": 2}, in.BySource)
	assert.Equal(t, 1, in.OverdueTasks)
	assert.Equal(t, []string{"Fix prod outage", "Send invoice"}, in.UpcomingDeadlines)
	assert.Equal(t, []string{
		"You have 1 critical tasks that need immediate attention.",
		"2 tasks from emails, 2 from Teams, 2 from Loop.",
		"Total of 1 overdue tasks.",
	}, in.KeyInsights)
	assert.Len(t, in.Recommendations, 3)
}

func TestInsights_DropsEmptyKeyInsights(t *testing.T) {
	e := NewEngine(clock)

	in := e.Insights([]models.Task{{Title: "Read RFC", SourceType: models.SourceTeams, Priority: models.PriorityLow}})

	assert.Equal(t, []string{"0 tasks from emails, 1 from Teams, 0 from Loop."}, in.KeyInsights)
	assert.Empty(t, in.UpcomingDeadlines)
}

func TestFilter(t *testing.T) {
	start := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 13, 23, 59, 59, 0, time.UTC)

	got := Filter(fixture(), Criteria{Start: &start, End: &end})
	assert.Equal(t, []string{"Fix prod outage", "Send invoice"}, titles(got))

	got = Filter(fixture(), Criteria{SourceType: models.SourceLoop, Status: models.StatusPending})
	assert.Equal(t, []string{"Quarterly plan"}, titles(got))

	got = Filter(fixture(), Criteria{Priority: models.PriorityCritical, SourceType: models.SourceTeams})
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Len(t, Filter(fixture(), Criteria{}), 6)
}

func TestFilter_AwareBoundsCompareByWallClock(t *testing.T) {
	zone := time.FixedZone("UTC-8", -8*3600)
	due := time.Date(2025, 3, 12, 20, 0, 0, 0, zone)
	tasks := []models.Task{{Title: "late call", DueDate: &due}}

	end := time.Date(2025, 3, 12, 23, 59, 59, 0, time.UTC)
	assert.Len(t, Filter(tasks, Criteria{End: &end}), 1)
}
