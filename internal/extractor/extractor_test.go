package extractor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/priority"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newStrategy(name string, rules priority.RuleSet) Strategy {
	resolver := dates.NewResolver(clock)
	engine := priority.NewEngine(priority.NewKeywordClassifier(rules, clock), nil, nil)
	return New(name, resolver, engine)
}

func TestLineStrategy_BulletedEmail(t *testing.T) {
	s := newStrategy(LineStrategyName, priority.FourLevel)

	body := "Hi team\n• Update the onboarding guide\n- URGENT: rotate the leaked API key\n* Book the venue for the offsite\nThanks"
	got := s.Extract(context.Background(), body, models.SourceEmail)

	require.Len(t, got, 3)
	assert.Equal(t, "Update the onboarding guide", got[0].Title)
	assert.Equal(t, models.PriorityMedium, got[0].Priority)
	assert.Equal(t, "URGENT: rotate the leaked API key", got[1].Title)
	assert.Equal(t, models.PriorityCritical, got[1].Priority)
	assert.Equal(t, models.PriorityMedium, got[2].Priority)
	assert.Equal(t, "- URGENT: rotate the leaked API key", got[1].Description)
}

func TestLineStrategy_SkipsHeadersAndShortLines(t *testing.T) {
	s := newStrategy(LineStrategyName, priority.FourLevel)

	text := "From: alice@example.com\nTo: bob@example.com\nSubject: hello\nok\n1. Draft the release notes"
	got := s.Extract(context.Background(), text, models.SourceEmail)

	require.Len(t, got, 1)
	assert.Equal(t, "Draft the release notes", got[0].Title)
}

func TestLineStrategy_Fallback(t *testing.T) {
	s := newStrategy(LineStrategyName, priority.FourLevel)

	text := strings.Repeat("lorem ipsum ", 20)
	got := s.Extract(context.Background(), text, models.SourceTeams)

	require.Len(t, got, 1)
	assert.Equal(t, "Review teams", got[0].Title)
	assert.Equal(t, models.PriorityMedium, got[0].Priority)
	assert.Equal(t, 100, len([]rune(got[0].Description)))
	assert.Nil(t, got[0].DueDate)
}

func TestLineStrategy_TruncatesLongLines(t *testing.T) {
	s := newStrategy(LineStrategyName, priority.FourLevel)

	line := "- " + strings.Repeat("x", 300)
	got := s.Extract(context.Background(), line, models.SourceEmail)

	require.Len(t, got, 1)
	assert.Equal(t, 80, len([]rune(got[0].Title)))
	assert.Equal(t, 200, len([]rune(got[0].Description)))
}

func TestLineStrategy_ResolvesDueDates(t *testing.T) {
	s := newStrategy(LineStrategyName, priority.FourLevel)

	got := s.Extract(context.Background(), "- Send the invoice tomorrow", models.SourceEmail)

	require.Len(t, got, 1)
	require.NotNil(t, got[0].DueDate)
	assert.Equal(t, 13, got[0].DueDate.Day())
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
}

func TestSentenceStrategy_ActionVerbs(t *testing.T) {
	s := newStrategy(SentenceStrategyName, priority.ThreeLevel)

	body := "Hope you are well. Please send the slides by Friday.\nThe weather is nice. Resolve the ticket ASAP"
	got := s.Extract(context.Background(), body, models.SourceEmail)

	require.Len(t, got, 2)
	assert.Equal(t, "Please send the slides by Friday", got[0].Title)
	require.NotNil(t, got[0].DueDate)
	assert.Equal(t, time.Friday, got[0].DueDate.Weekday())
	assert.Equal(t, models.PriorityMedium, got[0].Priority)

	assert.Equal(t, "Resolve the ticket ASAP", got[1].Title)
	assert.Equal(t, models.PriorityHigh, got[1].Priority)
}

func TestSentenceStrategy_NoFallback(t *testing.T) {
	s := newStrategy(SentenceStrategyName, priority.ThreeLevel)

	assert.Empty(t, s.Extract(context.Background(), "Just saying hi. Have a good one.", models.SourceEmail))
}

func TestNew_UnknownNameIsLine(t *testing.T) {
	s := newStrategy("regex", priority.FourLevel)
	assert.Equal(t, LineStrategyName, s.Name())
}

func TestStripMarkers(t *testing.T) {
	tests := map[string]string{
		"• item one":     "item one",
		"12) call back":  "call back",
		"3. file taxes":  "file taxes",
		"Owner: Dana":    "Owner: Dana",
		"- * nested":     "nested",
		"2025 roadmap":   "2025 roadmap",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripMarkers(in), in)
	}
}
