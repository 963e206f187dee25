package priority

import (
	"strings"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

type Rule struct {
	Level    models.Priority
	Keywords []string
}

// RuleSet is an ordered keyword table, most urgent level first. Levels
// without keywords are reached only through the due-date or default stages.
type RuleSet struct {
	Name  string
	Rules []Rule
}

// FourLevel is used by the primary extraction pipeline.
var FourLevel = RuleSet{
	Name: "four-level",
	Rules: []Rule{
		{models.PriorityCritical, []string{"critical", "urgent", "asap", "emergency", "immediately", "!!!", "🔴", "top priority"}},
		{models.PriorityHigh, []string{"high", "important", "priority", "must", "!!", "🟠", "should"}},
		{models.PriorityLow, []string{"low", "maybe", "when possible", "eventually", "🟢", "optional"}},
	},
}

// ThreeLevel is used by the database-backed pipeline.
var ThreeLevel = RuleSet{
	Name: "three-level",
	Rules: []Rule{
		{models.PriorityHigh, []string{"urgent", "asap", "eod", "today", "immediately", "right away"}},
		{models.PriorityMedium, []string{"soon", "this week", "next week", "by"}},
		{models.PriorityLow, []string{"optional", "fyi", "when possible"}},
	},
}

// Match returns the level of the first rule with a keyword contained in text.
func (rs RuleSet) Match(text string) (models.Priority, string, bool) {
	lower := strings.ToLower(text)
	for _, rule := range rs.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Level, kw, true
			}
		}
	}
	return "", "", false
}

// Labels lists the distinct levels of the set in order, with medium added
// when it has no keywords of its own.
func (rs RuleSet) Labels() []models.Priority {
	seen := map[models.Priority]bool{}
	var labels []models.Priority
	for _, rule := range rs.Rules {
		if !seen[rule.Level] {
			seen[rule.Level] = true
			labels = append(labels, rule.Level)
		}
	}
	if !seen[models.PriorityMedium] {
		labels = append(labels, models.PriorityMedium)
	}
	return labels
}
