package priority

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func dueIn(days int) *time.Time {
	t := time.Date(2025, time.March, 12+days, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestKeywordClassifier_FourLevel(t *testing.T) {
	k := NewKeywordClassifier(FourLevel, clock)

	tests := []struct {
		text     string
		expected models.Priority
	}{
		{"URGENT: Fix the critical bug immediately!!!", models.PriorityCritical},
		{"Important: Meeting tomorrow", models.PriorityHigh},
		{"You should update the wiki", models.PriorityHigh},
		{"Maybe look at this eventually", models.PriorityLow},
		{"Please review the proposal", models.PriorityMedium},
		{"🔴 prod is down", models.PriorityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := k.Classify(context.Background(), tt.text, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestKeywordClassifier_ThreeLevel(t *testing.T) {
	k := NewKeywordClassifier(ThreeLevel, clock)

	assert.Equal(t, models.PriorityHigh, k.Decide("Need this ASAP", nil).Priority)
	assert.Equal(t, models.PriorityMedium, k.Decide("Wrap it up next week", nil).Priority)
	assert.Equal(t, models.PriorityLow, k.Decide("FYI the office is closed", nil).Priority)
}

func TestKeywordClassifier_KeywordBeatsDate(t *testing.T) {
	k := NewKeywordClassifier(FourLevel, clock)

	d := k.Decide("Maybe tidy the backlog", dueIn(0))
	assert.Equal(t, models.PriorityLow, d.Priority)
	assert.Contains(t, d.Reason, "maybe")
}

func TestKeywordClassifier_DateTiers(t *testing.T) {
	k := NewKeywordClassifier(FourLevel, clock)

	tests := []struct {
		name     string
		due      *time.Time
		expected models.Priority
	}{
		{"overdue", dueIn(-3), models.PriorityHigh},
		{"today", dueIn(0), models.PriorityHigh},
		{"tomorrow", dueIn(1), models.PriorityHigh},
		{"two days", dueIn(2), models.PriorityMedium},
		{"five days", dueIn(5), models.PriorityMedium},
		{"six days", dueIn(6), models.PriorityLow},
		{"no date", nil, models.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, k.Decide("Review the deck", tt.due).Priority)
		})
	}
}

func TestRuleSet_Labels(t *testing.T) {
	assert.Equal(t,
		[]models.Priority{models.PriorityCritical, models.PriorityHigh, models.PriorityLow, models.PriorityMedium},
		FourLevel.Labels())
	assert.Len(t, ThreeLevel.Labels(), 3)
}

func TestEngine_UsesModelWhenAvailable(t *testing.T) {
	var gotInput string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req zeroShotRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotInput = req.Inputs
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(zeroShotResult{
			Labels: []string{"low", "critical"},
			Scores: []float64{0.1, 0.9},
		})
	}))
	defer server.Close()

	model, err := NewModelClassifier(ModelConfig{Endpoint: server.URL, Token: "secret"}, nil, nil)
	require.NoError(t, err)

	e := NewEngine(NewKeywordClassifier(FourLevel, clock), model, nil)
	d := e.Decide(context.Background(), strings.Repeat("a", 600), nil)

	assert.Equal(t, models.PriorityCritical, d.Priority)
	assert.Equal(t, "model", d.Reason)
	assert.Len(t, gotInput, maxModelInput)
}

func TestEngine_FallsBackWhenModelFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	model, err := NewModelClassifier(ModelConfig{Endpoint: server.URL}, nil, nil)
	require.NoError(t, err)

	e := NewEngine(NewKeywordClassifier(FourLevel, clock), model, nil)
	got, err := e.Classify(context.Background(), "URGENT: database outage", nil)

	require.NoError(t, err)
	assert.Equal(t, models.PriorityCritical, got)
}

func TestModelClassifier_PairResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"medium","score":0.2},{"label":"high","score":0.7}]`))
	}))
	defer server.Close()

	model, err := NewModelClassifier(ModelConfig{Endpoint: server.URL}, nil, nil)
	require.NoError(t, err)

	got, err := model.Classify(context.Background(), "Prepare the board pack", nil)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, got)
}

func TestNewModelClassifier_RequiresEndpoint(t *testing.T) {
	_, err := NewModelClassifier(ModelConfig{}, nil, nil)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestClassify_Idempotent(t *testing.T) {
	inputs := []struct {
		text string
		due  *time.Time
	}{
		{"URGENT: rotate the leaked key", nil},
		{"Please review the proposal", dueIn(1)},
		{"Please review the proposal", dueIn(4)},
		{"Clean up the wiki", dueIn(9)},
		{"", nil},
	}

	for _, rules := range []RuleSet{FourLevel, ThreeLevel} {
		engine := NewEngine(NewKeywordClassifier(rules, clock), nil, nil)
		for _, in := range inputs {
			first, err := engine.Classify(context.Background(), in.text, in.due)
			require.NoError(t, err)
			second, err := engine.Classify(context.Background(), in.text, in.due)
			require.NoError(t, err)
			assert.Equal(t, first, second, "%q classified differently on a second call", in.text)
			assert.Equal(t, engine.Decide(context.Background(), in.text, in.due).Priority, first)
		}
	}
}
