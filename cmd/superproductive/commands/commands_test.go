package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/query"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/services"
)

func TestSourceCriteria(t *testing.T) {
	tests := []struct {
		input string
		want  models.SourceType
		err   bool
	}{
		{"", "", false},
		{"email", models.SourceEmail, false},
		{"teams", models.SourceTeams, false},
		{"loop", models.SourceLoop, false},
		{"slack", "", true},
	}

	for _, tt := range tests {
		got, err := sourceCriteria(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("sourceCriteria(%q): want error, got nil", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("sourceCriteria(%q): %v", tt.input, err)
			continue
		}
		if got.SourceType != tt.want {
			t.Errorf("sourceCriteria(%q) = %v, want %v", tt.input, got.SourceType, tt.want)
		}
	}
}

func TestRenderTasks(t *testing.T) {
	due := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	out := renderTasks([]models.Task{
		{Title: "Prepare release notes", Priority: models.PriorityHigh, SourceType: models.SourceEmail, Status: models.StatusPending, DueDate: &due},
		{Title: "Review teams", Priority: models.PriorityMedium, SourceType: models.SourceTeams, Status: models.StatusPending},
	})

	for _, want := range []string{"Prepare release notes", "Fri Mar 14", "Review teams", "no due date", "high"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderTasks output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(renderTasks(nil), "No tasks.") {
		t.Error("renderTasks(nil) should say there are no tasks")
	}
}

func TestRenderExtractSortsSources(t *testing.T) {
	out := renderExtract(services.ExtractResult{
		Message:    "Tasks extracted successfully",
		TotalTasks: 3,
		BySource:   map[string]int{"teams": 1, "email": 2, "loop": 0},
	})

	email := strings.Index(out, "email:")
	loop := strings.Index(out, "loop:")
	teams := strings.Index(out, "teams:")
	if email < 0 || !(email < loop && loop < teams) {
		t.Errorf("sources not sorted:\n%s", out)
	}
}

func TestRenderStoredReply(t *testing.T) {
	out := renderStoredReply(services.ChatReply{
		Reply:  "Total tasks: 3",
		Counts: &services.ChatCounts{Total: 3, ByPriority: map[string]int64{"High": 1, "Medium": 2}},
	})

	if !strings.Contains(out, "Total tasks: 3") || !strings.Contains(out, "Medium:") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRenderInsightsSkipsEmptySections(t *testing.T) {
	out := renderInsights(query.Insights{
		TotalTasks:      1,
		ByPriority:      map[string]int{"high": 1},
		Recommendations: []string{"Focus on critical and high-priority tasks first."},
	})

	if strings.Contains(out, "Upcoming deadlines") {
		t.Errorf("empty section rendered:\n%s", out)
	}
	if !strings.Contains(out, "Focus on critical") {
		t.Errorf("recommendations missing:\n%s", out)
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_ENABLED", "false")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dataDir = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	loop := `[{"id":"l1","title":"Renew TLS certificate","priority":"high","due_date":"2030-01-10"}]`
	if err := os.WriteFile(filepath.Join(dir, "loop_tasks.json"), []byte(loop), 0o644); err != nil {
		t.Fatal(err)
	}

	out := runCLI(t, "extract", "--data-dir", dir)

	if !strings.Contains(out, "Tasks extracted successfully") || !strings.Contains(out, "Renew TLS certificate") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")

	out := strings.TrimSpace(runCLI(t, "token", "--subject", "ci", "--ttl", "1m"))

	if parts := strings.Split(out, "."); len(parts) != 3 {
		t.Errorf("expected a JWT, got %q", out)
	}
}
