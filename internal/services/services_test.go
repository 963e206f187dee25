package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm/logger"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/database"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/extractor"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/normalizer"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/priority"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/query"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/repositories"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/sources"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/store"
)

// Wednesday.
var fixedNow = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newAgentService(t *testing.T, dataDir string) *AgentService {
	t.Helper()
	resolver := dates.NewResolver(clock)
	engine := priority.NewEngine(priority.NewKeywordClassifier(priority.FourLevel, clock), nil, nil)
	n := normalizer.New(extractor.New(extractor.LineStrategyName, resolver, engine))
	return NewAgentService(store.New(), n, engine, query.NewEngine(clock), sources.NewLoader(dataDir), nil)
}

func newTaskService(t *testing.T, mockDir string) TaskService {
	t.Helper()
	config := database.DefaultPoolConfig()
	config.Driver = "sqlite"
	config.DSN = "file::memory:"
	config.LogLevel = logger.Silent

	pool, err := database.NewDatabasePool(config)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	if err := pool.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	resolver := dates.NewResolver(clock)
	engine := priority.NewEngine(priority.NewKeywordClassifier(priority.ThreeLevel, clock), nil, nil)
	n := normalizer.NewStored(extractor.New(extractor.SentenceStrategyName, resolver, engine), resolver, engine)
	return NewTaskService(pool, repositories.NewTaskRepository(), n, sources.NewLoader(mockDir), clock, nil)
}

func writeJSON(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
