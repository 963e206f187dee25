// Package commands implements the superproductive CLI using cobra.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/app"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/config"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/handlers"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "superproductive",
	Short: "Extract, prioritize and query tasks from email, Teams and Loop",
	Long: `Superproductive reads exported Outlook emails, Teams messages and Loop
tasks, turns them into a single prioritized task list, and answers
questions about it over HTTP or from the command line.

Settings come from the environment, a .env file, or --config.`,
	Version:       handlers.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	dataDir    string
	verbose    bool
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, newStyles().Error.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding the source JSON exports")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig reads configuration and initializes logging. CLI runs log in
// console format unless a log directory is configured.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := logging.Init(logging.Config{
		Level:         cfg.Logging.Level,
		Dir:           cfg.Logging.Dir,
		Format:        cfg.Logging.Format,
		RetentionDays: cfg.Logging.RetentionDays,
	}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return cfg, nil
}

// buildApp wires the agent. The database pipeline is only opened when
// withDB is set.
func buildApp(withDB bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Database.Enabled = cfg.Database.Enabled && withDB
	return app.Build(cfg, nil)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
