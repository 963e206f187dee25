package commands

import (
	"github.com/spf13/cobra"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/scheduler"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the in-memory API under /api and, when the database is enabled,
the persistent API under /api/db.

With DATA_WATCH=true the data directory is re-extracted whenever its files
change. EXTRACT_SCHEDULE adds a periodic re-extraction.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("with-worker", false, "Also run the background worker in this process")
	serveCmd.Flags().Bool("extract", true, "Extract from the data directory before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	withWorker, _ := cmd.Flags().GetBool("with-worker")
	extractFirst, _ := cmd.Flags().GetBool("extract")

	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.Close()
	log := logging.Component("serve")

	ctx, stop := signalContext()
	defer stop()

	if extractFirst {
		if err := a.Reextract(ctx); err != nil {
			log.Warn().Err(err).Msg("initial extraction failed")
		}
	}

	if withWorker {
		w, err := a.NewWorker()
		if err != nil {
			return err
		}
		w.Start(ctx, a.Config.Worker.Concurrency)
	}

	sched := scheduler.New(logging.Component("scheduler"))
	if err := a.Schedule(sched); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if a.Config.Data.Watch {
		go func() {
			if err := a.Watch(ctx); err != nil {
				log.Error().Err(err).Msg("watcher stopped")
			}
		}()
	}

	deps := server.Deps{Agent: a.Agent, Tasks: a.Tasks}
	if a.Queue != nil {
		deps.Jobs = a.Queue
	}
	return server.New(a.Config, deps).Run(ctx)
}
