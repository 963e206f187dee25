package commands

import (
	"github.com/spf13/cobra"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued extraction jobs",
	Long: `Pull extraction and reload jobs from redis until interrupted.
Requires REDIS_ENABLED=true.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntP("concurrency", "n", 0, "Number of worker loops (default WORKER_CONCURRENCY)")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := a.NewWorker()
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = a.Config.Worker.Concurrency
	}

	ctx, stop := signalContext()
	defer stop()

	w.Start(ctx, concurrency)
	<-ctx.Done()
	logging.Component("worker").Info().Msg("interrupt received")
	return nil
}
