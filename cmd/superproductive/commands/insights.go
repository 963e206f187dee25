package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Summarize workload, deadlines and priorities",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Agent.ExtractFromDir(cmd.Context()); err != nil {
		return err
	}

	insights, ok := a.Agent.Insights()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), newStyles().Muted.Render("No tasks available. Add source files to the data directory first."))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), renderInsights(insights))
	return nil
}
