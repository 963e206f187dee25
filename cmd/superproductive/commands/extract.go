package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/query"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/ranking"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract tasks from the data directory and print them",
	Long: `Read outlook_emails.json, loop_tasks.json and teams_messages.json from the
data directory and print the extracted tasks, most urgent first.

With --db the mock files are loaded into the database instead.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Bool("prioritize", false, "Re-run priority classification after extraction")
	extractCmd.Flags().Bool("db", false, "Reload the database from the mock data directory")
	extractCmd.Flags().String("source", "", "Only print tasks from this source (email, teams, loop)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	prioritize, _ := cmd.Flags().GetBool("prioritize")
	useDB, _ := cmd.Flags().GetBool("db")
	source, _ := cmd.Flags().GetString("source")

	a, err := buildApp(useDB)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if useDB {
		if a.Tasks == nil {
			return fmt.Errorf("the database is disabled")
		}
		n, err := a.Tasks.ReloadMock(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, newStyles().Title.Render(fmt.Sprintf("Database reloaded with %d task(s)", n)))
		return nil
	}

	res, err := a.Agent.ExtractFromDir(ctx)
	if err != nil {
		return err
	}
	if prioritize {
		if _, err := a.Agent.Prioritize(ctx); err != nil {
			return err
		}
	}

	criteria, err := sourceCriteria(source)
	if err != nil {
		return err
	}
	fmt.Fprint(out, renderExtract(res))
	fmt.Fprint(out, renderTasks(ranking.Sorted(a.Agent.Filter(criteria))))
	return nil
}

func sourceCriteria(source string) (query.Criteria, error) {
	var c query.Criteria
	if source == "" {
		return c, nil
	}
	st, err := models.ParseSourceType(source)
	if err != nil {
		return c, err
	}
	c.SourceType = st
	return c, nil
}
