package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask a question about your tasks",
	Long: `Extract the data directory and answer a question such as
"what is due today?" or "show high priority teams tasks".

With --db the question is answered from the database instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Bool("db", false, "Answer from the database")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	useDB, _ := cmd.Flags().GetBool("db")
	message := strings.Join(args, " ")

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
		reply, err := a.Tasks.Chat(ctx, message)
		if err != nil {
			return err
		}
		fmt.Fprint(out, renderStoredReply(reply))
		return nil
	}

	if _, err := a.Agent.ExtractFromDir(ctx); err != nil {
		return err
	}
	reply := a.Agent.Chat(message)
	fmt.Fprint(out, renderReply(reply))
	if len(reply.Tasks) > 0 {
		fmt.Fprint(out, renderTasks(reply.Tasks))
	}
	return nil
}
