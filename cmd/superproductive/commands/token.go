package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/middleware"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for the mutating endpoints",
	Long: `Print a bearer token signed with JWT_SECRET. Clients send it as
"Authorization: Bearer <token>" when AUTH_ENABLED=true.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringP("subject", "s", "cli", "Token subject")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default TOKEN_TTL)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}

	token, err := middleware.IssueToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, subject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
