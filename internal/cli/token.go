package cli

import (
	"fmt"
	"time"

	"ShortletAssistant/internal/entity"
	"ShortletAssistant/internal/middleware"
	jwtPkg "ShortletAssistant/pkg/jwt"

	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenEmail   string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin bearer token for the knowledge API",
	Long: `Signs a token with JWT_ACCESS_TOKEN_SECRET from the environment. The server
must run with the same secret to accept it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, expiresAt, err := jwtPkg.Sign(middleware.AccessTokenSecret, map[string]interface{}{
			"sub":   tokenSubject,
			"email": tokenEmail,
			"role":  entity.RoleAdmin,
		}, tokenTTL)
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "kbctl", "operator id stored in the sub claim")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "operator email")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
