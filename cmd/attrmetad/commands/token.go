package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/attrmeta/pkg/api/auth"
	"github.com/marmos91/attrmeta/pkg/config"
)

var (
	tokenSubject string
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API access token",
	Long: `Mint a signed API access token using the configured JWT secret.

Useful for scripting against the admin API without going through the
token exchange endpoint.

Examples:
  # Mint an admin token
  attrmetad token

  # Mint a read-only token for a named subject
  attrmetad token --role viewer --subject ci-reader`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "Token subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleAdmin, "Token role (admin or viewer)")
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenRole != auth.RoleAdmin && tokenRole != auth.RoleViewer {
		return fmt.Errorf("invalid role %q: must be admin or viewer", tokenRole)
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:        cfg.API.GetJWTSecret(),
		TokenDuration: cfg.API.JWT.TokenDuration,
	})
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}

	token, err := jwtService.GenerateToken(tokenSubject, tokenRole)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Println(token.AccessToken)
	fmt.Fprintf(cmd.ErrOrStderr(), "Token for %s (%s) expires at %s\n",
		tokenSubject, tokenRole, token.ExpiresAt.Format("2006-01-02 15:04:05 MST"))

	return nil
}
