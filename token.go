package main

import (
	"errors"
	"fmt"

	"github.com/amirphl/mailwright/app/services"
	"github.com/amirphl/mailwright/config"
	"github.com/spf13/cobra"
)

var (
	tokenUserID         uint
	tokenOrganizationID uint
	tokenRole           string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for a user",
	Long: `Issue an access token signed with the configured JWT key.

Login is handled by the platform in front of mailwright; this command exists
for operators and local development.`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().UintVar(&tokenUserID, "user-id", 0, "User id")
	tokenCmd.Flags().UintVar(&tokenOrganizationID, "organization-id", 0, "Organization id")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "member", "Role claim")
}

func runToken(cmd *cobra.Command, _ []string) error {
	if tokenUserID == 0 || tokenOrganizationID == 0 {
		return errors.New("--user-id and --organization-id are required")
	}

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return err
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return err
	}

	token, err := tokenService.GenerateAccessToken(services.Identity{
		UserID:         tokenUserID,
		OrganizationID: tokenOrganizationID,
		Role:           tokenRole,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
