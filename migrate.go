package main

import (
	"fmt"

	"github.com/amirphl/mailwright/models"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// schemaModels lists every table mailwright owns, parents first
func schemaModels() []any {
	return []any{
		&models.CompanyProfile{},
		&models.Campaign{},
		&models.CampaignObjective{},
		&models.EmailTemplate{},
		&models.GenerationJob{},
		&models.AuditLog{},
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.db.WithContext(cmd.Context()).AutoMigrate(schemaModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	app.logger.Info("Schema migrated")
	return nil
}
