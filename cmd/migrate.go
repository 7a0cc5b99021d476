package cmd

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateRollback bool
	migrateDir      string

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back) SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(".")
			if err != nil {
				return err
			}

			db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
			if err != nil {
				return fmt.Errorf("open migration db: %w", err)
			}
			defer db.Close()
			goose.SetTableName("schema_migrations")

			direction := "up"
			if migrateRollback {
				direction = "down"
			}
			if err := goose.RunContext(context.Background(), direction, db, migrateDir); err != nil {
				return fmt.Errorf("goose %s: %w", direction, err)
			}
			return nil
		},
	}
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration instead of applying")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}
