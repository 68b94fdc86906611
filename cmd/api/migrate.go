package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/lexilens/internal/infra/db"
	"github.com/bryanwahyu/lexilens/internal/infra/db/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		sqlDB, dialect, err := db.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := db.Ping(cmd.Context(), sqlDB); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
		if err := migrations.Up(sqlDB, dialect); err != nil {
			return err
		}
		version, dirty, err := migrations.Version(sqlDB, dialect)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dialect %s, dirty=%t)\n", version, dialect, dirty)
		return nil
	},
}
