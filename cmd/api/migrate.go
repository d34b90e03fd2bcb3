// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/taibuivan/crudkit/internal/platform/database"
	"github.com/taibuivan/crudkit/internal/platform/migration"
)

func newMigrateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := start(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			return a.migrateUp(cmd.Context())
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations (postgres only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := start(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.DatabaseDriver == database.DriverSQLite {
				return errors.New("migrate down is not supported for sqlite; delete the database file instead")
			}
			return migration.RunDown(a.cfg.DatabaseURL, a.cfg.MigrationPath, steps, a.log)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert (0 reverts all)")

	command.AddCommand(up, down)
	return command
}
