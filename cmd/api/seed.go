// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/crudkit/internal/platform/sec"
	"github.com/taibuivan/crudkit/internal/users/bootstrap"
)

func newSeedCommand() *cobra.Command {
	var password, email string

	command := &cobra.Command{
		Use:   "seed",
		Short: "Create the administrator role and account when absent",
		Long: `Seed creates the Administrator role with Full on every resource and the
"admin" account holding it. Existing rows are kept. The password defaults to
ADMIN_PASSWORD and is only used when the account is created.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := start(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.migrateUp(cmd.Context()); err != nil {
				return err
			}

			if password == "" {
				password = a.cfg.AdminPassword
			}
			if email == "" {
				email = a.cfg.AdminEmail
			}

			seeder := bootstrap.NewSeeder(a.db, sec.NewBcryptHasher(a.cfg.BcryptCost), a.log)
			_, err = seeder.Seed(cmd.Context(), bootstrap.Administrator{Password: password, Email: email})
			return err
		},
	}

	command.Flags().StringVar(&password, "password", "", "administrator password (defaults to ADMIN_PASSWORD)")
	command.Flags().StringVar(&email, "email", "", "administrator email (defaults to ADMIN_EMAIL)")
	return command
}
