package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noah-isme/leadership-assessment-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LEADERSHIP")
	_ = v.BindEnv("database.url", "LEADERSHIP_DATABASE_URL")

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the service tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := v.GetString("database.url")
			if dsn == "" {
				return fmt.Errorf("database url is required (--database-url or LEADERSHIP_DATABASE_URL)")
			}

			db, err := database.ConnectPostgres(dsn)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().String("database-url", "", "postgres DSN")
	_ = v.BindPFlag("database.url", cmd.Flags().Lookup("database-url"))
	return cmd
}
