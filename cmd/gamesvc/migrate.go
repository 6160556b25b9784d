package main

import (
	"fmt"

	gameconfig "github.com/avvvet/trivia-services/internal/gamesvc/config"
	"github.com/avvvet/trivia-services/internal/gamesvc/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gameconfig.Load()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != gameconfig.StorePostgres {
				return fmt.Errorf("migrate needs STORE_DRIVER=%s", gameconfig.StorePostgres)
			}
			return db.Migrate(cmd.Context(), cfg.DBUrl)
		},
	}
}
