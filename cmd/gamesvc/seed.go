package main

import (
	gameconfig "github.com/avvvet/trivia-services/internal/gamesvc/config"
	"github.com/avvvet/trivia-services/internal/gamesvc/seed"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gameconfig.Load()
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			_, err = seed.Run(cmd.Context(), st, service.NewQuestionService(st))
			return err
		},
	}
}
