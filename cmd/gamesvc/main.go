package main

import (
	"os"

	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/trivia-services/configs"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	root := &cobra.Command{
		Use:          "gamesvc",
		Short:        "Trivia card game service: games, submissions, questions and stats",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())

	if err := root.Execute(); err != nil {
		log.Errorf("%s service: %s", SERVICE_NAME, err)
		os.Exit(1)
	}
}
