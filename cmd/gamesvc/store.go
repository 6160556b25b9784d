package main

import (
	"context"

	gameconfig "github.com/avvvet/trivia-services/internal/gamesvc/config"
	"github.com/avvvet/trivia-services/internal/gamesvc/db"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	"github.com/avvvet/trivia-services/internal/gamesvc/store/memory"
	log "github.com/sirupsen/logrus"
)

// openStore returns the configured store and a func releasing it.
func openStore(ctx context.Context, cfg gameconfig.Config) (store.Store, func(), error) {
	if cfg.StoreDriver == gameconfig.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	dbpool, err := db.Connect(ctx, cfg.DBUrl)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("pg connection established successfully")
	return store.NewPgStore(dbpool), dbpool.Close, nil
}
