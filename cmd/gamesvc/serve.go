package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "github.com/avvvet/trivia-services/configs"
	"github.com/avvvet/trivia-services/internal/gamesvc/broker"
	"github.com/avvvet/trivia-services/internal/gamesvc/cache"
	gameconfig "github.com/avvvet/trivia-services/internal/gamesvc/config"
	"github.com/avvvet/trivia-services/internal/gamesvc/db"
	handlers "github.com/avvvet/trivia-services/internal/gamesvc/handlers"
	"github.com/avvvet/trivia-services/internal/gamesvc/metrics"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	natsconn "github.com/avvvet/trivia-services/internal/nats"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving (postgres only)")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, err := gameconfig.Load()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}

	if migrate && cfg.StoreDriver == gameconfig.StorePostgres {
		if err := db.Migrate(ctx, cfg.DBUrl); err != nil {
			return err
		}
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	opts := []service.Option{service.WithMetrics(m)}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		opts = append(opts, service.WithQuestionCache(cache.NewQuestionCache(rdb, st, cfg.QuestionTTL)))
		log.Infof("question cache enabled on redis %s", cfg.RedisAddr)
	}

	// Connect to NATS
	var (
		b  *broker.Broker
		nc *nats.Conn
	)
	if cfg.NatsURL != "" {
		n, err := natsconn.Connect(SERVICE_NAME+"-"+instanceId, cfg.NatsURL, cfg.NatsToken)
		if err != nil {
			return err
		}
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)

		b = broker.NewBroker(n.Conn, cfg.EventsTopic, nil)
		opts = append(opts, service.WithEvents(b))
		nc = n.Conn
	} else {
		log.Warn("NATS_URL not set, game events are not published")
	}

	games := service.NewGameService(st, opts...)
	if b != nil {
		// games must be set before the first status request can arrive
		b.Games = games

		// status requests from socket service instances
		sub, err := b.QueueSubscribeStatus(nc, cfg.StatusTopic, SERVICE_NAME)
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)
	r.Use(m.Middleware)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	tokenAuth := handlers.NewTokenAuth(cfg.JWTSecret)
	if token, err := handlers.AdminToken(tokenAuth, "gamesvc-debug", 7*24*time.Hour); err == nil {
		// For debugging only
		log.Debugf("DEBUG: admin JWT for testing: %s", token)
	}

	h := handlers.NewHandler(handlers.Services{
		Games:     games,
		Answers:   service.NewAnswerService(st, opts...),
		Players:   service.NewPlayerService(st),
		Questions: service.NewQuestionService(st, opts...),
		Packages:  service.NewPackageService(st, opts...),
	}, tokenAuth, cfg.Port)
	h.SetRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
	return nil
}
