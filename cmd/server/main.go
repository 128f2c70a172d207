package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/client/dictionary"
	"github.com/lexibox/lexibox/internal/client/extractor"
	"github.com/lexibox/lexibox/internal/config"
	delivery "github.com/lexibox/lexibox/internal/delivery/http"
	"github.com/lexibox/lexibox/internal/infra/postgres"
	"github.com/lexibox/lexibox/internal/infra/postgres/repository"
	"github.com/lexibox/lexibox/internal/infra/snapshot"
	"github.com/lexibox/lexibox/internal/logger"
	"github.com/lexibox/lexibox/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if present; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	badgerDB, err := snapshot.Open(cfg.Snapshot.Path, log)
	if err != nil {
		return err
	}
	defer badgerDB.Close() //nolint:errcheck

	snapshots := snapshot.New(badgerDB, cfg.Snapshot.TTL)

	collectionRepo := repository.NewCollectionRepository(pool)
	wordRepo := repository.NewWordRepository(pool)
	collectionWordRepo := repository.NewCollectionWordRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	collections := service.NewCollectionService(
		collectionRepo, wordRepo, collectionWordRepo, sessionRepo, log)
	tracker := service.NewSessionTracker(sessionRepo, collectionWordRepo, log)

	// Each engine gets a private random source: rand.Rand is not safe for
	// concurrent use across engines.
	newRand := func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	hub := service.NewPracticeHub(
		wordRepo, tracker, snapshots, cfg.Practice.SessionSize, newRand, log)

	dict := dictionary.New(cfg.Dictionary.BaseURL, cfg.Dictionary.Timeout)

	var words service.VocabularyExtractor
	if cfg.OpenAI.APIKey != "" {
		words = extractor.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, log)
	} else {
		log.Warn("no openai api key configured, analyze and topics endpoints disabled")
	}
	enricher := service.NewEnricher(words, dict, log)

	server := delivery.NewServer(enricher, collections, hub, log)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}
