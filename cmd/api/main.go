package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/punchamoorthee/favoritemovies/internal/api"
	"github.com/punchamoorthee/favoritemovies/internal/config"
	"github.com/punchamoorthee/favoritemovies/internal/domain"
	"github.com/punchamoorthee/favoritemovies/internal/logger"
	"github.com/punchamoorthee/favoritemovies/internal/service"
	"github.com/punchamoorthee/favoritemovies/internal/store"
	"github.com/punchamoorthee/favoritemovies/internal/tmdb"
)

func main() {
	cfg, err := config.Load(pflag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Layers
	var (
		cache   store.SessionRepository
		durable store.SessionRepository
		auditor service.Auditor
		events  api.EventLister
	)

	if cfg.DBSource != "" {
		db, err := store.NewStore(ctx, cfg.DBSource)
		if err != nil {
			zl.Fatal("unable to connect to database", zap.Error(err))
		}
		defer db.Close()
		durable, auditor, events = db, db, db
	}

	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zl.Fatal("unable to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		cache = store.NewSessionCache(rdb, "", cfg.SessionTTL)
	}

	client := tmdb.NewClient(cfg.BaseURL, domain.Credentials{APIKey: cfg.APIKey},
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		tmdb.WithLogger(zl),
	)
	handler := api.NewHandler(
		service.NewAuthSequencer(client, cfg.StrictLogin, zl),
		service.NewFavoriteService(client, auditor, zl),
		store.NewSessions(cache, durable, zl),
		events,
		zl,
	)

	// Router
	r := mux.NewRouter()
	handler.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.Bool("strict_login", cfg.StrictLogin),
			zap.Bool("postgres", durable != nil),
			zap.Bool("redis", cache != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Error("server stopped", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}
