package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/punchamoorthee/favoritemovies/internal/config"
	"github.com/punchamoorthee/favoritemovies/internal/domain"
	"github.com/punchamoorthee/favoritemovies/internal/logger"
	"github.com/punchamoorthee/favoritemovies/internal/presenter"
	"github.com/punchamoorthee/favoritemovies/internal/service"
	"github.com/punchamoorthee/favoritemovies/internal/tmdb"
)

const (
	actionLogin      = "login"
	actionStatus     = "status"
	actionFavorite   = "favorite"
	actionUnfavorite = "unfavorite"
)

var (
	username string
	password string
	movieID  int64
	action   string
)

func main() {
	fs := pflag.NewFlagSet("moviectl", pflag.ContinueOnError)
	fs.StringVar(&username, "username", "", "Account username")
	fs.StringVar(&password, "password", os.Getenv("MOVIES_PASSWORD"), "Account password (defaults to $MOVIES_PASSWORD)")
	fs.Int64Var(&movieID, "movie", 0, "Movie id shown on the detail screen")
	fs.StringVar(&action, "action", actionStatus, "login | status | favorite | unfavorite")

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, zl)
	stop()
	_ = zl.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	switch action {
	case actionLogin:
	case actionStatus, actionFavorite, actionUnfavorite:
		if movieID <= 0 {
			return errors.New("--movie is required for " + action)
		}
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	zl.Debug("starting",
		zap.String("user", username),
		zap.String("password", logger.Mask(password)),
		zap.String("action", action),
	)

	client := tmdb.NewClient(cfg.BaseURL, domain.Credentials{APIKey: cfg.APIKey},
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		tmdb.WithLogger(zl),
	)
	auth := service.NewAuthSequencer(client, cfg.StrictLogin, zl)
	favorites := service.NewFavoriteService(client, nil, zl)

	// Every effect reaches the terminal through one goroutine, like a UI
	// thread. A screen's guard is deactivated once it is dismissed.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loop := presenter.NewLoop(16)
	go loop.Run(loopCtx)
	defer func() {
		stopLoop()
		<-loop.Done()
	}()
	term := presenter.NewTerminal(os.Stdout)

	loginScreen := presenter.NewGuard(term)
	stopLogin := context.AfterFunc(ctx, loginScreen.Deactivate)
	res := auth.Begin(ctx, presenter.On(loop, loginScreen), username, password)
	loop.Flush()
	stopLogin()
	loginScreen.Deactivate()
	if res.State != domain.StateAuthenticated {
		return res.Err
	}
	if action == actionLogin {
		return nil
	}

	detailScreen := presenter.NewGuard(term)
	defer context.AfterFunc(ctx, detailScreen.Deactivate)()
	view := presenter.On(loop, detailScreen)

	if _, err := favorites.Refresh(ctx, view, res.Session, movieID); err != nil {
		loop.Flush()
		return err
	}

	switch action {
	case actionFavorite:
		_, err := favorites.Set(ctx, view, res.Session, movieID, true)
		loop.Flush()
		return err
	case actionUnfavorite:
		_, err := favorites.Set(ctx, view, res.Session, movieID, false)
		loop.Flush()
		return err
	}
	loop.Flush()
	return nil
}
