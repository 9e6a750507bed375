package main

import (
	"context"
	"embed"
	"errors"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/mkarpenko/sweeper/internal/config"
	"github.com/mkarpenko/sweeper/internal/database"
	"github.com/mkarpenko/sweeper/internal/gen"
	"github.com/mkarpenko/sweeper/internal/handlers"
	"github.com/mkarpenko/sweeper/internal/middleware"
)

//go:embed migrations/*.sql
var migrations embed.FS

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func createLogger() *slog.Logger {
	if config.Development() {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

func main() {
	logger := createLogger()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	db, err := database.ConnectAndMigrate(ctx, migrations)
	if err != nil {
		logger.Error("unable to connect and migrate db", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	auth, err := config.NewAuth()
	if err != nil {
		logger.Error("unable to read auth config", slog.Any("error", err))
		os.Exit(1)
	}

	var (
		authHandler = handlers.NewAuth(logger, db, auth)
		gameHandler = handlers.NewGame(logger, db, createRand(), gen.Options{
			Debug: config.Development(),
		})
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/register", authHandler.Register)
	mux.HandleFunc("POST /v1/login", authHandler.Login)
	mux.HandleFunc("POST /v1/logout", authHandler.Logout)
	mux.HandleFunc("GET /v1/status", authHandler.Status)

	mux.HandleFunc("GET /v1/highscores", gameHandler.Highscores)
	mux.HandleFunc("POST /v1/game", gameHandler.New)
	mux.HandleFunc("GET /v1/game/{id}", gameHandler.Fetch)
	mux.HandleFunc("POST /v1/game/{id}/move", gameHandler.Move)
	mux.HandleFunc("POST /v1/game/{id}/hint", gameHandler.Hint)
	mux.HandleFunc("POST /v1/game/{id}/forfeit", gameHandler.Forfeit)
	mux.HandleFunc("/v1/game/{id}/connect", gameHandler.Connect)

	server := &http.Server{
		Addr: config.Addr(),
		Handler: middleware.Wrap(mux,
			middleware.Cors(),
			middleware.Auth(auth),
			middleware.Logging(logger),
		),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", slog.String("addr", server.Addr))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
