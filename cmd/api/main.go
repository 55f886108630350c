// Command api はTodo APIサーバーです。
//
// 設定は .env、CONFIG_PATH のYAML、環境変数の順に読み込みます。
// SIGINT/SIGTERM を受け取ると処理中のリクエストを待って終了します。
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/database"
	"fullstack-todolist/backend/internal/logger"
	"fullstack-todolist/backend/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg := logger.New(cfg.Log)

	if err := run(cfg, lg); err != nil {
		lg.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *slog.Logger) error {
	if err := cfg.ValidateStore(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := database.OpenTodoRepository(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := closeStore(shutdownCtx); err != nil {
			lg.Warn("close store", slog.String("error", err.Error()))
		}
	}()

	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      routes.SetupRouter(cfg, repo, lg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.App.Env),
			slog.String("store", cfg.Store.Driver),
			slog.Bool("auth", cfg.Auth.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
