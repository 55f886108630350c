// Command seed はTodoストアに初期データを投入し、インデックスを作成します。
// ストアにTodoが既にある場合は投入を省略するため、繰り返し実行できます。
//
// Flags:
//
//	--dry-run       書き込まずに投入内容をログに出す
//	--skip-indexes  インデックスを作成しない
//	--force         既存データがあっても投入する
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/database"
	"fullstack-todolist/backend/internal/logger"
	"fullstack-todolist/backend/internal/seed"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "log fixtures without writing to the store")
	skipIndexes := flag.Bool("skip-indexes", false, "do not create indexes")
	force := flag.Bool("force", false, "insert fixtures even when the store already has todos")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg := logger.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	opts := seed.Options{DryRun: *dryRun, SkipIndexes: *skipIndexes, Force: *force}
	if opts.DryRun {
		if _, err := seed.Run(ctx, nil, lg, opts); err != nil {
			lg.Error("seed failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if err := cfg.ValidateStore(); err != nil {
		lg.Error("invalid store config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo, closeStore, err := database.OpenTodoRepository(ctx, cfg.Store)
	if err != nil {
		lg.Error("open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			lg.Warn("close store", slog.String("error", err.Error()))
		}
	}()

	res, err := seed.Run(ctx, repo, lg, opts)
	if err != nil {
		lg.Error("seed failed", slog.String("error", err.Error()))
		_ = closeStore(context.Background())
		os.Exit(1)
	}
	lg.Info("seed completed",
		slog.Int("inserted", res.Inserted),
		slog.Bool("skipped", res.Skipped),
		slog.Bool("indexes", res.IndexesEnsured),
	)
}
