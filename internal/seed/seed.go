// Package seed は初期データの投入とインデックス作成を行います。
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/repositories"
)

// Options はシードの実行オプションです。
type Options struct {
	DryRun      bool // 書き込まずにログだけ出す
	SkipIndexes bool
	Force       bool // 既にTodoがあっても投入する
	Now         func() time.Time
}

// Result はシードの実行結果です。
type Result struct {
	Inserted       int
	Skipped        bool // 既存データがあるため投入しなかった
	IndexesEnsured bool
}

// Fixtures は初期データのTodoを返します。すべての日時はnowです。
func Fixtures(now time.Time) []*models.Todo {
	now = now.UTC()
	return []*models.Todo{
		{
			Title:       "The boys of Oyarifa",
			Description: "The boys are going to school today on 6/6/2025",
			IsCompleted: false,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Title:       "Building Okuani Adamfo",
			Description: "I recently developed an app that can detect crop prest infection on plants making farmers work easy",
			IsCompleted: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Title:       "Test",
			Description: "This is a submission test I am doing for Azubi Africa Program",
			IsCompleted: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// Run は初期データを投入し、検索用と新着順のインデックスを作成します。
// ストアが空でない場合、Forceが無ければ投入を省略します。インデックスは常に作成します。
func Run(ctx context.Context, repo repositories.TodoRepository, log *slog.Logger, opts Options) (Result, error) {
	var res Result
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	todos := Fixtures(now())

	if opts.DryRun {
		for _, t := range todos {
			log.InfoContext(ctx, "dry run: would insert todo",
				slog.String("title", t.Title),
				slog.Bool("is_completed", t.IsCompleted),
			)
		}
		if !opts.SkipIndexes {
			log.InfoContext(ctx, "dry run: would ensure indexes")
		}
		return res, nil
	}

	existing := int64(0)
	if !opts.Force {
		_, total, err := repo.FindPage(ctx, repositories.ListQuery{Page: 1, Limit: 1})
		if err != nil {
			return res, fmt.Errorf("count todos: %w", err)
		}
		existing = total
	}

	if existing > 0 {
		res.Skipped = true
		log.InfoContext(ctx, "store is not empty, skipping fixtures", slog.Int64("existing", existing))
	} else {
		n, err := repo.InsertMany(ctx, todos)
		if err != nil {
			return res, fmt.Errorf("insert fixtures: %w", err)
		}
		res.Inserted = n
		log.InfoContext(ctx, "fixtures inserted", slog.Int("count", n))
	}

	if !opts.SkipIndexes {
		if err := repo.EnsureIndexes(ctx); err != nil {
			return res, fmt.Errorf("ensure indexes: %w", err)
		}
		res.IndexesEnsured = true
		log.InfoContext(ctx, "indexes ensured")
	}

	log.InfoContext(ctx, "Database initialized successfully")
	return res, nil
}
