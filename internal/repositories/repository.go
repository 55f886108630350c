// Package repositories はTodoの永続化インターフェースを定義します。
// 実装は mongostore (ドキュメントストア) と mysqlstore (MySQL) にあります。
package repositories

import (
	"context"
	"math"
	"time"

	"fullstack-todolist/backend/internal/models"
)

// ListQuery はページ単位の取得条件です。Pageは1始まりです。
type ListQuery struct {
	Page   int
	Limit  int
	Search string // 空でなければ title/description の全文検索
}

// Offset はスキップする件数を返します。オーバーフローする場合は math.MaxInt に丸めます。
func (q ListQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// TodoUpdate は更新対象のフィールドです。UpdatedAtは常に書き換えます。
type TodoUpdate struct {
	Title       *string
	Description *string
	IsCompleted *bool
	UpdatedAt   time.Time
}

// TodoRepository はTodoストアの共通インターフェースです。
type TodoRepository interface {
	Create(ctx context.Context, t *models.Todo) (*models.Todo, error)
	FindAll(ctx context.Context, search string) ([]*models.Todo, error)
	FindPage(ctx context.Context, q ListQuery) ([]*models.Todo, int64, error)
	FindByID(ctx context.Context, id string) (*models.Todo, error)
	Update(ctx context.Context, id string, u TodoUpdate) (*models.Todo, error)
	Delete(ctx context.Context, id string) error

	// シード用
	InsertMany(ctx context.Context, todos []*models.Todo) (int, error)
	EnsureIndexes(ctx context.Context) error

	Ping(ctx context.Context) error
}
