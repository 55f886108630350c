// Package mysqlstore はMySQLのtodosテーブルを使ったTodoリポジトリです。
package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/repositories"
)

var _ repositories.TodoRepository = (*TodoRepository)(nil)

const table = "todos"

var columns = []string{"id", "title", "description", "is_completed", "created_at", "updated_at"}

// SchemaSQL はtodosテーブルと2つのインデックス (全文検索・作成日時降順) を作成します。
// DATETIMEのスキャンにはDSNに parseTime=true が必要です (database.OpenMySQL が付与します)。
const SchemaSQL = `CREATE TABLE IF NOT EXISTS todos (
	id CHAR(36) NOT NULL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	FULLTEXT INDEX idx_todos_title_description (title, description),
	INDEX idx_todos_created_at (created_at DESC)
)`

const matchExpr = "MATCH(title, description) AGAINST (? IN NATURAL LANGUAGE MODE)"

// TodoRepository はMySQLに対するTodo操作を提供します。
type TodoRepository struct {
	DB    *sql.DB
	newID func() string
}

// NewTodoRepository は新しいTodoRepositoryを作成します。IDはUUIDv4で採番します。
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{DB: db, newID: uuid.NewString}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (*models.Todo, error) {
	var t models.Todo
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidID, id)
	}
	return parsed.String(), nil
}

func withSearch(b sq.SelectBuilder, search string) sq.SelectBuilder {
	if search == "" {
		return b
	}
	return b.Where(sq.Expr(matchExpr, search))
}

// Create は新しいTodoを挿入し、採番されたIDをセットして返します。
func (r *TodoRepository) Create(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	created := *t
	created.ID = r.newID()

	query, args, err := sq.Insert(table).
		Columns(columns...).
		Values(created.ID, created.Title, created.Description, created.IsCompleted, created.CreatedAt, created.UpdatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		slog.ErrorContext(ctx, "failed to insert todo", slog.String("error", err.Error()))
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return &created, nil
}

// FindAll はすべてのTodoを作成日時の降順で取得します。
func (r *TodoRepository) FindAll(ctx context.Context, search string) ([]*models.Todo, error) {
	b := withSearch(sq.Select(columns...).From(table), search).OrderBy("created_at DESC")
	return r.query(ctx, b)
}

// FindPage は指定ページのTodoと、条件に一致する総件数を返します。
func (r *TodoRepository) FindPage(ctx context.Context, q repositories.ListQuery) ([]*models.Todo, int64, error) {
	countQuery, countArgs, err := withSearch(sq.Select("COUNT(*)").From(table), q.Search).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("could not count todos: %w", err)
	}

	b := withSearch(sq.Select(columns...).From(table), q.Search).
		OrderBy("created_at DESC").
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset()))
	todos, err := r.query(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}

func (r *TodoRepository) query(ctx context.Context, b sq.SelectBuilder) ([]*models.Todo, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// FindByID は指定IDのTodoを取得します。
func (r *TodoRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Select(columns...).From(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	t, err := scanTodo(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTodoNotFound
		}
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return t, nil
}

// Update は指定IDのTodoを部分更新し、更新後のTodoを返します。
func (r *TodoRepository) Update(ctx context.Context, id string, u repositories.TodoUpdate) (*models.Todo, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}

	b := sq.Update(table).Set("updated_at", u.UpdatedAt)
	if u.Title != nil {
		b = b.Set("title", *u.Title)
	}
	if u.Description != nil {
		b = b.Set("description", *u.Description)
	}
	if u.IsCompleted != nil {
		b = b.Set("is_completed", *u.IsCompleted)
	}
	query, args, err := b.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not update todo: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, models.ErrTodoNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete は指定IDのTodoを削除します。
func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}

	query, args, err := sq.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("could not delete todo: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrTodoNotFound
	}
	return nil
}

// InsertMany はTodoを1つのINSERT文でまとめて挿入し、挿入件数を返します。
func (r *TodoRepository) InsertMany(ctx context.Context, todos []*models.Todo) (int, error) {
	if len(todos) == 0 {
		return 0, nil
	}

	b := sq.Insert(table).Columns(columns...)
	for _, t := range todos {
		t.ID = r.newID()
		b = b.Values(t.ID, t.Title, t.Description, t.IsCompleted, t.CreatedAt, t.UpdatedAt)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("could not insert todos: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}
	return int(n), nil
}

// EnsureIndexes はtodosテーブルとインデックスを作成します。既存の場合は何もしません。
func (r *TodoRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("could not create todos table: %w", err)
	}
	return nil
}

// Ping はMySQLへの疎通を確認します。
func (r *TodoRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
