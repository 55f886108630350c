// Package services はTodoのビジネスロジックとトークン処理を扱います。
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/repositories"
)

const (
	DefaultPage    = 1
	DefaultLimit   = 10
	MaxLimit       = 100
	MaxTitleLength = 255
)

// TodoService はTodo関連のビジネスロジックを扱います。
type TodoService struct {
	todoRepo repositories.TodoRepository
	log      *slog.Logger
	now      func() time.Time
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo repositories.TodoRepository, log *slog.Logger) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
		log:      log.With("service", "todo"),
		now:      time.Now,
	}
}

// CreateTodo は新しいTodoを作成します。createdAt と updatedAt は同じ時刻になります。
func (s *TodoService) CreateTodo(ctx context.Context, req models.CreateTodoRequest) (*models.Todo, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.todoRepo.Create(ctx, &models.Todo{
		Title:       title,
		Description: description,
		IsCompleted: req.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	s.log.InfoContext(ctx, "todo created", slog.String("todo_id", created.ID))
	return created, nil
}

// GetTodos はすべてのTodoを新しい順に取得します。searchが空でなければ全文検索します。
func (s *TodoService) GetTodos(ctx context.Context, search string) ([]*models.Todo, error) {
	todos, err := s.todoRepo.FindAll(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// GetTodoPage は(page, limit)のウィンドウでTodoを取得します。
// 0はデフォルト値、limitの上限はMaxLimitです。範囲外のページは空の一覧になります。
func (s *TodoService) GetTodoPage(ctx context.Context, page, limit int, search string) (*models.TodoPage, error) {
	if page < 0 {
		return nil, models.NewValidationError("page", "must be positive")
	}
	if limit < 0 {
		return nil, models.NewValidationError("limit", "must be positive")
	}
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	todos, total, err := s.todoRepo.FindPage(ctx, repositories.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return nil, fmt.Errorf("list todo page: %w", err)
	}
	return models.NewTodoPage(todos, page, limit, total), nil
}

// GetTodoByID は指定IDのTodoを取得します。
func (s *TodoService) GetTodoByID(ctx context.Context, id string) (*models.Todo, error) {
	return s.todoRepo.FindByID(ctx, id)
}

// UpdateTodo はTodoを部分更新します。updatedAt は常に現在時刻になります。
func (s *TodoService) UpdateTodo(ctx context.Context, id string, req models.UpdateTodoRequest) (*models.Todo, error) {
	if req.IsEmpty() {
		return nil, models.NewValidationError("body", "no fields to update")
	}

	update := repositories.TodoUpdate{
		IsCompleted: req.IsCompleted,
		UpdatedAt:   s.now().UTC(),
	}
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		update.Title = &title
	}
	if req.Description != nil {
		description, err := validateDescription(*req.Description)
		if err != nil {
			return nil, err
		}
		update.Description = &description
	}

	updated, err := s.todoRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "todo updated", slog.String("todo_id", updated.ID))
	return updated, nil
}

// DeleteTodo はTodoを完全に削除します。
func (s *TodoService) DeleteTodo(ctx context.Context, id string) error {
	if err := s.todoRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "todo deleted", slog.String("todo_id", id))
	return nil
}

// Ping はストアの疎通を確認します。
func (s *TodoService) Ping(ctx context.Context) error {
	return s.todoRepo.Ping(ctx)
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", models.NewValidationError("title", "is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", models.NewValidationError("title", fmt.Sprintf("max %d characters", MaxTitleLength))
	}
	return title, nil
}

func validateDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" {
		return "", models.NewValidationError("description", "is required")
	}
	return description, nil
}
