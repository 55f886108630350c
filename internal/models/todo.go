// Package modelsはTodoを定義します。
package models

import (
	"time"
)

// Todo はToDoタスクを表します。IDはストアが採番し、以後変更されません。
type Todo struct {
	ID          string    `json:"id"`          // 主キー (ObjectID hex / UUID)
	Title       string    `json:"title"`       // タイトル（必須）
	Description string    `json:"description"` // 説明（必須）
	IsCompleted bool      `json:"isCompleted"` // 完了状態
	CreatedAt   time.Time `json:"createdAt"`   // 作成日時
	UpdatedAt   time.Time `json:"updatedAt"`   // 更新日時
}

// CreateTodoRequest はTodo作成リクエストのボディです。
type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	IsCompleted bool   `json:"isCompleted"`
}

// UpdateTodoRequest はTodo更新リクエストのボディです。nilのフィールドは変更しません。
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
}

// IsEmpty は変更対象のフィールドが一つもない場合にtrueを返します。
func (r UpdateTodoRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.IsCompleted == nil
}

// TodoPage はページ単位の一覧レスポンスです。
type TodoPage struct {
	Todos      []*Todo `json:"todos"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// NewTodoPage は件数からTotalPagesを計算してTodoPageを組み立てます。
func NewTodoPage(todos []*Todo, page, limit int, total int64) *TodoPage {
	if todos == nil {
		todos = []*Todo{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &TodoPage{
		Todos:      todos,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
