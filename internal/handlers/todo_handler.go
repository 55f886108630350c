package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/services"
)

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
	log         *slog.Logger
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService, log *slog.Logger) *TodoHandler {
	return &TodoHandler{todoService: todoService, log: log.With("handler", "todo")}
}

type listQuery struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Q     string `form:"q"`
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.todoService.CreateTodo(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to save todo")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetTodosHandler はTodoをすべて取得します。?q= で全文検索します。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	todos, err := h.todoService.GetTodos(c.Request.Context(), q.Q)
	if err != nil {
		h.respondError(c, err, "Failed to fetch todos")
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodoPageHandler は ?page=&limit= のウィンドウでTodoを取得します。
func (h *TodoHandler) GetTodoPageHandler(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	page, err := h.todoService.GetTodoPage(c.Request.Context(), q.Page, q.Limit, q.Q)
	if err != nil {
		h.respondError(c, err, "Failed to fetch todos")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	todo, err := h.todoService.GetTodoByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch todo")
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodoHandler はTodoを更新します。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	var req models.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.todoService.UpdateTodo(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "Failed to update todo")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTodoHandler はTodoを削除します。成功時は204を返します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	if err := h.todoService.DeleteTodo(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete todo")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError はドメインエラーをHTTPステータスに変換します。
func (h *TodoHandler) respondError(c *gin.Context, err error, message string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": ve.Error()})
	case errors.Is(err, models.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
	case errors.Is(err, models.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
	default:
		h.log.ErrorContext(c.Request.Context(), message, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
