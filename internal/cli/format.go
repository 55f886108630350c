package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fullstack-todolist/backend/internal/models"
)

// FormatPage は一覧ページを出力します。
// 形式: "page P/T (N total)" の後に "{番号:>4}  [x] {タイトル}  {ID}" を1行ずつ。
func FormatPage(w io.Writer, page *models.TodoPage) {
	totalPages := page.TotalPages
	if totalPages == 0 {
		totalPages = 1
	}
	fmt.Fprintf(w, "page %d/%d (%d total)\n", page.Page, totalPages, page.Total)
	if len(page.Todos) == 0 {
		fmt.Fprintln(w, "(no todos)")
		return
	}
	offset := (page.Page - 1) * page.Limit
	for i, t := range page.Todos {
		FormatTodo(w, offset+i+1, t)
	}
}

// FormatAll はページングしない一覧を出力します。
func FormatAll(w io.Writer, todos []*models.Todo) {
	fmt.Fprintf(w, "%d todos\n", len(todos))
	if len(todos) == 0 {
		fmt.Fprintln(w, "(no todos)")
		return
	}
	for i, t := range todos {
		FormatTodo(w, i+1, t)
	}
}

// FormatDetail はTodoの全フィールドを出力します。
func FormatDetail(w io.Writer, t *models.Todo) {
	status := "open"
	if t.IsCompleted {
		status = "done"
	}
	fmt.Fprintf(w, "id:          %s\n", t.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(t.Title))
	fmt.Fprintf(w, "description: %s\n", t.Description)
	fmt.Fprintf(w, "status:      %s\n", status)
	fmt.Fprintf(w, "created:     %s\n", t.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "updated:     %s\n", t.UpdatedAt.UTC().Format(time.RFC3339))
}

// FormatTodo はTodoを1行で出力します。
func FormatTodo(w io.Writer, num int, t *models.Todo) {
	mark := " "
	if t.IsCompleted {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s  %s\n", num, mark, normalizeTitle(t.Title), t.ID)
}

// normalizeTitle は改行を空白にし、空のタイトルを "(untitled)" にします。
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return strings.TrimSpace(title)
}
