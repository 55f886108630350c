package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/logger"
	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/routes"
	"fullstack-todolist/backend/internal/services"
)

// TestJWTSecret はテスト用の32文字以上のシークレットです。
const TestJWTSecret = "test-secret-test-secret-test-secret"

// NewTestConfig はテスト用の設定を返します。認証は無効です。
func NewTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.EnvDevelopment},
		Auth: config.AuthConfig{
			JWTIssuer: "fullstack-todolist",
			TokenTTL:  time.Hour,
		},
		CORS: config.CORSConfig{
			AllowedOrigins:   "http://localhost:3000",
			AllowedMethods:   "GET,POST,PUT,DELETE,OPTIONS",
			AllowedHeaders:   "Origin,Content-Type,Accept,Authorization",
			AllowCredentials: true,
			MaxAge:           time.Hour,
		},
		Log: config.LogConfig{Level: "error", Format: "text"},
	}
}

// SetupTestRouter はフェイクリポジトリを使うテスト用のGinルーターを作成します。
func SetupTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *FakeTodoRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg == nil {
		cfg = NewTestConfig()
	}
	repo := NewFakeTodoRepository()
	return routes.SetupRouter(cfg, repo, logger.Discard()), repo
}

// NewTestToken は cfg.Auth で署名したトークンを返します。
func NewTestToken(t *testing.T, cfg *config.Config, subject string) string {
	t.Helper()
	token, err := services.NewJWTService(cfg.Auth).GenerateToken(subject, 0)
	require.NoError(t, err)
	return token
}

// DoJSON はJSONボディ付きのリクエストをルーターに送ります。bodyがnilなら空ボディです。
func DoJSON(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// CreateTestTodo はAPI経由でTodoを作成します。
func CreateTestTodo(t *testing.T, router http.Handler, token, title, description string) *models.Todo {
	t.Helper()
	w := DoJSON(t, router, http.MethodPost, "/api/todos", models.CreateTodoRequest{
		Title:       title,
		Description: description,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	return &created
}
