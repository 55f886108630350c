package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fullstack-todolist/backend/internal/cli"
	"fullstack-todolist/backend/internal/client"
	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/exitcode"
	"fullstack-todolist/backend/internal/logger"
	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/repositories"
	"fullstack-todolist/backend/internal/services"
	"fullstack-todolist/backend/testutil"
)

type harness struct {
	cfg  *config.Config
	repo *testutil.FakeTodoRepository
	srv  *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testutil.NewTestConfig()
	router, repo := testutil.SetupTestRouter(t, cfg)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	cfg.Client.BaseURL = srv.URL
	cfg.Client.Timeout = 5 * time.Second
	return &harness{cfg: cfg, repo: repo, srv: srv}
}

// runCommand はDispatcherを実行して終了コード、stdout、stderrを返します。
func (h *harness) runCommand(args ...string) (int, string, string) {
	d := cli.NewDispatcher(h.cfg, cli.DefaultAPIFactory, logger.Discard())
	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (h *harness) seed(n int) []*models.Todo {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*models.Todo, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, h.repo.Add(models.Todo{
			Title:       "todo " + string(rune('A'+i)),
			Description: "d",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	return out
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.runCommand("unknowncmd")
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unknown command: unknowncmd\n", stderr)

	code, _, stderr = h.runCommand("--page")
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unknown command: --page\n", stderr)
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.runCommand("list", "--bogus")
	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "error: unknown flag: -bogus")
}

func TestDispatcher_Help(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.runCommand("help")
	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "todoctl rm")
}

func TestList_DefaultCommand(t *testing.T) {
	h := newHarness(t)
	h.seed(3)

	code, stdout, stderr := h.runCommand()
	require.Equal(t, exitcode.Success, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "page 1/1 (3 total)", lines[0])
	assert.Contains(t, lines[1], "todo C")
}

func TestList_Window(t *testing.T) {
	h := newHarness(t)
	h.seed(5)

	code, stdout, _ := h.runCommand("list", "--page", "2", "--limit", "2")
	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "page 2/3 (5 total)")
	assert.Contains(t, stdout, "   3  [ ] todo C")

	code, _, stderr := h.runCommand("list", "--page", "0")
	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "must be positive")
}

func TestList_All(t *testing.T) {
	h := newHarness(t)
	h.seed(12)

	code, stdout, stderr := h.runCommand("list", "--all")
	require.Equal(t, exitcode.Success, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, "12 todos", lines[0])
	assert.Contains(t, lines[1], "   1  [ ] todo L")
	assert.Contains(t, lines[12], "  12  [ ] todo A")

	code, stdout, _ = h.runCommand("list", "--all", "--q", "todo b")
	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "1 todos", strings.Split(stdout, "\n")[0])
	assert.Contains(t, stdout, "todo B")

	code, stdout, _ = h.runCommand("list", "--all", "--q", "nothing")
	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "0 todos\n(no todos)\n", stdout)
}

func TestShow(t *testing.T) {
	h := newHarness(t)
	todos := h.seed(2)
	done := true
	_, err := h.repo.Update(context.Background(), todos[1].ID, repositories.TodoUpdate{IsCompleted: &done, UpdatedAt: todos[1].CreatedAt})
	require.NoError(t, err)

	code, stdout, stderr := h.runCommand("show", todos[1].ID)
	require.Equal(t, exitcode.Success, code, stderr)
	assert.Contains(t, stdout, "id:          "+todos[1].ID+"\n")
	assert.Contains(t, stdout, "title:       todo B\n")
	assert.Contains(t, stdout, "status:      done\n")
	assert.Contains(t, stdout, "created:     2024-01-01T00:01:00Z\n")

	code, _, stderr = h.runCommand("show", "missing")
	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: HTTP error! status: 404\n", stderr)

	code, _, _ = h.runCommand("show")
	assert.Equal(t, exitcode.UserError, code)
}

func TestAdd(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.runCommand("add", "--title", "Buy milk", "--description", "2 liters")
	require.Equal(t, exitcode.Success, code, stderr)
	id := strings.TrimSpace(stdout)
	require.NotEmpty(t, id)

	todo, err := h.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", todo.Title)

	code, _, _ = h.runCommand("add", "--title", "no description")
	assert.Equal(t, exitcode.UserError, code)
}

func TestDone(t *testing.T) {
	h := newHarness(t)
	todo := h.seed(1)[0]

	code, stdout, _ := h.runCommand("done", todo.ID)
	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "ok\n", stdout)
	got, _ := h.repo.FindByID(context.Background(), todo.ID)
	assert.True(t, got.IsCompleted)

	code, _, _ = h.runCommand("done", "--undo", todo.ID)
	require.Equal(t, exitcode.Success, code)
	got, _ = h.repo.FindByID(context.Background(), todo.ID)
	assert.False(t, got.IsCompleted)

	code, _, stderr := h.runCommand("done")
	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "todo id required")
}

func TestRm_DeletesAndRefreshesSameWindow(t *testing.T) {
	h := newHarness(t)
	todos := h.seed(3)

	code, stdout, stderr := h.runCommand("rm", "--page", "1", "--limit", "2", todos[2].ID)
	require.Equal(t, exitcode.Success, code, stderr)
	assert.Empty(t, stderr)
	assert.Equal(t, 2, h.repo.Len())
	assert.Contains(t, stdout, "page 1/1 (2 total)")
	assert.NotContains(t, stdout, todos[2].ID)
}

func TestRm_EmptiedPageStillRefreshes(t *testing.T) {
	h := newHarness(t)
	todos := h.seed(3)

	// 2ページ目の唯一のTodoを削除すると、空のページが再表示される
	code, stdout, _ := h.runCommand("rm", "--page", "2", "--limit", "2", todos[0].ID)
	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "page 2/1 (2 total)")
	assert.Contains(t, stdout, "(no todos)")
}

func TestRm_NotFound(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.runCommand("rm", "missing")
	assert.Equal(t, exitcode.BackendError, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "error: HTTP error! status: 404\n", stderr)
}

func TestRm_RefreshFailureKeepsSuccess(t *testing.T) {
	h := newHarness(t)
	todo := h.seed(1)[0]
	h.repo.FindPageErr = errors.New("store down")

	code, _, stderr := h.runCommand("rm", todo.ID)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "error: HTTP error! status: 500\n", stderr)
	assert.Equal(t, 0, h.repo.Len())
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	code, stdout, _ := h.runCommand("health")
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "ok\n", stdout)

	code, stdout, _ = h.runCommand("health", "--verbose")
	assert.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "todos:    "+h.srv.URL+"/api/todos\n")
	assert.Contains(t, stdout, "gettodos: "+h.srv.URL+"/api/gettodos\n")
	assert.Contains(t, stdout, "health:   "+h.srv.URL+"/health\n")
	assert.True(t, strings.HasSuffix(stdout, "ok\n"))

	h.repo.PingErr = errors.New("down")
	code, _, stderr := h.runCommand("health")
	assert.Equal(t, exitcode.BackendError, code)
	assert.Contains(t, stderr, "503")
}

func TestBackendUnreachable(t *testing.T) {
	h := newHarness(t)
	h.srv.Close()

	code, _, stderr := h.runCommand("rm", "abc")
	assert.Equal(t, exitcode.BackendError, code)
	assert.True(t, strings.HasPrefix(stderr, "error: "))
}

func TestToken(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.runCommand("token")
	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "JWT_SECRET")

	h.cfg.Auth.JWTSecret = testutil.TestJWTSecret
	code, stdout, _ := h.runCommand("token", "--sub", "alice", "--ttl", "1h")
	require.Equal(t, exitcode.Success, code)

	claims, err := services.NewJWTService(h.cfg.Auth).ValidateToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestAuthenticatedClient(t *testing.T) {
	cfg := testutil.NewTestConfig()
	cfg.Auth.JWTSecret = testutil.TestJWTSecret
	router, _ := testutil.SetupTestRouter(t, cfg)
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := client.New(srv.URL)
	err := c.Health(context.Background())
	require.NoError(t, err)

	var httpErr *client.HTTPError
	_, err = c.ListTodos(context.Background(), 1, 10, "")
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	c = client.New(srv.URL, client.WithToken(testutil.NewTestToken(t, cfg, "cli")))
	_, err = c.ListTodos(context.Background(), 1, 10, "")
	assert.NoError(t, err)
}
