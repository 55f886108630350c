package workflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fullstack-todolist/backend/internal/client"
	"fullstack-todolist/backend/internal/logger"
)

type refreshRecorder struct {
	mu    sync.Mutex
	calls []Window
	err   error
}

func (r *refreshRecorder) FetchTodos(_ context.Context, page, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Window{Page: page, Limit: limit})
	return r.err
}

func (r *refreshRecorder) Calls() []Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Window(nil), r.calls...)
}

type alertRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (a *alertRecorder) Report(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
}

func (a *alertRecorder) Errors() []error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]error(nil), a.errs...)
}

// blockingDeleter は release されるまで削除をブロックします。
type blockingDeleter struct {
	release chan struct{}
	err     error
}

func (d *blockingDeleter) DeleteTodo(ctx context.Context, _ string) error {
	select {
	case <-d.release:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func statusServer(t *testing.T, status int) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	paths := []string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func newWorkflow(d Deleter, r Refresher, a Reporter, opts ...Option) *DeleteWorkflow {
	return NewDeleteWorkflow(d, r, a, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func TestDeleteWorkflow_SuccessRefreshesSameWindow(t *testing.T) {
	srv, paths := statusServer(t, http.StatusOK)
	refresh := &refreshRecorder{}
	alerts := &alertRecorder{}
	wf := newWorkflow(client.New(srv.URL), refresh, alerts)

	win := Window{Page: 3, Limit: 20}
	status := wf.Run(context.Background(), "abc123", win)

	assert.True(t, status)
	assert.Equal(t, []string{"DELETE /api/todos/abc123"}, *paths)
	assert.Equal(t, []Window{{Page: 3, Limit: 20}}, refresh.Calls())
	assert.Empty(t, alerts.Errors())
	assert.False(t, wf.Busy())
}

func TestDeleteWorkflow_NoContentIsSuccess(t *testing.T) {
	srv, _ := statusServer(t, http.StatusNoContent)
	refresh := &refreshRecorder{}
	wf := newWorkflow(client.New(srv.URL), refresh, &alertRecorder{})

	assert.True(t, wf.Run(context.Background(), "abc123", Window{Page: 1, Limit: 10}))
	assert.Len(t, refresh.Calls(), 1)
}

func TestDeleteWorkflow_NotFoundAlertsOnceWithoutRefresh(t *testing.T) {
	srv, _ := statusServer(t, http.StatusNotFound)
	refresh := &refreshRecorder{}
	alerts := &alertRecorder{}
	wf := newWorkflow(client.New(srv.URL), refresh, alerts)

	status := wf.Run(context.Background(), "missing", Window{Page: 1, Limit: 10})

	assert.False(t, status)
	assert.Empty(t, refresh.Calls())
	errs := alerts.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "404")
	assert.Equal(t, "HTTP error! status: 404", errs[0].Error())
}

func TestDeleteWorkflow_NetworkFailureAlertsOnce(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	refresh := &refreshRecorder{}
	alerts := &alertRecorder{}
	wf := newWorkflow(client.New(base), refresh, alerts)

	status := wf.Run(context.Background(), "abc123", Window{Page: 1, Limit: 10})

	assert.False(t, status)
	assert.Empty(t, refresh.Calls())
	assert.Len(t, alerts.Errors(), 1)
	assert.False(t, wf.Busy())
}

func TestDeleteWorkflow_RefreshFailureKeepsStatus(t *testing.T) {
	srv, _ := statusServer(t, http.StatusOK)
	refreshErr := errors.New("HTTP error! status: 500")
	refresh := &refreshRecorder{err: refreshErr}
	alerts := &alertRecorder{}
	wf := newWorkflow(client.New(srv.URL), refresh, alerts)

	status := wf.Run(context.Background(), "abc123", Window{Page: 2, Limit: 5})

	assert.True(t, status)
	assert.Len(t, refresh.Calls(), 1)
	errs := alerts.Errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], refreshErr)
}

func TestDeleteWorkflow_PanicIsRecovered(t *testing.T) {
	srv, _ := statusServer(t, http.StatusOK)
	alerts := &alertRecorder{}
	refresh := RefreshFunc(func(context.Context, int, int) error { panic("boom") })
	wf := newWorkflow(client.New(srv.URL), refresh, alerts)

	op := wf.Start(context.Background(), "abc123", Window{Page: 1, Limit: 10})

	assert.True(t, op.Wait())
	assert.False(t, op.Busy())
	errs := alerts.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "boom")
}

func TestDeleteWorkflow_BusyFromEntryUntilSettled(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want bool
	}{
		{name: "success", want: true},
		{name: "failure", err: &client.HTTPError{StatusCode: http.StatusInternalServerError}, want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			deleter := &blockingDeleter{release: make(chan struct{}), err: tc.err}
			wf := newWorkflow(deleter, &refreshRecorder{}, &alertRecorder{})

			op := wf.Start(context.Background(), "abc123", Window{Page: 1, Limit: 10})
			assert.True(t, op.Busy())
			assert.True(t, wf.Busy())
			assert.False(t, op.Status())

			close(deleter.release)
			assert.Equal(t, tc.want, op.Wait())
			assert.False(t, op.Busy())
			assert.False(t, wf.Busy())
		})
	}
}

func TestDeleteWorkflow_ContextCancelReleasesBusy(t *testing.T) {
	deleter := &blockingDeleter{release: make(chan struct{})}
	alerts := &alertRecorder{}
	wf := newWorkflow(deleter, &refreshRecorder{}, alerts)

	ctx, cancel := context.WithCancel(context.Background())
	op := wf.Start(ctx, "abc123", Window{Page: 1, Limit: 10})
	cancel()

	select {
	case <-op.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not settle after cancel")
	}
	assert.False(t, op.Status())
	errs := alerts.Errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestDeleteWorkflow_BusyHookTransitions(t *testing.T) {
	var mu sync.Mutex
	var transitions []bool
	hook := func(busy bool) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, busy)
	}
	srv, _ := statusServer(t, http.StatusOK)
	wf := newWorkflow(client.New(srv.URL), &refreshRecorder{}, &alertRecorder{}, WithBusyHook(hook))

	require.True(t, wf.Run(context.Background(), "abc123", Window{Page: 1, Limit: 10}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestDeleteWorkflow_BusyHookCanReadBusy(t *testing.T) {
	var mu sync.Mutex
	var seen []bool
	var wf *DeleteWorkflow
	hook := func(bool) {
		busy := wf.Busy()
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, busy)
	}
	srv, _ := statusServer(t, http.StatusOK)
	wf = newWorkflow(client.New(srv.URL), &refreshRecorder{}, &alertRecorder{}, WithBusyHook(hook))

	done := make(chan bool, 1)
	go func() { done <- wf.Run(context.Background(), "abc123", Window{Page: 1, Limit: 10}) }()

	select {
	case status := <-done:
		assert.True(t, status)
	case <-time.After(2 * time.Second):
		t.Fatal("busy hook calling Busy did not return")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, seen)
}

// 重複した呼び出しは排他されない。各Opは自分の状態を持ち、
// 全体のBusyは最後の呼び出しが終わるまでtrueのまま。
func TestDeleteWorkflow_OverlappingCalls(t *testing.T) {
	first := &blockingDeleter{release: make(chan struct{})}
	second := &blockingDeleter{release: make(chan struct{})}
	deleters := map[string]*blockingDeleter{"first": first, "second": second}
	d := deleterFunc(func(ctx context.Context, id string) error {
		return deleters[id].DeleteTodo(ctx, id)
	})
	refresh := &refreshRecorder{}
	wf := newWorkflow(d, refresh, &alertRecorder{})

	win := Window{Page: 1, Limit: 10}
	opA := wf.Start(context.Background(), "first", win)
	opB := wf.Start(context.Background(), "second", Window{Page: 2, Limit: 10})
	assert.Equal(t, "first", opA.ID())
	assert.Equal(t, "second", opB.ID())
	assert.Equal(t, win, opA.Window())
	assert.Equal(t, Window{Page: 2, Limit: 10}, opB.Window())
	assert.True(t, opA.Busy())
	assert.True(t, opB.Busy())

	close(first.release)
	require.True(t, opA.Wait())
	assert.False(t, opA.Busy())
	assert.True(t, opB.Busy())
	assert.True(t, wf.Busy())

	close(second.release)
	require.True(t, opB.Wait())
	assert.False(t, wf.Busy())
	assert.Equal(t, []Window{win, {Page: 2, Limit: 10}}, refresh.Calls())
}

type deleterFunc func(ctx context.Context, id string) error

func (f deleterFunc) DeleteTodo(ctx context.Context, id string) error { return f(ctx, id) }
