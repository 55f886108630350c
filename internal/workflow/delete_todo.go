// Package workflow はTodo削除と一覧の再取得をまとめたクライアント側の処理です。
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Window は呼び出し側が表示中のページ (page, limit) です。ワークフローは変更しません。
type Window struct {
	Page  int
	Limit int
}

// Deleter は削除リクエストを送ります。client.Client が実装します。
type Deleter interface {
	DeleteTodo(ctx context.Context, id string) error
}

// Refresher は指定ウィンドウの一覧を再取得します。
type Refresher interface {
	FetchTodos(ctx context.Context, page, limit int) error
}

// RefreshFunc は関数をRefresherとして使うためのアダプターです。
type RefreshFunc func(ctx context.Context, page, limit int) error

func (f RefreshFunc) FetchTodos(ctx context.Context, page, limit int) error {
	return f(ctx, page, limit)
}

// Reporter はユーザーに見えるエラー通知を受け取ります。
type Reporter interface {
	Report(err error)
}

// ReportFunc は関数をReporterとして使うためのアダプターです。
type ReportFunc func(err error)

func (f ReportFunc) Report(err error) { f(err) }

// Op は1回の削除呼び出しの状態です。
type Op struct {
	id     string
	window Window
	busy   atomic.Bool
	status atomic.Bool
	done   chan struct{}
}

// ID は削除対象のIDを返します。
func (o *Op) ID() string { return o.id }

// Window は呼び出し時のウィンドウを返します。
func (o *Op) Window() Window { return o.window }

// Busy は処理中の場合にtrueを返します。
func (o *Op) Busy() bool { return o.busy.Load() }

// Done は処理完了時にcloseされるチャネルを返します。
func (o *Op) Done() <-chan struct{} { return o.done }

// Wait は処理完了まで待ち、Statusを返します。
func (o *Op) Wait() bool {
	<-o.done
	return o.Status()
}

// Status は削除リクエスト自体が成功した場合にtrueを返します。
// 再取得の失敗はStatusに影響しません。
func (o *Op) Status() bool { return o.status.Load() }

// Option はDeleteWorkflowの設定を変更します。
type Option func(*DeleteWorkflow)

// WithLogger はロガーを設定します。
func WithLogger(log *slog.Logger) Option {
	return func(w *DeleteWorkflow) { w.log = log }
}

// WithBusyHook は全体のidle/busy遷移ごとに呼ばれるフックを設定します。
// フックは内部ロックの外で呼ばれるため、中でBusyを参照できます。
// フック内で新しい削除を開始してはいけません。
func WithBusyHook(hook func(busy bool)) Option {
	return func(w *DeleteWorkflow) { w.onBusy = hook }
}

// DeleteWorkflow はTodoを削除し、成功したら同じウィンドウで一覧を再取得します。
// 呼び出し同士の排他は行いません。
type DeleteWorkflow struct {
	deleter   Deleter
	refresher Refresher
	reporter  Reporter
	log       *slog.Logger
	onBusy    func(busy bool)

	mu       sync.Mutex
	inFlight int

	// hookMu は遷移の通知順序を保ちます。mu より先に取得します。
	hookMu sync.Mutex
}

// NewDeleteWorkflow は新しいDeleteWorkflowを作成します。
func NewDeleteWorkflow(deleter Deleter, refresher Refresher, reporter Reporter, opts ...Option) *DeleteWorkflow {
	w := &DeleteWorkflow{
		deleter:   deleter,
		refresher: refresher,
		reporter:  reporter,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With("workflow", "delete_todo")
	return w
}

// Busy はいずれかの呼び出しが処理中の場合にtrueを返します。
func (w *DeleteWorkflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight > 0
}

// Start は削除を開始し、すぐにOpを返します。返った時点でOpはbusyです。
func (w *DeleteWorkflow) Start(ctx context.Context, id string, win Window) *Op {
	op := &Op{id: id, window: win, done: make(chan struct{})}
	op.busy.Store(true)
	w.enter()

	go func() {
		defer w.finish(op)
		w.execute(ctx, op)
	}()
	return op
}

// Run は削除を実行して完了まで待ちます。エラーはReporterに渡され、戻り値はStatusです。
func (w *DeleteWorkflow) Run(ctx context.Context, id string, win Window) bool {
	return w.Start(ctx, id, win).Wait()
}

func (w *DeleteWorkflow) execute(ctx context.Context, op *Op) {
	defer func() {
		if r := recover(); r != nil {
			w.report(ctx, op, fmt.Errorf("delete todo %s: panic: %v", op.id, r))
		}
	}()

	if err := w.deleter.DeleteTodo(ctx, op.id); err != nil {
		w.report(ctx, op, err)
		return
	}
	op.status.Store(true)
	w.log.InfoContext(ctx, "todo deleted", slog.String("todo_id", op.id))

	// ページが空になる場合も再取得する
	if w.refresher == nil {
		return
	}
	if err := w.refresher.FetchTodos(ctx, op.window.Page, op.window.Limit); err != nil {
		w.report(ctx, op, err)
	}
}

func (w *DeleteWorkflow) report(ctx context.Context, op *Op, err error) {
	w.log.WarnContext(ctx, "delete todo failed",
		slog.String("todo_id", op.id),
		slog.Bool("deleted", op.Status()),
		slog.String("error", err.Error()),
	)
	if w.reporter != nil {
		w.reporter.Report(err)
	}
}

func (w *DeleteWorkflow) finish(op *Op) {
	op.busy.Store(false)
	w.leave()
	close(op.done)
}

func (w *DeleteWorkflow) enter() {
	w.transition(1)
}

func (w *DeleteWorkflow) leave() {
	w.transition(-1)
}

func (w *DeleteWorkflow) transition(delta int) {
	w.hookMu.Lock()
	defer w.hookMu.Unlock()

	w.mu.Lock()
	before := w.inFlight > 0
	w.inFlight += delta
	after := w.inFlight > 0
	w.mu.Unlock()

	if before != after && w.onBusy != nil {
		w.onBusy(after)
	}
}
