package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"fullstack-todolist/backend/internal/exitcode"
	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/services"
	"fullstack-todolist/backend/internal/workflow"
)

// requireID は位置引数からIDを1つ取り出します。
func requireID(args []string, errOut io.Writer) (string, bool) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: todo id required")
		return "", false
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return "", false
	}
	return args[0], true
}

func backendError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.BackendError
}

// windowFlags は --page と --limit を登録します。
type windowFlags struct {
	page  int
	limit int
}

func (w *windowFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&w.page, "page", services.DefaultPage, "")
	fs.IntVar(&w.limit, "limit", services.DefaultLimit, "")
}

func (w *windowFlags) validate(errOut io.Writer) bool {
	if w.page < 1 || w.limit < 1 {
		fmt.Fprintln(errOut, "error: --page and --limit must be positive")
		return false
	}
	return true
}

// listCmd は list コマンドです。--all でページングせずに全件を表示します。
type listCmd struct {
	win   windowFlags
	query string
	all   bool
}

func (c *listCmd) Name() string     { return "list" }
func (c *listCmd) Synopsis() string { return "List todos, newest first" }
func (c *listCmd) Usage() string    { return "todoctl list [--page N] [--limit N] [--all] [--q text]" }
func (c *listCmd) NeedsAPI() bool   { return true }

func (c *listCmd) RegisterFlags(fs *flag.FlagSet) {
	c.win.register(fs)
	fs.StringVar(&c.query, "q", "", "")
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *listCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(env.ErrOut, "error: unexpected arguments: %s\n", strings.Join(args, " "))
		return exitcode.UserError
	}
	if c.all {
		todos, err := env.API.GetTodos(ctx, c.query)
		if err != nil {
			return backendError(env.ErrOut, err)
		}
		FormatAll(env.Out, todos)
		return exitcode.Success
	}
	if !c.win.validate(env.ErrOut) {
		return exitcode.UserError
	}
	page, err := env.API.ListTodos(ctx, c.win.page, c.win.limit, c.query)
	if err != nil {
		return backendError(env.ErrOut, err)
	}
	FormatPage(env.Out, page)
	return exitcode.Success
}

// showCmd は show コマンドです。
type showCmd struct{}

func (c *showCmd) Name() string                { return "show" }
func (c *showCmd) Synopsis() string            { return "Show one todo in full" }
func (c *showCmd) Usage() string               { return "todoctl show <id>" }
func (c *showCmd) NeedsAPI() bool              { return true }
func (c *showCmd) RegisterFlags(*flag.FlagSet) {}

func (c *showCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, ok := requireID(args, env.ErrOut)
	if !ok {
		return exitcode.UserError
	}
	todo, err := env.API.GetTodo(ctx, id)
	if err != nil {
		return backendError(env.ErrOut, err)
	}
	FormatDetail(env.Out, todo)
	return exitcode.Success
}

// addCmd は add コマンドです。
type addCmd struct {
	title       string
	description string
	done        bool
}

func (c *addCmd) Name() string     { return "add" }
func (c *addCmd) Synopsis() string { return "Create a todo" }
func (c *addCmd) Usage() string    { return "todoctl add --title T --description D [--done]" }
func (c *addCmd) NeedsAPI() bool   { return true }

func (c *addCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.BoolVar(&c.done, "done", false, "")
}

func (c *addCmd) Run(ctx context.Context, env *Env, args []string) int {
	if strings.TrimSpace(c.title) == "" || strings.TrimSpace(c.description) == "" {
		fmt.Fprintln(env.ErrOut, "error: --title and --description are required")
		return exitcode.UserError
	}
	created, err := env.API.CreateTodo(ctx, models.CreateTodoRequest{
		Title:       c.title,
		Description: c.description,
		IsCompleted: c.done,
	})
	if err != nil {
		return backendError(env.ErrOut, err)
	}
	fmt.Fprintln(env.Out, created.ID)
	return exitcode.Success
}

// doneCmd は done コマンドです。--undo で未完了に戻します。
type doneCmd struct {
	undo bool
}

func (c *doneCmd) Name() string     { return "done" }
func (c *doneCmd) Synopsis() string { return "Mark a todo completed" }
func (c *doneCmd) Usage() string    { return "todoctl done [--undo] <id>" }
func (c *doneCmd) NeedsAPI() bool   { return true }

func (c *doneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.undo, "undo", false, "")
}

func (c *doneCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, ok := requireID(args, env.ErrOut)
	if !ok {
		return exitcode.UserError
	}
	completed := !c.undo
	if _, err := env.API.UpdateTodo(ctx, id, models.UpdateTodoRequest{IsCompleted: &completed}); err != nil {
		return backendError(env.ErrOut, err)
	}
	fmt.Fprintln(env.Out, "ok")
	return exitcode.Success
}

// rmCmd は rm コマンドです。削除後に同じページを再表示します。
type rmCmd struct {
	win windowFlags
}

func (c *rmCmd) Name() string     { return "rm" }
func (c *rmCmd) Synopsis() string { return "Delete a todo and show the current page again" }
func (c *rmCmd) Usage() string    { return "todoctl rm [--page N] [--limit N] <id>" }
func (c *rmCmd) NeedsAPI() bool   { return true }

func (c *rmCmd) RegisterFlags(fs *flag.FlagSet) {
	c.win.register(fs)
}

func (c *rmCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, ok := requireID(args, env.ErrOut)
	if !ok {
		return exitcode.UserError
	}
	if !c.win.validate(env.ErrOut) {
		return exitcode.UserError
	}

	refresh := workflow.RefreshFunc(func(ctx context.Context, page, limit int) error {
		p, err := env.API.ListTodos(ctx, page, limit, "")
		if err != nil {
			return err
		}
		FormatPage(env.Out, p)
		return nil
	})
	report := workflow.ReportFunc(func(err error) {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
	})

	wf := workflow.NewDeleteWorkflow(env.API, refresh, report, workflow.WithLogger(env.Log))
	if !wf.Run(ctx, id, workflow.Window{Page: c.win.page, Limit: c.win.limit}) {
		return exitcode.BackendError
	}
	return exitcode.Success
}

// healthCmd は health コマンドです。--verbose で接続先のエンドポイントも表示します。
type healthCmd struct {
	verbose bool
}

func (c *healthCmd) Name() string     { return "health" }
func (c *healthCmd) Synopsis() string { return "Check the API and its store" }
func (c *healthCmd) Usage() string    { return "todoctl health [--verbose]" }
func (c *healthCmd) NeedsAPI() bool   { return true }

func (c *healthCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "")
}

func (c *healthCmd) Run(ctx context.Context, env *Env, _ []string) int {
	if c.verbose {
		e := env.API.Endpoints()
		fmt.Fprintf(env.Out, "todos:    %s\ngettodos: %s\nhealth:   %s\n", e.Todos, e.GetTodos, e.Health)
	}
	if err := env.API.Health(ctx); err != nil {
		return backendError(env.ErrOut, err)
	}
	fmt.Fprintln(env.Out, "ok")
	return exitcode.Success
}

// tokenCmd は token コマンドです。設定のJWTシークレットで開発用トークンを発行します。
type tokenCmd struct {
	subject string
	ttl     time.Duration
}

func (c *tokenCmd) Name() string     { return "token" }
func (c *tokenCmd) Synopsis() string { return "Mint a bearer token with the configured secret" }
func (c *tokenCmd) Usage() string    { return "todoctl token [--sub S] [--ttl D]" }
func (c *tokenCmd) NeedsAPI() bool   { return false }

func (c *tokenCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.subject, "sub", "todoctl", "")
	fs.DurationVar(&c.ttl, "ttl", 0, "")
}

func (c *tokenCmd) Run(_ context.Context, env *Env, _ []string) int {
	if !env.Cfg.Auth.Enabled() {
		fmt.Fprintln(env.ErrOut, "error: JWT_SECRET is not set")
		return exitcode.UserError
	}
	token, err := services.NewJWTService(env.Cfg.Auth).GenerateToken(c.subject, c.ttl)
	if err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintln(env.Out, token)
	return exitcode.Success
}

// helpCmd は help コマンドです。
type helpCmd struct {
	d *Dispatcher
}

func (c *helpCmd) Name() string                { return "help" }
func (c *helpCmd) Synopsis() string            { return "Show this help" }
func (c *helpCmd) Usage() string               { return "todoctl help" }
func (c *helpCmd) NeedsAPI() bool              { return false }
func (c *helpCmd) RegisterFlags(*flag.FlagSet) {}

func (c *helpCmd) Run(_ context.Context, env *Env, _ []string) int {
	fmt.Fprintln(env.Out, "Usage:")
	for _, name := range c.d.names() {
		cmd := c.d.commands[name]()
		fmt.Fprintf(env.Out, "  %-42s %s\n", cmd.Usage(), cmd.Synopsis())
	}
	return exitcode.Success
}
