// Package cli はtodoctlのコマンド解析と実行を行います。
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"fullstack-todolist/backend/internal/client"
	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/exitcode"
	"fullstack-todolist/backend/internal/models"
)

// API はCLIが使うTodo APIです。client.Client が実装します。
type API interface {
	DeleteTodo(ctx context.Context, id string) error
	ListTodos(ctx context.Context, page, limit int, search string) (*models.TodoPage, error)
	GetTodos(ctx context.Context, search string) ([]*models.Todo, error)
	GetTodo(ctx context.Context, id string) (*models.Todo, error)
	CreateTodo(ctx context.Context, req models.CreateTodoRequest) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id string, req models.UpdateTodoRequest) (*models.Todo, error)
	Health(ctx context.Context) error
	Endpoints() config.Endpoints
}

var _ API = (*client.Client)(nil)

// APIFactory は設定からAPIを作成します。テストではhttptestのサーバーを指します。
type APIFactory func(cfg *config.Config) (API, error)

// DefaultAPIFactory は client.NewFromConfig を使うAPIFactoryです。
func DefaultAPIFactory(cfg *config.Config) (API, error) {
	return client.NewFromConfig(cfg), nil
}

// Env はコマンド実行時の環境です。
type Env struct {
	Cfg    *config.Config
	API    API // NeedsAPI() がfalseの場合はnil
	Log    *slog.Logger
	Out    io.Writer
	ErrOut io.Writer
}

// Command はCLIのコマンドです。
type Command interface {
	Name() string
	Synopsis() string
	Usage() string
	NeedsAPI() bool
	RegisterFlags(fs *flag.FlagSet)
	Run(ctx context.Context, env *Env, args []string) int
}

// Dispatcher は引数を解析してコマンドに振り分けます。
type Dispatcher struct {
	cfg      *config.Config
	factory  APIFactory
	log      *slog.Logger
	commands map[string]func() Command
}

// NewDispatcher は新しいDispatcherを作成します。
func NewDispatcher(cfg *config.Config, factory APIFactory, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		cfg:     cfg,
		factory: factory,
		log:     log,
	}
	d.commands = map[string]func() Command{
		"list":   func() Command { return &listCmd{} },
		"show":   func() Command { return &showCmd{} },
		"add":    func() Command { return &addCmd{} },
		"done":   func() Command { return &doneCmd{} },
		"rm":     func() Command { return &rmCmd{} },
		"health": func() Command { return &healthCmd{} },
		"token":  func() Command { return &tokenCmd{} },
		"help":   func() Command { return &helpCmd{d: d} },
	}
	return d
}

// Run は引数を解析してコマンドを実行し、終了コードを返します。
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// 引数なしはlist
	if len(args) == 0 {
		args = []string{"list"}
	}

	name := args[0]
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	newCmd, ok := d.commands[name]
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	cmd := newCmd()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args[1:]); err != nil {
		errStr := err.Error()
		if strings.HasPrefix(errStr, "flag provided but not defined: ") {
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", strings.TrimPrefix(errStr, "flag provided but not defined: "))
		} else {
			fmt.Fprintf(errOut, "error: %s\n", errStr)
		}
		fmt.Fprintf(errOut, "usage: %s\n", cmd.Usage())
		return exitcode.UserError
	}

	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	env := &Env{Cfg: d.cfg, Log: d.log, Out: out, ErrOut: errOut}
	if cmd.NeedsAPI() {
		api, err := d.factory(d.cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		env.API = api
	}

	return cmd.Run(ctx, env, positional)
}

func (d *Dispatcher) names() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
