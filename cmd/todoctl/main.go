// Command todoctl はTodo APIのCLIクライアントです。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fullstack-todolist/backend/internal/cli"
	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/exitcode"
	"fullstack-todolist/backend/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitcode.UserError)
	}
	cfg.Log = cli.LogConfig(cfg.Log, os.LookupEnv)
	lg := logger.New(cfg.Log)

	d := cli.NewDispatcher(cfg, cli.DefaultAPIFactory, lg)
	code := d.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
