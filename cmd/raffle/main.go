package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"reblograffle/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	env := cli.DefaultEnv()
	code := cli.Exit(env, cli.NewRootCmd(env).ExecuteContext(ctx))
	cancel()
	os.Exit(code)
}
