package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tunepull/tunepull/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.New(os.Stdin, os.Stdout).Run(ctx)
	stop()
	os.Exit(code)
}
