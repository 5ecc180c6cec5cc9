package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/stepattend/internal/attend/app"
	"github.com/aussiebroadwan/stepattend/internal/attend/cli"
)

func main() {
	cfg := app.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	code := cli.New(application, os.Stdin, os.Stdout, os.Stderr).Run(ctx, os.Args[1:])

	_ = application.Close()
	stop()
	os.Exit(code)
}
