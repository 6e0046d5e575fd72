package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/perfbridge/internal/app"
	"github.com/vk/perfbridge/internal/cli"
	"github.com/vk/perfbridge/internal/hcl"
)

// exitNotFound is the exit code used when -resolve names an unknown module.
const exitNotFound = 3

// main is the entrypoint for the perfbridge application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical start-up errors, so we recover here to
	// turn them into a clean error for the caller.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	bridge := app.NewApp(outW, errW, appConfig, hcl.NewLoader(), hcl.NewConverter())

	if err := bridge.Run(ctx); err != nil {
		if errors.Is(err, app.ErrModuleNotFound) {
			return &cli.ExitError{Code: exitNotFound, Message: err.Error()}
		}
		return err
	}
	return nil
}
