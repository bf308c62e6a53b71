package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/mapfuse/internal/app"
	"github.com/specialistvlad/mapfuse/internal/cli"
)

// main is the entrypoint for the mapfuse application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. The graph goes to outW, logs and help text to errW.
func run(outW, errW io.Writer, args []string) (err error) {
	inv, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	mapfuseApp, err := app.NewApp(outW, errW, inv.Config)
	if err != nil {
		return err
	}

	ctx := context.Background()
	switch inv.Command {
	case cli.CommandValidate:
		return mapfuseApp.Validate(ctx)
	default:
		_, err = mapfuseApp.Run(ctx)
		return err
	}
}
