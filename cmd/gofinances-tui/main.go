package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gofinances/internal/cli"
	applog "gofinances/internal/log"
	"gofinances/internal/tui"
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("gofinances-tui: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()

	// The terminal belongs to the UI, so logs go to TUI_LOG_FILE or nowhere.
	logOut := io.Discard
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				defer f.Close()
				logOut = f
			}
		}
	}
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: applog.ComponentTUI,
		Output:    logOut,
	})
	applog.SetDefault(logger)

	cfg, err := cli.LoadConfig(logger)
	if err != nil {
		return err
	}
	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", applog.FieldError, err)
		return err
	}
	defer res.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	if err := tui.Run(ctx, cli.NewController(cfg, res, logger)); err != nil {
		logger.Error("TUI exited with error", applog.FieldError, err)
		return err
	}
	return nil
}
