package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gofinances/internal/amqp"
	"gofinances/internal/cli"
	"gofinances/internal/config"
	applog "gofinances/internal/log"
	"gofinances/internal/services"
)

var errUsage = errors.New("usage: gofinances-import -file transactions.json")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	file := flag.String("file", "", "JSON file with the transaction list (- for stdin)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall import timeout")
	flag.Parse()

	if *file == "" {
		return errUsage
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentImport)
	cfg, err := cli.LoadConfig(logger)
	if err != nil {
		return err
	}

	if cfg.DataBackend == config.BackendMemory {
		logger.Error("The memory backend lives inside one process; import into sqlite instead")
		return errors.New("memory backend cannot be imported into")
	}

	raw, err := readInput(*file)
	if err != nil {
		logger.Error("Failed to read input", applog.FieldError, err, "file", *file)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeStorage)
		return err
	}
	defer res.Close()

	store, err := res.Store()
	if err != nil {
		logger.Error("Backend cannot be written", applog.FieldError, err, "backend", cfg.DataBackend)
		return err
	}

	var notifier services.ChangeNotifier
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, change will not be announced", applog.FieldError, err)
		} else {
			defer client.Close()
			notifier = client
		}
	}

	out, err := services.NewImportService(store, cfg.StorageKey, notifier, logger).Import(ctx, raw)
	if err != nil {
		logger.Error("Import failed", applog.FieldError, err, applog.FieldOperation, applog.OpImport)
		return err
	}
	fmt.Printf("imported %d transactions into %s (notified: %t)\n", out.Count, cfg.StorageKey, out.Notified)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
