package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Adithya411/sac-databricks-widget/internal/config"
	"github.com/Adithya411/sac-databricks-widget/internal/gateway"
	"github.com/Adithya411/sac-databricks-widget/internal/host"
	"github.com/Adithya411/sac-databricks-widget/internal/httpserver"
)

var errInteractionFailed = errors.New("interaction failed")

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args, newLogger(os.Stdout))
	case "ask":
		err = runAsk(args, newLogger(os.Stderr), os.Stdout, os.Stderr)
	case "tui":
		err = runTUI(args)
	default:
		err = fmt.Errorf("unknown command %q (want serve, ask or tui)", cmd)
	}

	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if !errors.Is(err, errInteractionFailed) {
		newLogger(os.Stderr).Error("command failed", "command", cmd, "error", err)
	}
	os.Exit(1)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	cfgPath := fs.String("c", "", "path to yaml config file")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}
	if strings.TrimSpace(*cfgPath) == "" {
		return nil, fmt.Errorf("missing required -c <config.yaml>")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func runServe(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	reg, err := host.NewRegistry(cfg, gateway.NewService(logger), logger)
	if err != nil {
		return fmt.Errorf("build widgets: %w", err)
	}
	defer reg.Close()

	server := httpserver.New(cfg.Listen, logger, reg, httpserver.Options{AllowedOrigins: cfg.AllowedOrigins})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("widget host starting", "listen", cfg.Listen, "widgets", reg.Names())
		errCh <- server.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server exited unexpectedly: %w", err)
		}
		return nil
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("widget host stopped")
	return nil
}
