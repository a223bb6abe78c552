package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya411/sac-databricks-widget/internal/config"
	"github.com/Adithya411/sac-databricks-widget/internal/gateway"
	"github.com/Adithya411/sac-databricks-widget/internal/host"
	"github.com/Adithya411/sac-databricks-widget/internal/tui"
	"github.com/Adithya411/sac-databricks-widget/internal/widget"
)

// runAsk submits one question and prints the settled view to stdout, or to
// stderr when the interaction failed.
func runAsk(args []string, logger *slog.Logger, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("w", "", "widget name from the config")
	question := fs.String("q", "", "question to ask (defaults to the widget's default question)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	wc, err := pickWidget(cfg, *name)
	if err != nil {
		return err
	}

	w, err := host.NewWidget(wc, gateway.NewService(logger), logger)
	if err != nil {
		return err
	}

	settled := make(chan widget.View, 1)
	session := host.NewSession(w, func(r widget.Result, v widget.View) {
		if r.Settled() {
			select {
			case settled <- v:
			default:
			}
		}
	})
	if err := session.Init(host.Props{EndpointURL: wc.EndpointURL, DefaultQuestion: wc.DefaultQuestion}); err != nil {
		return err
	}
	defer session.Dispose()

	text := *question
	if text == "" {
		text = wc.DefaultQuestion
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session.Submit(text)
	select {
	case v := <-settled:
		out := stdout
		if v.Error {
			out = stderr
		}
		fmt.Fprintln(out, v.Status)
		if v.Body != "" {
			fmt.Fprintln(out, v.Body)
		}
		if v.Error {
			return errInteractionFailed
		}
		return nil
	case <-sigCtx.Done():
		return fmt.Errorf("interrupted while waiting for %s", w.EndpointURL())
	}
}

func runTUI(args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("w", "", "widget name from the config")
	logPath := fs.String("log", "", "write JSON logs to this file")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	wc, err := pickWidget(cfg, *name)
	if err != nil {
		return err
	}

	logOut := io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut)

	w, err := host.NewWidget(wc, gateway.NewService(logger), logger)
	if err != nil {
		return err
	}
	bridge := tui.NewBridge()
	session := host.NewSession(w, bridge.Render)
	if err := session.Init(host.Props{EndpointURL: wc.EndpointURL, DefaultQuestion: wc.DefaultQuestion}); err != nil {
		return err
	}
	return tui.Run(session, bridge, tui.Options{Title: wc.Title})
}

// pickWidget resolves -w. It may be omitted when only one widget is configured.
func pickWidget(cfg *config.Config, name string) (config.WidgetConfig, error) {
	if name == "" {
		if len(cfg.Widgets) == 1 {
			return cfg.Widgets[0], nil
		}
		return config.WidgetConfig{}, fmt.Errorf("missing required -w <widget> (one of %v)", cfg.WidgetNames())
	}
	wc, ok := cfg.WidgetByName(name)
	if !ok {
		return config.WidgetConfig{}, fmt.Errorf("unknown widget %q (one of %v)", name, cfg.WidgetNames())
	}
	return wc, nil
}
