package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/nguyentantai21042004/call-companion/internal/app"
	"github.com/nguyentantai21042004/call-companion/internal/config"
	"github.com/nguyentantai21042004/call-companion/internal/credentials"
	"github.com/nguyentantai21042004/call-companion/internal/insight"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"github.com/nguyentantai21042004/call-companion/internal/panel"
	"github.com/nguyentantai21042004/call-companion/internal/room"
	"github.com/nguyentantai21042004/call-companion/internal/session"
	"github.com/nguyentantai21042004/call-companion/internal/speech"
	"github.com/nguyentantai21042004/call-companion/internal/watcher"
	"github.com/nguyentantai21042004/call-companion/pkg/executor"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"
)

func run(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	tui := !headless && term.IsTerminal(int(os.Stdout.Fd()))

	out, closeOut, err := logOutput(cfg.Logging, tui)
	if err != nil {
		return err
	}
	defer closeOut()

	log := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
	log.Info(ctx, "========================================")
	log.Info(ctx, "Call Companion %s", version)
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Speech backend: %s (%s)", cfg.Speech.Backend, cfg.Speech.Language)
	log.Info(ctx, "Insight quiet interval: %s", cfg.Insight.QuietInterval)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, reg); err != nil {
				log.Error(ctx, "Metrics listener stopped: %v", err)
			}
		}()
		log.Info(ctx, "Metrics: http://%s/metrics", cfg.Metrics.Listen)
	}

	w, err := watcher.New(cfgFile, reloadLogLevel(log), log)
	if err != nil {
		log.Warn(ctx, "Config hot reload disabled: %v", err)
	} else {
		defer w.Stop()
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "Config watcher error: %v", err)
			}
		}()
	}

	apiKey := ""
	if !mockMode {
		key, src, err := credentials.Resolve(lookupFor(cfg))
		switch {
		case err == nil:
			apiKey = key
			log.Info(ctx, "Gemini API key loaded from %s", src)
		case errors.Is(err, credentials.ErrNotFound):
			log.Debug(ctx, "No API key: %v", err)
		default:
			return fmt.Errorf("resolve api key: %w", err)
		}
	}

	client, err := insight.New(ctx, insight.Options{
		APIKey:    apiKey,
		Model:     cfg.Insight.Model,
		MockDelay: cfg.Insight.MockDelay,
		Logger:    log,
		Metrics:   m,
	})
	if err != nil {
		return fmt.Errorf("create insight client: %w", err)
	}

	capability := speech.Detect(cfg.Speech, log)
	if u, ok := capability.(speech.Unsupported); ok {
		log.Warn(ctx, "Speech recognition not supported: %s", u.Reason)
	}

	p := panel.New(capability, client, panel.Options{
		Speaker:        cfg.Speech.Speaker,
		QuietInterval:  cfg.Insight.QuietInterval,
		RequestTimeout: cfg.Insight.RequestTimeout,
		Logger:         log,
		Metrics:        m,
	})
	defer p.Close()

	bootstrap := session.New(cfg.Session.URL, session.Options{
		Timeout: cfg.Session.Timeout,
		Logger:  log,
		Metrics: m,
	})
	opener := room.New(cfg.Room.OpenCommand, executor.New(), log)

	if !tui {
		return runHeadless(ctx, log, bootstrap, p, opener, cfg.Room.AutoOpen)
	}

	model := app.New(app.Deps{
		Session:  bootstrap,
		Panel:    p,
		Room:     opener,
		AutoOpen: cfg.Room.AutoOpen,
		Speaker:  cfg.Speech.Speaker,
		Logger:   log,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run panel: %w", err)
	}
	return nil
}

// logOutput keeps log lines off the terminal while the panel is drawn.
func logOutput(cfg config.LoggingConfig, tui bool) (io.Writer, func(), error) {
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return f, func() { f.Close() }, nil
	}
	if tui {
		return io.Discard, func() {}, nil
	}
	return os.Stdout, func() {}, nil
}

func reloadLogLevel(log logger.Logger) watcher.EventHandler {
	return func(ctx context.Context, filePath string) error {
		cfg, err := config.Load(filePath)
		if err != nil {
			return err
		}
		log.SetLevel(cfg.Logging.Level)
		log.Info(ctx, "Config reloaded, log level %s", cfg.Logging.Level)
		return nil
	}
}
