package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfcabral/rulegate/internal/action"
	"github.com/mfcabral/rulegate/internal/action/email"
	"github.com/mfcabral/rulegate/internal/action/generate"
	"github.com/mfcabral/rulegate/internal/action/notify"
	"github.com/mfcabral/rulegate/internal/api"
	"github.com/mfcabral/rulegate/internal/compiler"
	"github.com/mfcabral/rulegate/internal/config"
	"github.com/mfcabral/rulegate/internal/engine"
	"github.com/mfcabral/rulegate/internal/fact"
	"github.com/mfcabral/rulegate/internal/feed"
	"github.com/mfcabral/rulegate/internal/mailer"
	"github.com/mfcabral/rulegate/internal/ollama"
	"github.com/mfcabral/rulegate/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (defaults apply when omitted)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	var (
		cfg    *config.Config
		loader *config.Loader
	)
	if *cfgPath != "" {
		var err error
		loader, err = config.NewLoader(*cfgPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loader.Config()
	} else {
		cfg = config.Default()
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// ── Rule store ────────────────────────────────────────────────────────────
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Backend {
	case "sqlite":
		st, err = store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			slog.Error("failed to open rule store", "path", cfg.Store.Path, "err", err)
			os.Exit(1)
		}
	default:
		st = store.NewMemory()
	}
	defer st.Close()
	slog.Info("rule store ready", "backend", cfg.Store.Backend)

	// ── Collaborators ─────────────────────────────────────────────────────────
	gen := ollama.New(cfg.Ollama.Host, cfg.Ollama.Timeout())
	ml := mailer.New()

	// ── Action registry ───────────────────────────────────────────────────────
	reg := action.NewRegistry()
	reg.Register(notify.New())
	reg.Register(generate.New(gen, cfg.Ollama.Model))
	reg.Register(email.New(ml))

	// ── Engine ────────────────────────────────────────────────────────────────
	fd := feed.NewFeed(cfg.Notifications.Retention)
	executor := action.NewExecutor(reg, cfg.Engine.ActionTimeout())

	// Facts come from config so a hot-reload changes the next pass's snapshot.
	facts := fact.ProviderFunc(func(context.Context) (fact.Snapshot, error) {
		if loader != nil {
			return fact.Snapshot(loader.Config().Facts).Merge(nil), nil
		}
		return fact.Snapshot(cfg.Facts).Merge(nil), nil
	})

	eng := engine.New(st, executor, fd, facts)
	comp := compiler.New(gen, cfg.Ollama.Model, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if interval := cfg.Engine.PassInterval(); interval > 0 {
		go eng.RunPeriodic(ctx, interval)
		slog.Info("periodic evaluation enabled", "interval", interval)
	}

	// ── Config hot-reload ─────────────────────────────────────────────────────
	if loader != nil {
		loader.OnChange(func(newCfg *config.Config) {
			slog.Info("config reloaded", "facts", len(newCfg.Facts))
		})
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(st, eng, comp, fd, ml, gen)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // compilation waits on the model
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop the periodic evaluator
	slog.Info("goodbye")
}
