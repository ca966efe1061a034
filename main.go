package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/prafullx/webstudio/internal/clock"
	"github.com/prafullx/webstudio/internal/config"
	"github.com/prafullx/webstudio/internal/contact"
	"github.com/prafullx/webstudio/internal/content"
	"github.com/prafullx/webstudio/internal/mailer"
	"github.com/prafullx/webstudio/internal/session"
	"github.com/prafullx/webstudio/internal/shell"
	"github.com/prafullx/webstudio/internal/visits"
	"github.com/prafullx/webstudio/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.GinMode)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(mode string) *slog.Logger {
	if mode == gin.ReleaseMode {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	site, err := content.Load(cfg.ContentFile)
	if err != nil {
		return err
	}

	store, err := visits.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	clk := clock.Real()
	tracker := visits.NewTracker(store, cfg.VisitSalt, clk, logger)
	defer tracker.Wait()
	go purgeVisits(ctx, tracker, cfg.VisitRetention)

	sender := newSender(cfg, logger)
	sessions := session.NewStore(func() *shell.Page {
		return shell.NewPage(site, shell.Options{
			LoadDelay: cfg.LoadDelay,
			Sender:    sender,
			Clock:     clk,
			Logger:    logger,
			Contact: contact.Options{
				SubmitDelay: cfg.SubmitDelay,
				ResetDelay:  cfg.ResetDelay,
			},
		})
	}, session.Options{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		Clock:       clk,
		Logger:      logger,
	})
	go sessions.Run(ctx, cfg.SweepInterval)

	opts := web.Options{
		Site:         site,
		Sessions:     sessions,
		Tracker:      tracker,
		StaticDir:    cfg.StaticDir,
		MaxFormBytes: cfg.MaxFormBytes,
		Clock:        clk,
		Logger:       logger,
	}
	if cfg.StatsEnabled {
		opts.Stats = store
	}
	srv, err := web.New(opts)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr, "delivery", cfg.ContactDelivery)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newSender(cfg config.Config, logger *slog.Logger) contact.Sender {
	if cfg.ContactDelivery != config.DeliverySMTP {
		return contact.Simulated{}
	}
	return mailer.NewSMTP(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		To:       cfg.ToEmail,
		Timeout:  cfg.SMTP.Timeout,
	}, logger)
}

// purgeVisits drops visits older than retention now and once a day after.
func purgeVisits(ctx context.Context, tracker *visits.Tracker, retention time.Duration) {
	tracker.Purge(ctx, retention)
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tracker.Purge(ctx, retention)
		}
	}
}
