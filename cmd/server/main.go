package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	emailPkg "futoconnect/internal/adapters/email"
	web "futoconnect/internal/adapters/http"
	"futoconnect/internal/adapters/http/perf"
	"futoconnect/internal/adapters/storage"
	announcementStore "futoconnect/internal/adapters/storage/announcement"
	"futoconnect/internal/application/orchestrators"
	"futoconnect/internal/config"
	"futoconnect/internal/domain/announcement"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	setupLogger(cfg)
	if cfg.CSRFKeyGenerated {
		slog.Warn("config_event", "event", "random_csrf_key", "hint", "set FUTO_CSRF_KEY for stable CSRF cookies")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Performance instrumentation: request timing and query timing share one collector
	collector := perf.NewCollector(perf.DefaultRingSize)

	backend, err := openBackend(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.close(); err != nil {
			slog.Warn("store_close_failed", "error", err)
		}
	}()

	if err := seed(ctx, cfg, backend.store); err != nil {
		return err
	}

	dispatcher := newDispatcher(cfg)
	var onUrgent func(announcement.Announcement)
	if dispatcher != nil {
		onUrgent = dispatcher.Dispatch
	}

	handler := web.NewRouter(ctx, web.Deps{
		Announcements:  backend.store,
		Perf:           collector,
		OnUrgent:       onUrgent,
		Ping:           backend.ping,
		StaticDir:      cfg.StaticDir,
		CSRFKey:        cfg.CSRFKey,
		SecureCookies:  cfg.Production(),
		TrustedOrigins: cfg.TrustedOrigins,
		RateLimit:      cfg.RateLimit,
		SlowRequestMs:  cfg.SlowRequestMs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "starting", "version", version, "addr", cfg.Addr,
			"env", cfg.Env, "store", cfg.Store, "schema", storage.LatestSchemaVersion())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_event", "event", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if dispatcher != nil {
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			slog.Warn("server_event", "event", "notifications_abandoned", "error", err)
		}
	}
	slog.Info("server_event", "event", "stopped")
	return nil
}

// setupLogger installs the process-wide slog handler: JSON in production, text otherwise.
func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.Production() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// seed loads the bootstrap announcements into an empty store unless disabled.
func seed(ctx context.Context, cfg config.Config, store announcementStore.Store) error {
	if cfg.NoSeed {
		return nil
	}
	var data []byte
	if cfg.SeedFile != "" {
		b, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
		data = b
	}
	_, err := orchestrators.ExecuteSeedAnnouncements(ctx, orchestrators.SeedAnnouncementsInput{Data: data},
		orchestrators.SeedAnnouncementsDeps{
			AnnouncementStore: store,
			GenerateID:        uuid.NewString,
		})
	if err != nil {
		return fmt.Errorf("seed announcements: %w", err)
	}
	return nil
}

// newDispatcher configures urgent-announcement email. It returns nil when
// there are no recipients.
func newDispatcher(cfg config.Config) *orchestrators.UrgentDispatcher {
	if len(cfg.NotifyTo) == 0 {
		slog.Info("email_event", "event", "urgent_notifications_disabled", "hint", "set FUTO_NOTIFY_TO to enable")
		return nil
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		slog.Info("email_event", "event", "sender_configured", "provider", "resend", "recipients", len(cfg.NotifyTo))
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.Production() {
			slog.Warn("email_event", "event", "sender_configured", "provider", "noop",
				"hint", "FUTO_RESEND_KEY is not set; email delivery is disabled")
		} else {
			slog.Info("email_event", "event", "sender_configured", "provider", "noop")
		}
	}

	return orchestrators.NewUrgentDispatcher(orchestrators.NotifyUrgentDeps{
		EmailSender: sender,
		FromAddress: cfg.ResendFrom,
		ReplyTo:     cfg.ReplyTo,
		Recipients:  cfg.NotifyTo,
	}, orchestrators.DefaultNotifyTimeout)
}
