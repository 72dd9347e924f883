package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"sgc/internal/adapters/email"
	web "sgc/internal/adapters/http"
	"sgc/internal/adapters/http/perf"
	"sgc/internal/adapters/storage"
	accountStore "sgc/internal/adapters/storage/account"
	attendanceStore "sgc/internal/adapters/storage/attendance"
	feedbackStore "sgc/internal/adapters/storage/feedback"
	memberStore "sgc/internal/adapters/storage/member"
	outboxStore "sgc/internal/adapters/storage/outbox"
	"sgc/internal/adapters/telegram"
	"sgc/internal/application/orchestrators"
	"sgc/internal/config"
	"sgc/internal/domain/outbox"
	"sgc/internal/domain/report"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := storage.MigrateDB(ctx, db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Every store goes through the timed wrapper so slow queries show on the dashboard.
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, time.Duration(cfg.SlowQueryMs)*time.Millisecond)

	stores := &web.Stores{
		AccountStore:    accountStore.NewSQLiteStore(timedDB),
		MemberStore:     memberStore.NewSQLiteStore(timedDB),
		AttendanceStore: attendanceStore.NewSQLiteStore(timedDB),
		FeedbackStore:   feedbackStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStore.NewSQLiteStore(timedDB),
	}

	err = orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
	}, orchestrators.SeedAdminDeps{
		AccountStore: stores.AccountStore,
		MemberStore:  stores.MemberStore,
		GenerateID:   uuid.NewString,
		Now:          time.Now,
	})
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if cfg.AdminPassword == "" {
		slog.Warn("admin_password_unset", "email", cfg.AdminEmail,
			"hint", "set SGC_ADMIN_PASSWORD to create the sign-in account")
	}

	var emailSender email.Sender
	if cfg.ResendKey != "" {
		emailSender = email.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email_sender", "provider", "resend")
	} else {
		emailSender = email.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender", "provider", "noop", "hint", "SGC_RESEND_KEY is not set; email delivery is disabled")
		} else {
			slog.Info("email_sender", "provider", "noop")
		}
	}

	var telegramSender telegram.Sender = telegram.NewNoopSender()
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBotSender(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		telegramSender = bot
	}

	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.Dispatcher{
		outbox.ChannelEmail:    orchestrators.EmailDispatcher{Sender: emailSender},
		outbox.ChannelTelegram: orchestrators.TelegramDispatcher{Sender: telegramSender},
	})
	outboxStopCh := make(chan struct{})
	orchestrators.StartBackgroundWorker(processor, cfg.OutboxInterval, outboxStopCh)
	defer close(outboxStopCh)

	reportOpts := report.Options{WeekdaysOnly: cfg.WeekdaysOnly, Threshold: cfg.AttendanceThreshold}
	if cfg.DigestSchedule != "" {
		stopDigest, err := orchestrators.StartDigestScheduler(cfg.DigestSchedule, orchestrators.MonthlyDigestDeps{
			AttendanceStore: stores.AttendanceStore,
			MemberStore:     stores.MemberStore,
			OutboxStore:     stores.OutboxStore,
			Options:         reportOpts,
			GenerateID:      uuid.NewString,
			Now:             time.Now,
		})
		if err != nil {
			log.Fatalf("digest: %v", err)
		}
		defer stopDigest()
	}

	mux := web.NewMux(stores, web.Options{
		CSRFKey:            cfg.CSRFKey,
		Production:         cfg.IsProduction(),
		TrustedOrigins:     cfg.TrustedOrigins,
		RateLimitPerSecond: cfg.RateLimit,
		SlowRequest:        time.Duration(cfg.SlowRequestMs) * time.Millisecond,
		Report:             reportOpts,
		Telegram:           cfg.TelegramEnabled(),
		Collector:          collector,
		Outbox:             processor,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err.Error())
		}
	}()

	slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env,
		"schema", storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	slog.Info("server_stopped")
}
