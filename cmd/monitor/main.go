package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/bot"
	"github.com/okunev/appwatch/internal/config"
	"github.com/okunev/appwatch/internal/confirm"
	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/httpapi"
	"github.com/okunev/appwatch/internal/logging"
	"github.com/okunev/appwatch/internal/notify"
	"github.com/okunev/appwatch/internal/probe"
	"github.com/okunev/appwatch/internal/reconcile"
	"github.com/okunev/appwatch/internal/registry"
	"github.com/okunev/appwatch/internal/repo"
	"github.com/okunev/appwatch/internal/repo/memory"
	"github.com/okunev/appwatch/internal/repo/postgres"
	"github.com/okunev/appwatch/internal/repo/redisledger"
	"github.com/okunev/appwatch/internal/repo/sheets"
	"github.com/okunev/appwatch/internal/scheduler"
	"github.com/okunev/appwatch/internal/telegram"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apps, dests, ledger, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_init_failed", zap.Error(err))
	}

	sp := probe.NewStoreProber(cfg.StorefrontBaseURL, cfg.ProbeTimeout)
	prober := &probe.Retrier{
		Inner:  sp,
		Policy: probe.RetryPolicy{Attempts: cfg.RetryAttempts, Delay: cfg.RetryBackoff},
	}
	confirmer := confirm.New(logger, prober, cfg.ConfirmSamples, cfg.ConfirmInterval, cfg.ConfirmThreshold)
	reconciler := reconcile.New(logger, apps, prober, confirmer, sp.URL, cfg.MaxConcurrentConfirms)

	reg := registry.New(logger, dests)
	if err := reg.Hydrate(ctx); err != nil {
		logger.Warn("destination_hydrate_failed", zap.Error(err))
	}
	for _, u := range cfg.WebhookURLs {
		reg.AddStatic(domain.Destination{Channel: domain.ChannelWebhook, ID: u, Label: u})
	}

	channels := []notify.Channel{notify.NewWebhook()}
	var tg *telegram.Client
	if cfg.TelegramToken != "" {
		tg = telegram.New(cfg.TelegramToken)
		channels = append(channels, notify.NewTelegram(tg))
	}
	fanout := notify.NewFanout(logger, reg, channels...)

	if tg != nil {
		go bot.New(logger, tg, reg).Run(ctx)
	}

	api := httpapi.NewServer(logger, apps, reg, cfg.APIKeys)
	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api_server_failed", zap.Error(err))
		}
	}()

	sweeper := scheduler.New(logger, apps, reconciler, fanout, ledger,
		cfg.SweepInterval, cfg.SweepBackoff)
	sweeper.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("stopped")
}

// buildStores wires the app, destination, and ledger backends from config.
// SHEETS_APPS_ID selects the sheets backend, DATABASE_URL selects postgres,
// otherwise everything is in-memory. REDIS_ADDR moves the notification
// ledger to redis regardless of the app backend.
func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.AppStore, repo.DestinationStore, repo.LedgerStore, error) {
	var (
		apps   repo.AppStore
		dests  repo.DestinationStore
		ledger repo.LedgerStore
	)

	switch {
	case cfg.SheetsAppsID != "":
		c := sheets.NewClient(cfg.SheetsBaseURL, cfg.SheetsToken)
		apps = sheets.NewAppSheet(c, cfg.SheetsAppsID, logger)
		destsID := cfg.SheetsDestsID
		if destsID == "" {
			destsID = cfg.SheetsAppsID
		}
		dests = sheets.NewDestSheet(c, destsID)
		logger.Info("store_selected", zap.String("backend", "sheets"))
	case cfg.DatabaseURL != "":
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		apps = pg
		dests = pg.Destinations()
		ledger = pg
		logger.Info("store_selected", zap.String("backend", "postgres"))
	default:
		mem := memory.New()
		apps = mem
		dests = mem.Destinations()
		ledger = mem
		logger.Info("store_selected", zap.String("backend", "memory"))
	}

	if cfg.RedisAddr != "" {
		rl, err := redisledger.New(ctx, redisledger.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.LedgerTTL,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		ledger = rl
		logger.Info("ledger_selected", zap.String("backend", "redis"))
	}
	if ledger == nil {
		ledger = memory.New()
	}

	return apps, dests, ledger, nil
}
