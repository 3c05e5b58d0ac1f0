package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/SombathSOAN/krob-tele/internal/adminweb"
	"github.com/SombathSOAN/krob-tele/internal/config"
	"github.com/SombathSOAN/krob-tele/internal/configstore"
	"github.com/SombathSOAN/krob-tele/internal/handler"
	"github.com/SombathSOAN/krob-tele/internal/marketplace"
	"github.com/SombathSOAN/krob-tele/internal/metrics"
	"github.com/SombathSOAN/krob-tele/internal/notifier"
	"github.com/SombathSOAN/krob-tele/internal/poller"
	"github.com/SombathSOAN/krob-tele/internal/session"
)

type App struct {
	cfg    *config.Config
	logger *slog.Logger
	bot    *tele.Bot
}

func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.TelegramToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot client: %w", err)
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		bot:    bot,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.logger.Info("Starting Krob Tele relay", "base_url", a.cfg.BaseURL)
	a.logger.Info("Bot connected", "username", a.bot.Me.Username, "id", a.bot.Me.ID)

	client := marketplace.NewClient(a.logger, a.cfg.BaseURL, a.cfg.APIRequestsPerSec)
	sessions := session.NewRegistry(a.logger)
	tg := notifier.NewTelegram(a.logger, a.bot, a.cfg.BaseURL)

	pollers := poller.NewManager(a.logger, client, tg, poller.Intervals{
		Orders:   a.cfg.OrderPollInterval,
		Vouchers: a.cfg.VoucherPollInterval,
		Products: a.cfg.ProductPollInterval,
	})

	h := handler.New(a.logger, a.bot, client, sessions, pollers, a.cfg.BaseURL)
	h.Register(ctx)

	metricsSrv := metrics.NewServer(a.logger, a.cfg.MetricsAddr)
	go func() {
		if err := metricsSrv.Listen(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Metrics server failed", "error", err)
		}
	}()

	store := configstore.New(a.cfg.ConfigPath)
	adminSrv := adminweb.NewServer(a.logger, store, a.cfg.AdminAddr, a.cfg.AdminUser, a.cfg.AdminPass, a.cfg.SessionSecret)
	go func() {
		if err := adminSrv.Listen(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Admin server failed", "error", err)
		}
	}()

	go a.bot.Start()

	<-ctx.Done()
	a.logger.Info("Shutting down...")

	sessions.Shutdown()
	pollers.Wait()
	a.bot.Stop()

	if err := adminSrv.Shutdown(); err != nil {
		a.logger.Error("Admin server shutdown failed", "error", err)
	}
	if err := metricsSrv.Shutdown(); err != nil {
		a.logger.Error("Metrics server shutdown failed", "error", err)
	}

	return nil
}
