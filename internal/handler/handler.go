// Package handler wires the Telegram side of the relay: commands, the
// two-step login conversation, collection browsing and inline actions.
package handler

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v4"

	"github.com/SombathSOAN/krob-tele/internal/marketplace"
	"github.com/SombathSOAN/krob-tele/internal/poller"
	"github.com/SombathSOAN/krob-tele/internal/session"
)

// API is the slice of the marketplace client the handlers consume.
type API interface {
	Login(ctx context.Context, phone, password string) (*marketplace.LoginResult, error)
	Orders(ctx context.Context, token string, page int) (*marketplace.OrderPage, error)
	SellerCoupons(ctx context.Context, token string) ([]marketplace.Voucher, error)
	Products(ctx context.Context, token string, page int) (*marketplace.ProductPage, error)
	Product(ctx context.Context, token string, productID int64) (*marketplace.Product, error)
	SetPublished(ctx context.Context, token string, productID int64, published bool) error
}

type Handler struct {
	logger   *slog.Logger
	bot      *tele.Bot
	api      API
	sessions *session.Registry
	pollers  *poller.Manager
	baseURL  string
	tracer   trace.Tracer

	// ctx outlives any single update; pollers started from a login are bound
	// to it so they stop with the application, not with the update.
	ctx context.Context
}

func New(logger *slog.Logger, bot *tele.Bot, api API, sessions *session.Registry, pollers *poller.Manager, baseURL string) *Handler {
	return &Handler{
		logger:   logger,
		bot:      bot,
		api:      api,
		sessions: sessions,
		pollers:  pollers,
		baseURL:  baseURL,
		tracer:   otel.Tracer("handler"),
	}
}

// Register installs all bot routes. ctx is the application lifetime context.
func (h *Handler) Register(ctx context.Context) {
	h.ctx = ctx

	h.bot.Handle("/start", h.onStart)
	h.bot.Handle("/login", h.onStart)
	h.bot.Handle("/logout", h.onLogout)
	h.bot.Handle("/allorders", h.onAllOrders)
	h.bot.Handle("/products", h.onProducts)
	h.bot.Handle("/vouchers", h.onVouchers)
	h.bot.Handle(tele.OnText, h.onText)
	h.bot.Handle(tele.OnCallback, h.onCallback)
}

// mainMenu is the persistent reply keyboard every vendor sees.
func mainMenu() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		ResizeKeyboard: true,
		ReplyKeyboard: [][]tele.ReplyButton{
			{{Text: "Open Mini App"}, {Text: "/allorders"}},
			{{Text: "/products"}, {Text: "/vouchers"}},
			{{Text: "/logout"}},
		},
	}
}

func (h *Handler) reply(c tele.Context, text string, opts ...interface{}) error {
	if err := c.Send(text, opts...); err != nil {
		h.logger.Error("Failed to send message", "chat_id", c.Chat().ID, "error", err)
		return err
	}
	return nil
}
