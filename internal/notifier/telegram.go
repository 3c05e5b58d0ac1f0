// Package notifier turns detected change events into chat messages. The
// polling core hands it structured events and does not care about text,
// markup, or delivery transport.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/SombathSOAN/krob-tele/internal/detector"
)

type Telegram struct {
	logger  *slog.Logger
	bot     *tele.Bot
	baseURL string
}

func NewTelegram(logger *slog.Logger, bot *tele.Bot, baseURL string) *Telegram {
	return &Telegram{
		logger:  logger,
		bot:     bot,
		baseURL: baseURL,
	}
}

func (n *Telegram) Notify(ctx context.Context, chatID int64, ev detector.Event) error {
	text, opts, err := n.render(ev)
	if err != nil {
		return err
	}
	if _, err := n.bot.Send(tele.ChatID(chatID), text, opts...); err != nil {
		return fmt.Errorf("send %s notification: %w", ev.Kind, err)
	}
	n.logger.Info("Notification delivered", "chat_id", chatID, "kind", ev.Kind, "item_id", ev.ItemID)
	return nil
}

func (n *Telegram) render(ev detector.Event) (string, []interface{}, error) {
	switch ev.Kind {
	case detector.KindOrder:
		if ev.Order == nil {
			return "", nil, fmt.Errorf("order event %d without payload", ev.ItemID)
		}
		markup := &tele.ReplyMarkup{
			InlineKeyboard: [][]tele.InlineButton{{
				{Text: "🔗 View in App", URL: n.baseURL + "/users/login"},
			}},
		}
		return RenderOrder(ev.Order), []interface{}{tele.ModeMarkdown, markup}, nil
	case detector.KindVoucher:
		if ev.Voucher == nil {
			return "", nil, fmt.Errorf("voucher event %d without payload", ev.ItemID)
		}
		return RenderVoucher(ev.Voucher), []interface{}{tele.ModeMarkdownV2}, nil
	case detector.KindProduct:
		if ev.Product == nil {
			return "", nil, fmt.Errorf("product event %d without payload", ev.ItemID)
		}
		return RenderProduct(ev.Product), nil, nil
	default:
		return "", nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}
