package handler

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/SombathSOAN/krob-tele/internal/session"
)

// onCallback routes inline keyboard presses by their data prefix.
func (h *Handler) onCallback(c tele.Context) error {
	data := strings.TrimSpace(c.Callback().Data)

	sess, ok := h.sessions.Get(c.Chat().ID)
	if !ok || !sess.Authenticated() {
		return c.Respond(&tele.CallbackResponse{Text: "🔒 Please login with /login first.", ShowAlert: true})
	}

	switch {
	case strings.HasPrefix(data, "publish_"):
		return h.setPublished(c, sess, strings.TrimPrefix(data, "publish_"), true)
	case strings.HasPrefix(data, "unpublish_"):
		return h.setPublished(c, sess, strings.TrimPrefix(data, "unpublish_"), false)
	case strings.HasPrefix(data, "more_products_"):
		return h.morePage(c, sess, strings.TrimPrefix(data, "more_products_"), h.sendProductsPage)
	case strings.HasPrefix(data, "more_orders_"):
		return h.morePage(c, sess, strings.TrimPrefix(data, "more_orders_"), h.sendOrdersPage)
	case strings.HasPrefix(data, "edit_"):
		return c.Respond(&tele.CallbackResponse{Text: "✏️ Editing is available in the app."})
	case strings.HasPrefix(data, "vieworder_"):
		return c.Respond(&tele.CallbackResponse{Text: "🔍 Order details are available in the app."})
	case strings.HasPrefix(data, "updateorder_"):
		return c.Respond(&tele.CallbackResponse{Text: "⚙️ Status updates are available in the app."})
	default:
		h.logger.Warn("Unknown callback", "chat_id", c.Chat().ID, "data", data)
		return c.Respond(&tele.CallbackResponse{})
	}
}

// setPublished flips a product's published flag, then refreshes the message
// it was pressed on so the caption and buttons reflect the new state.
func (h *Handler) setPublished(c tele.Context, sess *session.Session, rawID string, published bool) error {
	ctx, span := h.tracer.Start(h.ctx, "setPublished")
	defer span.End()

	var id int64
	if _, err := fmt.Sscanf(rawID, "%d", &id); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Bad product reference.", ShowAlert: true})
	}

	if err := h.api.SetPublished(ctx, sess.Token(), id, published); err != nil {
		h.logger.Error("Failed to update publish status", "chat_id", sess.ChatID, "product_id", id, "error", err)
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Failed to update product.", ShowAlert: true})
	}

	product, err := h.api.Product(ctx, sess.Token(), id)
	if err != nil {
		h.logger.Error("Failed to refetch product", "chat_id", sess.ChatID, "product_id", id, "error", err)
		return c.Respond(&tele.CallbackResponse{Text: "✅ Updated.", ShowAlert: true})
	}

	caption := productCaption(product)
	markup := productMarkup(product)
	if c.Message() != nil && c.Message().Photo != nil {
		err = c.EditCaption(caption, tele.ModeMarkdown, markup)
	} else {
		err = c.Edit(caption, tele.ModeMarkdown, markup)
	}
	if err != nil {
		h.logger.Error("Failed to edit product message", "chat_id", sess.ChatID, "product_id", id, "error", err)
	}

	text := "✅ Product published."
	if !published {
		text = "📥 Product unpublished."
	}
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

func (h *Handler) morePage(c tele.Context, sess *session.Session, rawPage string, send func(tele.Context, *session.Session, int) error) error {
	var page int
	if _, err := fmt.Sscanf(rawPage, "%d", &page); err != nil || page < 1 {
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Bad page reference.", ShowAlert: true})
	}
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		h.logger.Warn("Failed to answer callback", "chat_id", sess.ChatID, "error", err)
	}
	return send(c, sess, page)
}
