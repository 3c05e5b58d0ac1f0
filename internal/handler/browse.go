package handler

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/SombathSOAN/krob-tele/internal/marketplace"
	"github.com/SombathSOAN/krob-tele/internal/session"
)

// requireAuth returns the authenticated session for the chat, or prompts for
// login and returns nil.
func (h *Handler) requireAuth(c tele.Context) *session.Session {
	sess, ok := h.sessions.Get(c.Chat().ID)
	if !ok || !sess.Authenticated() {
		_ = h.reply(c, "🔒 Please login with /login first.")
		return nil
	}
	return sess
}

func (h *Handler) onAllOrders(c tele.Context) error {
	sess := h.requireAuth(c)
	if sess == nil {
		return nil
	}
	return h.sendOrdersPage(c, sess, 1)
}

func (h *Handler) sendOrdersPage(c tele.Context, sess *session.Session, page int) error {
	ctx, span := h.tracer.Start(h.ctx, "sendOrdersPage")
	defer span.End()

	result, err := h.api.Orders(ctx, sess.Token(), page)
	if err != nil {
		h.logger.Error("Failed to fetch orders", "chat_id", sess.ChatID, "page", page, "error", err)
		return h.reply(c, "⚠️ Failed to fetch orders.")
	}
	if len(result.Orders) == 0 {
		return h.reply(c, "📦 No orders found.")
	}

	for i := range result.Orders {
		o := result.Orders[i]
		markup := &tele.ReplyMarkup{
			InlineKeyboard: [][]tele.InlineButton{{
				{Text: "🔍 View Detail Order", Data: fmt.Sprintf("vieworder_%d", o.ID)},
				{Text: "⚙️ Update Status", Data: fmt.Sprintf("updateorder_%d", o.ID)},
			}},
		}
		if err := h.reply(c, orderText(&o), markup); err != nil {
			return nil
		}
	}

	if page < result.LastPage {
		markup := &tele.ReplyMarkup{
			InlineKeyboard: [][]tele.InlineButton{{
				{Text: "🛒 More Orders", Data: fmt.Sprintf("more_orders_%d", page+1)},
			}},
		}
		return h.reply(c, fmt.Sprintf("Orders page %d of %d", page, result.LastPage), markup)
	}
	return nil
}

func (h *Handler) onProducts(c tele.Context) error {
	sess := h.requireAuth(c)
	if sess == nil {
		return nil
	}
	return h.sendProductsPage(c, sess, 1)
}

func (h *Handler) sendProductsPage(c tele.Context, sess *session.Session, page int) error {
	ctx, span := h.tracer.Start(h.ctx, "sendProductsPage")
	defer span.End()

	result, err := h.api.Products(ctx, sess.Token(), page)
	if err != nil {
		h.logger.Error("Failed to fetch products", "chat_id", sess.ChatID, "page", page, "error", err)
		return h.reply(c, "⚠️ Failed to fetch products.")
	}
	if len(result.Products) == 0 {
		return h.reply(c, "🛒 No products found.")
	}

	for i := range result.Products {
		p := result.Products[i]
		caption := productCaption(&p)
		markup := productMarkup(&p)

		if p.ThumbnailImage != "" {
			photo := &tele.Photo{File: tele.FromURL(p.ThumbnailImage), Caption: caption}
			if err := c.Send(photo, tele.ModeMarkdown, markup); err != nil {
				h.logger.Error("Failed to send product photo", "chat_id", sess.ChatID, "product_id", p.ID, "error", err)
			}
			continue
		}
		_ = h.reply(c, caption, tele.ModeMarkdown, markup)
	}

	if page < result.LastPage {
		markup := &tele.ReplyMarkup{
			InlineKeyboard: [][]tele.InlineButton{{
				{Text: "🔄 More", Data: fmt.Sprintf("more_products_%d", page+1)},
			}},
		}
		return h.reply(c, fmt.Sprintf("Page %d of %d", page, result.LastPage), markup)
	}
	return nil
}

func (h *Handler) onVouchers(c tele.Context) error {
	sess := h.requireAuth(c)
	if sess == nil {
		return nil
	}

	ctx, span := h.tracer.Start(h.ctx, "onVouchers")
	defer span.End()

	vouchers, err := h.api.SellerCoupons(ctx, sess.Token())
	if err != nil {
		h.logger.Error("Failed to fetch vouchers", "chat_id", sess.ChatID, "error", err)
		return h.reply(c, "⚠️ Failed to fetch vouchers.")
	}
	if len(vouchers) == 0 {
		return h.reply(c, "🎟️ No vouchers found.")
	}

	for i := range vouchers {
		if err := h.reply(c, voucherText(&vouchers[i])); err != nil {
			return nil
		}
	}
	return nil
}

func orderText(o *marketplace.Order) string {
	cancelBy := o.CancelBy
	if cancelBy == "" {
		cancelBy = "N/A"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Order Code: %s\n", o.OrderCode)
	fmt.Fprintf(&b, "📅 Date: %s\n", o.Date)
	fmt.Fprintf(&b, "🚚 Status: %s\n", o.DeliveryStatus)
	fmt.Fprintf(&b, "💰 Total: %s\n", o.GrandTotal.String())
	fmt.Fprintf(&b, "💳 Method: %s\n", o.PaymentMethod)
	fmt.Fprintf(&b, "💸 Payment Status: %s\n", o.PaymentStatus)
	fmt.Fprintf(&b, "❌ Cancelled By: %s", cancelBy)
	return b.String()
}

func productCaption(p *marketplace.Product) string {
	status := "❌ Unpublished"
	if p.Published == marketplace.CodeApproved {
		status = "✅ Published"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *%s*\n", p.Name)
	fmt.Fprintf(&b, "📂 Category: %s\n", p.Category)
	fmt.Fprintf(&b, "💰 Price: %s\n", p.UnitPrice.String())
	fmt.Fprintf(&b, "📦 Stock: %d\n", p.CurrentStock)
	fmt.Fprintf(&b, "🆔 ID: %d\n", p.ID)
	fmt.Fprintf(&b, "📌 Status: %s", status)
	return b.String()
}

func productMarkup(p *marketplace.Product) *tele.ReplyMarkup {
	row := []tele.InlineButton{{Text: "✏️ Edit", Data: fmt.Sprintf("edit_%d", p.ID)}}
	if p.Published == marketplace.CodeApproved {
		row = append(row, tele.InlineButton{Text: "📥 Unpublish", Data: fmt.Sprintf("unpublish_%d", p.ID)})
	} else {
		row = append(row, tele.InlineButton{Text: "📤 Publish", Data: fmt.Sprintf("publish_%d", p.ID)})
	}
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{row}}
}

func voucherText(v *marketplace.Voucher) string {
	status := "Inactive"
	if v.Status == marketplace.CodeApproved {
		status = "Active"
	}
	unlimited := "No"
	if v.IsUnlimited {
		unlimited = "Yes"
	}
	sym := "$"
	if v.DiscountType == "percent" {
		sym = "%"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎟️ Voucher ID: %d\n", v.ID)
	fmt.Fprintf(&b, "📦 Type: %s\n", v.Type)
	fmt.Fprintf(&b, "💸 Discount: %s%s\n", v.Discount.String(), sym)
	fmt.Fprintf(&b, "📅 Valid: %s to %s\n", voucherDate(v.StartDate), voucherDate(v.EndDate))
	fmt.Fprintf(&b, "🔘 Status: %s\n", status)
	fmt.Fprintf(&b, "🔄 Unlimited Uses: %s", unlimited)
	if !v.IsUnlimited && v.LimitedUsages != nil {
		fmt.Fprintf(&b, "\n🔢 Remaining Uses: %d", *v.LimitedUsages)
	}
	return b.String()
}

func voucherDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("02/01/2006, 15:04:05")
}
