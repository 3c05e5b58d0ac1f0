package handler

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/SombathSOAN/krob-tele/internal/marketplace"
	"github.com/SombathSOAN/krob-tele/internal/session"
	"github.com/SombathSOAN/krob-tele/internal/utils"
)

func (h *Handler) onStart(c tele.Context) error {
	chatID := c.Chat().ID
	_, span := h.tracer.Start(h.ctx, "onStart")
	defer span.End()

	if sess, ok := h.sessions.Get(chatID); ok && sess.Authenticated() {
		return h.reply(c, "✅ Already logged in. Choose an option below:", mainMenu())
	}

	h.sessions.Create(chatID)
	h.logger.Info("Login flow started", "chat_id", chatID)
	return h.reply(c, "👋 Welcome to Seller Krob Mok! 📲 Please enter your phone number:", mainMenu())
}

func (h *Handler) onLogout(c tele.Context) error {
	chatID := c.Chat().ID
	h.sessions.Destroy(chatID)
	return h.reply(c, "👋 Logged out. Use /login to sign in again.")
}

// onText carries the non-command traffic: the "Open Mini App" button and the
// phone/password steps of the login conversation.
func (h *Handler) onText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	if text == "Open Mini App" {
		return h.sendAppLinks(c)
	}
	if strings.HasPrefix(text, "/") {
		return nil
	}

	sess, ok := h.sessions.Get(c.Chat().ID)
	if !ok {
		return nil
	}

	switch sess.Step() {
	case session.StepPhone:
		if !utils.DigitsOnly(text) {
			return h.reply(c, "❌ Enter digits only for phone.")
		}
		sess.SetPhone(text)
		return h.reply(c, "🔐 Please enter your password:")
	case session.StepPassword:
		return h.completeLogin(c, sess, text)
	default:
		return nil
	}
}

func (h *Handler) completeLogin(c tele.Context, sess *session.Session, password string) error {
	ctx, span := h.tracer.Start(h.ctx, "completeLogin")
	defer span.End()

	chatID := c.Chat().ID
	result, err := h.api.Login(ctx, sess.Phone(), password)
	if err != nil {
		var authErr *marketplace.AuthError
		if errors.As(err, &authErr) {
			sess.SetStep(session.StepPhone)
			h.logger.Info("Login rejected", "chat_id", chatID)
			return h.reply(c, "❌ Login failed. Try again with /login.")
		}
		h.logger.Error("Login request failed", "chat_id", chatID, "error", err)
		return h.reply(c, "⚠️ Error during login. Try again later.")
	}

	sess.Authenticate(result.AccessToken, &result.Vendor)
	h.logger.Info("Vendor authenticated", "chat_id", chatID, "vendor_id", result.Vendor.ID)

	h.sendProfile(c, &result.Vendor)
	h.pollers.StartSession(h.ctx, sess)
	return nil
}

func (h *Handler) sendProfile(c tele.Context, v *marketplace.Vendor) {
	var b strings.Builder
	b.WriteString("✅ *Login Successful!*\n\n👤 *Profile Info:*\n")
	fmt.Fprintf(&b, "🆔 ID: %d\n", v.ID)
	fmt.Fprintf(&b, "🏬 Shop ID: %d\n", v.ShopID)
	fmt.Fprintf(&b, "👨‍💼 Name: %s\n", v.Name)
	fmt.Fprintf(&b, "📧 Email: %s\n", v.Email)
	fmt.Fprintf(&b, "📱 Phone: %s", v.Phone)
	text := b.String()

	if v.AvatarOriginal != "" {
		photo := &tele.Photo{
			File:    tele.FromURL(h.baseURL + "/storage/" + v.AvatarOriginal),
			Caption: text,
		}
		if err := c.Send(photo, tele.ModeMarkdown); err == nil {
			return
		}
		// Broken avatar URLs fall back to a plain message.
		h.logger.Warn("Failed to send profile photo, falling back to text", "chat_id", c.Chat().ID)
	}
	_ = h.reply(c, text, tele.ModeMarkdown)
}

func (h *Handler) sendAppLinks(c tele.Context) error {
	markup := &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{
				{Text: "🤖 Android App", URL: "https://play.google.com/store/apps/details?id=com.codingate.seller_krob_mok&hl=en"},
				{Text: "🍏 iOS App", URL: "https://apps.apple.com/kh/app/dhe-distributor/id1639978934"},
			},
			{
				{Text: "💻 Open Mini App", URL: h.baseURL},
			},
		},
	}
	return h.reply(c, "Choose your platform or open the mini web app:", markup)
}
