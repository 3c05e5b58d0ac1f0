package notifier

import (
	"fmt"
	"strings"

	"github.com/SombathSOAN/krob-tele/internal/marketplace"
	"github.com/SombathSOAN/krob-tele/internal/utils"
)

func RenderOrder(o *marketplace.Order) string {
	var b strings.Builder
	b.WriteString("📬 *New Order Received!*\n")
	fmt.Fprintf(&b, "🗒 *Order Code:* `%s`\n", o.OrderCode)
	fmt.Fprintf(&b, "📅 *Date:* %s\n", o.Date)
	fmt.Fprintf(&b, "🚚 *Status:* %s\n", o.DeliveryStatus)
	fmt.Fprintf(&b, "💰 *Total:* %s", o.GrandTotal.String())
	return b.String()
}

func RenderVoucher(v *marketplace.Voucher) string {
	sym := "\\$"
	if v.DiscountType == "percent" {
		sym = "\\%"
	}
	var b strings.Builder
	b.WriteString("🎉 *Voucher Approved\\!*\n")
	fmt.Fprintf(&b, "🔖 *Voucher ID:* `%d`\n", v.ID)
	fmt.Fprintf(&b, "🏷 *Type:* %s\n", utils.EscapeMarkdown(v.Type))
	fmt.Fprintf(&b, "💸 *Discount:* %s%s", utils.EscapeMarkdown(v.Discount.String()), sym)
	return b.String()
}

func RenderProduct(p *marketplace.Product) string {
	var b strings.Builder
	b.WriteString("🛒 Product Approved!\n")
	fmt.Fprintf(&b, "🆔 Product ID: %d\n", p.ID)
	fmt.Fprintf(&b, "🏷 Name: %s", p.Name)
	return b.String()
}
