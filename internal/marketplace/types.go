package marketplace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Code is a numeric flag field. The marketplace backend serves these
// inconsistently as JSON numbers or quoted strings, so decoding tolerates both.
type Code int

const (
	CodePending  Code = 0
	CodeApproved Code = 1
)

func (c *Code) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid code value %q: %w", s, err)
	}
	*c = Code(n)
	return nil
}

type Vendor struct {
	ID             int64  `json:"id"`
	ShopID         int64  `json:"shop_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	AvatarOriginal string `json:"avatar_original"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	Vendor      Vendor `json:"user"`
}

type Order struct {
	ID             int64       `json:"id"`
	OrderCode      string      `json:"order_code"`
	Date           string      `json:"date"`
	DeliveryStatus string      `json:"delivery_status"`
	GrandTotal     json.Number `json:"grand_total"`
	PaymentMethod  string      `json:"payment_method"`
	PaymentStatus  string      `json:"payment_status"`
	CancelBy       string      `json:"cancel_by"`
}

type Voucher struct {
	ID             int64       `json:"id"`
	Type           string      `json:"type"`
	Discount       json.Number `json:"discount"`
	DiscountType   string      `json:"discount_type"`
	Status         Code        `json:"status"`
	StartDate      int64       `json:"start_date"`
	EndDate        int64       `json:"end_date"`
	IsUnlimited    bool        `json:"is_unlimited"`
	LimitedUsages  *int        `json:"limited_usages"`
}

type Product struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	UnitPrice      json.Number `json:"unit_price"`
	CurrentStock   int         `json:"current_stock"`
	Approved       Code        `json:"approved"`
	Published      Code        `json:"published"`
	ThumbnailImage string      `json:"thumbnail_image"`
}

// PageMeta mirrors the Laravel-style pagination envelope.
type PageMeta struct {
	LastPage int `json:"last_page"`
}

type OrderPage struct {
	Orders   []Order
	LastPage int
}

type ProductPage struct {
	Products []Product
	LastPage int
}
