package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/SombathSOAN/krob-tele/internal/metrics"
)

const countryCode = "+855"

// Client talks to the vendor REST API. All requests pass a shared client-side
// rate limiter so the relay stays under the marketplace 429 ceiling even with
// many sessions polling.
type Client struct {
	logger  *slog.Logger
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	tracer  trace.Tracer
}

func NewClient(logger *slog.Logger, baseURL string, requestsPerSec int) *Client {
	if requestsPerSec <= 0 {
		requestsPerSec = 10
	}
	return &Client{
		logger:  logger,
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), requestsPerSec),
		tracer:  otel.Tracer("marketplace"),
	}
}

type loginEnvelope struct {
	Result      bool   `json:"result"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	Vendor      Vendor `json:"user"`
}

func (c *Client) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	ctx, span := c.tracer.Start(ctx, "Login")
	defer span.End()

	body := map[string]string{
		"country_code": countryCode,
		"phone":        phone,
		"password":     password,
	}
	var env loginEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/vendor/auth/login", "", "login", body, &env); err != nil {
		return nil, err
	}
	if !env.Result {
		return nil, &AuthError{Message: env.Message}
	}
	return &LoginResult{AccessToken: env.AccessToken, Vendor: env.Vendor}, nil
}

func (c *Client) Orders(ctx context.Context, token string, page int) (*OrderPage, error) {
	ctx, span := c.tracer.Start(ctx, "Orders")
	span.SetAttributes(attribute.Int("page", page))
	defer span.End()

	var env struct {
		Data []Order  `json:"data"`
		Meta PageMeta `json:"meta"`
	}
	path := "/api/vendor/orders?page=" + strconv.Itoa(page)
	if err := c.do(ctx, http.MethodGet, path, token, "orders", nil, &env); err != nil {
		return nil, err
	}
	lastPage := env.Meta.LastPage
	if lastPage < 1 {
		lastPage = 1
	}
	return &OrderPage{Orders: env.Data, LastPage: lastPage}, nil
}

func (c *Client) SellerCoupons(ctx context.Context, token string) ([]Voucher, error) {
	ctx, span := c.tracer.Start(ctx, "SellerCoupons")
	defer span.End()

	var env struct {
		Data []Voucher `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/vendor/vouchers/seller-coupons", token, "coupons", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Products(ctx context.Context, token string, page int) (*ProductPage, error) {
	ctx, span := c.tracer.Start(ctx, "Products")
	span.SetAttributes(attribute.Int("page", page))
	defer span.End()

	var env struct {
		Data []Product `json:"data"`
		Meta PageMeta  `json:"meta"`
	}
	path := "/api/vendor/products/products?page=" + strconv.Itoa(page)
	if err := c.do(ctx, http.MethodGet, path, token, "products", nil, &env); err != nil {
		return nil, err
	}
	lastPage := env.Meta.LastPage
	if lastPage < 1 {
		lastPage = 1
	}
	return &ProductPage{Products: env.Data, LastPage: lastPage}, nil
}

func (c *Client) Product(ctx context.Context, token string, productID int64) (*Product, error) {
	ctx, span := c.tracer.Start(ctx, "Product")
	span.SetAttributes(attribute.Int64("product_id", productID))
	defer span.End()

	var env struct {
		Data Product `json:"data"`
	}
	path := fmt.Sprintf("/api/vendor/products/%d", productID)
	if err := c.do(ctx, http.MethodGet, path, token, "product", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) SetPublished(ctx context.Context, token string, productID int64, published bool) error {
	ctx, span := c.tracer.Start(ctx, "SetPublished")
	span.SetAttributes(attribute.Int64("product_id", productID), attribute.Bool("published", published))
	defer span.End()

	status := 0
	if published {
		status = 1
	}
	body := map[string]int64{"id": productID, "status": int64(status)}
	return c.do(ctx, http.MethodPost, "/api/vendor/products/published", token, "published", body, nil)
}

func (c *Client) do(ctx context.Context, method, path, token, endpoint string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var buf *bytes.Buffer
	if body != nil {
		buf = &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncAPIRequest(endpoint, "network_error")
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", "endpoint", endpoint, "error", err)
		}
	}()

	metrics.IncAPIRequest(endpoint, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("Marketplace rate limit reached, skipping this cycle", "endpoint", endpoint)
		return ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
