// Package poller runs the per-session recurring fetch-detect-notify cycles.
// Each authenticated session gets three independent pollers (orders, vouchers,
// products), owned by the session through a cancel func and stopped exactly
// when the session is destroyed.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/SombathSOAN/krob-tele/internal/detector"
	"github.com/SombathSOAN/krob-tele/internal/marketplace"
	"github.com/SombathSOAN/krob-tele/internal/metrics"
	"github.com/SombathSOAN/krob-tele/internal/session"
)

// Source is the slice of the marketplace client the pollers consume.
type Source interface {
	Orders(ctx context.Context, token string, page int) (*marketplace.OrderPage, error)
	SellerCoupons(ctx context.Context, token string) ([]marketplace.Voucher, error)
	Products(ctx context.Context, token string, page int) (*marketplace.ProductPage, error)
}

// Notifier delivers one detected change to the vendor's chat. Delivery
// failures are the notifier's problem to report; they never roll back
// watermarks or stop the remaining events of a tick.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, ev detector.Event) error
}

type Intervals struct {
	Orders   time.Duration
	Vouchers time.Duration
	Products time.Duration
}

// errNotAuthenticated skips a tick silently: the session was logged out
// between scheduling and execution.
var errNotAuthenticated = errors.New("session has no bearer token")

type Manager struct {
	logger    *slog.Logger
	src       Source
	notifier  Notifier
	intervals Intervals
	tracer    trace.Tracer
	wg        sync.WaitGroup
}

func NewManager(logger *slog.Logger, src Source, notifier Notifier, intervals Intervals) *Manager {
	return &Manager{
		logger:    logger,
		src:       src,
		notifier:  notifier,
		intervals: intervals,
		tracer:    otel.Tracer("poller"),
	}
}

// StartSession launches the three pollers for an authenticated session and
// binds their shared cancel func to the session, tearing down any pollers a
// previous login left running.
func (m *Manager) StartSession(ctx context.Context, sess *session.Session) {
	pctx, cancel := context.WithCancel(ctx)
	sess.BindPollers(cancel)

	m.logger.Info("Starting pollers", "chat_id", sess.ChatID)

	m.wg.Add(3)
	go m.run(pctx, sess, detector.KindOrder, m.intervals.Orders, m.orderTick)
	go m.run(pctx, sess, detector.KindVoucher, m.intervals.Vouchers, m.voucherTick)
	go m.run(pctx, sess, detector.KindProduct, m.intervals.Products, m.productTick)
}

// Wait blocks until every poller goroutine has exited. Used at shutdown,
// after all sessions were destroyed, so in-flight ticks finish cleanly.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// run fires one priming tick immediately, then ticks on a fixed period until
// the session's poller context is cancelled. The tick executes inline in the
// loop, so a poller can never overlap itself: an overrunning tick just delays
// the next one (time.Ticker drops fires it missed).
func (m *Manager) run(ctx context.Context, sess *session.Session, kind detector.Kind, interval time.Duration, tick func(ctx context.Context, sess *session.Session) error) {
	defer m.wg.Done()

	m.tick(ctx, sess, kind, tick)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Poller stopped", "chat_id", sess.ChatID, "kind", kind)
			return
		case <-ticker.C:
			m.tick(ctx, sess, kind, tick)
		}
	}
}

func (m *Manager) tick(ctx context.Context, sess *session.Session, kind detector.Kind, fn func(ctx context.Context, sess *session.Session) error) {
	ctx, span := m.tracer.Start(ctx, "Tick")
	span.SetAttributes(
		attribute.String("kind", string(kind)),
		attribute.Int64("chat_id", sess.ChatID),
	)
	defer span.End()

	err := fn(ctx, sess)
	switch {
	case err == nil:
		metrics.IncPollTick(string(kind), "ok")
	case errors.Is(err, errNotAuthenticated):
		metrics.IncPollTick(string(kind), "skipped")
	case errors.Is(err, marketplace.ErrRateLimited):
		// Transient by definition; the next scheduled tick retries.
		metrics.IncPollTick(string(kind), "rate_limited")
	case errors.Is(err, context.Canceled):
		metrics.IncPollTick(string(kind), "cancelled")
	default:
		metrics.IncPollTick(string(kind), "error")
		m.logger.Error("Poll tick failed", "chat_id", sess.ChatID, "kind", kind, "error", err)
	}
}

func (m *Manager) orderTick(ctx context.Context, sess *session.Session) error {
	token := sess.Token()
	if token == "" {
		return errNotAuthenticated
	}
	page, err := m.src.Orders(ctx, token, 1)
	if err != nil {
		return err
	}
	if ev := detector.DetectOrders(&sess.Orders, page.Orders); ev != nil {
		m.dispatch(ctx, sess.ChatID, *ev)
	}
	return nil
}

func (m *Manager) voucherTick(ctx context.Context, sess *session.Session) error {
	token := sess.Token()
	if token == "" {
		return errNotAuthenticated
	}
	vouchers, err := m.src.SellerCoupons(ctx, token)
	if err != nil {
		return err
	}
	for _, ev := range detector.DetectVouchers(sess.Vouchers, vouchers) {
		m.dispatch(ctx, sess.ChatID, ev)
	}
	return nil
}

// productTick walks the product pages sequentially up to the server-reported
// last page. It stops early on an empty page (inconsistent metadata) or a
// failed page fetch; pages processed before the failure keep their watermark
// updates since detection applies them per item.
func (m *Manager) productTick(ctx context.Context, sess *session.Session) error {
	token := sess.Token()
	if token == "" {
		return errNotAuthenticated
	}

	first, err := m.src.Products(ctx, token, 1)
	if err != nil {
		return err
	}
	lastPage := first.LastPage

	for page := 1; page <= lastPage; page++ {
		products := first.Products
		if page > 1 {
			p, err := m.src.Products(ctx, token, page)
			if err != nil {
				return err
			}
			products = p.Products
		}
		if len(products) == 0 {
			break
		}
		for _, ev := range detector.DetectProducts(sess.Products, products) {
			m.dispatch(ctx, sess.ChatID, ev)
		}
	}
	return nil
}

func (m *Manager) dispatch(ctx context.Context, chatID int64, ev detector.Event) {
	metrics.IncChangeEvent(string(ev.Kind))
	err := m.notifier.Notify(ctx, chatID, ev)
	metrics.IncNotification(err)
	if err != nil {
		m.logger.Error("Failed to deliver notification",
			"chat_id", chatID, "kind", ev.Kind, "item_id", ev.ItemID, "error", err)
	}
}
