package poller

import (
	"context"
	"sync"

	"github.com/SombathSOAN/krob-tele/internal/detector"
	"github.com/SombathSOAN/krob-tele/internal/marketplace"
)

type MockSource struct {
	OrdersFunc        func(ctx context.Context, token string, page int) (*marketplace.OrderPage, error)
	SellerCouponsFunc func(ctx context.Context, token string) ([]marketplace.Voucher, error)
	ProductsFunc      func(ctx context.Context, token string, page int) (*marketplace.ProductPage, error)
}

func (m *MockSource) Orders(ctx context.Context, token string, page int) (*marketplace.OrderPage, error) {
	if m.OrdersFunc != nil {
		return m.OrdersFunc(ctx, token, page)
	}
	return &marketplace.OrderPage{LastPage: 1}, nil
}

func (m *MockSource) SellerCoupons(ctx context.Context, token string) ([]marketplace.Voucher, error) {
	if m.SellerCouponsFunc != nil {
		return m.SellerCouponsFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockSource) Products(ctx context.Context, token string, page int) (*marketplace.ProductPage, error) {
	if m.ProductsFunc != nil {
		return m.ProductsFunc(ctx, token, page)
	}
	return &marketplace.ProductPage{LastPage: 1}, nil
}

type MockNotifier struct {
	mu         sync.Mutex
	events     []detector.Event
	NotifyFunc func(ctx context.Context, chatID int64, ev detector.Event) error
}

func (m *MockNotifier) Notify(ctx context.Context, chatID int64, ev detector.Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, chatID, ev)
	}
	return nil
}

func (m *MockNotifier) Events() []detector.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]detector.Event, len(m.events))
	copy(out, m.events)
	return out
}

func products(startID int64, count int, approved marketplace.Code) []marketplace.Product {
	out := make([]marketplace.Product, count)
	for i := range out {
		out[i] = marketplace.Product{ID: startID + int64(i), Approved: approved}
	}
	return out
}
