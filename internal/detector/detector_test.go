package detector

import (
	"testing"

	"github.com/SombathSOAN/krob-tele/internal/marketplace"
)

func orders(ids ...int64) []marketplace.Order {
	out := make([]marketplace.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, marketplace.Order{ID: id})
	}
	return out
}

func TestDetectOrders(t *testing.T) {
	tests := []struct {
		name       string
		state      OrderState
		page       []marketplace.Order
		wantEvent  bool
		wantItemID int64
		wantLastID int64
		wantPrimed bool
	}{
		{
			name:       "first observation primes silently",
			state:      OrderState{},
			page:       orders(105, 104),
			wantEvent:  false,
			wantLastID: 105,
			wantPrimed: true,
		},
		{
			name:       "newest above watermark emits once",
			state:      OrderState{LastID: 105, Primed: true},
			page:       orders(107, 106, 105),
			wantEvent:  true,
			wantItemID: 107,
			wantLastID: 107,
			wantPrimed: true,
		},
		{
			name:       "newest equal to watermark is silent",
			state:      OrderState{LastID: 107, Primed: true},
			page:       orders(107, 106),
			wantEvent:  false,
			wantLastID: 107,
			wantPrimed: true,
		},
		{
			name:       "newest below watermark is silent",
			state:      OrderState{LastID: 107, Primed: true},
			page:       orders(103),
			wantEvent:  false,
			wantLastID: 107,
			wantPrimed: true,
		},
		{
			name:       "empty page leaves state untouched",
			state:      OrderState{},
			page:       nil,
			wantEvent:  false,
			wantLastID: 0,
			wantPrimed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := DetectOrders(&tt.state, tt.page)
			if (ev != nil) != tt.wantEvent {
				t.Fatalf("DetectOrders() event = %v, wantEvent %v", ev, tt.wantEvent)
			}
			if ev != nil {
				if ev.Kind != KindOrder {
					t.Errorf("event kind = %q, want %q", ev.Kind, KindOrder)
				}
				if ev.ItemID != tt.wantItemID {
					t.Errorf("event item id = %d, want %d", ev.ItemID, tt.wantItemID)
				}
				if ev.Order == nil || ev.Order.ID != tt.wantItemID {
					t.Errorf("event payload order = %+v, want id %d", ev.Order, tt.wantItemID)
				}
			}
			if tt.state.LastID != tt.wantLastID {
				t.Errorf("watermark = %d, want %d", tt.state.LastID, tt.wantLastID)
			}
			if tt.state.Primed != tt.wantPrimed {
				t.Errorf("primed = %v, want %v", tt.state.Primed, tt.wantPrimed)
			}
		})
	}
}

func TestDetectOrders_OnlyNewestReported(t *testing.T) {
	// Several orders arriving within one interval still surface as a single
	// event for the newest one.
	state := OrderState{LastID: 100, Primed: true}
	ev := DetectOrders(&state, orders(110, 109, 108, 100))
	if ev == nil {
		t.Fatal("expected one event")
	}
	if ev.ItemID != 110 {
		t.Errorf("event item id = %d, want 110", ev.ItemID)
	}
	if state.LastID != 110 {
		t.Errorf("watermark = %d, want 110", state.LastID)
	}
}

func TestDetectVouchers(t *testing.T) {
	state := StatusState{}

	// First observation adopts silently.
	events := DetectVouchers(state, []marketplace.Voucher{{ID: 9, Status: marketplace.CodePending}})
	if len(events) != 0 {
		t.Fatalf("first observation emitted %d events, want 0", len(events))
	}
	if state[9] != marketplace.CodePending {
		t.Fatalf("stored status = %d, want pending", state[9])
	}

	// Pending -> approved emits exactly one event.
	events = DetectVouchers(state, []marketplace.Voucher{{ID: 9, Status: marketplace.CodeApproved, Type: "product_base"}})
	if len(events) != 1 {
		t.Fatalf("approval emitted %d events, want 1", len(events))
	}
	if events[0].Kind != KindVoucher || events[0].ItemID != 9 {
		t.Errorf("unexpected event %+v", events[0])
	}
	if events[0].Transition != "status 0->1" {
		t.Errorf("transition = %q, want %q", events[0].Transition, "status 0->1")
	}

	// Repeated approved is silent.
	events = DetectVouchers(state, []marketplace.Voucher{{ID: 9, Status: marketplace.CodeApproved}})
	if len(events) != 0 {
		t.Fatalf("repeated approved emitted %d events, want 0", len(events))
	}

	// Approved -> pending updates silently, and the next approval emits again.
	events = DetectVouchers(state, []marketplace.Voucher{{ID: 9, Status: marketplace.CodePending}})
	if len(events) != 0 {
		t.Fatalf("revocation emitted %d events, want 0", len(events))
	}
	events = DetectVouchers(state, []marketplace.Voucher{{ID: 9, Status: marketplace.CodeApproved}})
	if len(events) != 1 {
		t.Fatalf("re-approval emitted %d events, want 1", len(events))
	}
}

func TestDetectProducts_PerPage(t *testing.T) {
	state := StatusState{}

	page1 := make([]marketplace.Product, 20)
	for i := range page1 {
		page1[i] = marketplace.Product{ID: int64(i + 1), Approved: marketplace.CodePending}
	}
	page2 := make([]marketplace.Product, 5)
	for i := range page2 {
		page2[i] = marketplace.Product{ID: int64(i + 21), Approved: marketplace.CodePending}
	}

	if got := DetectProducts(state, page1); len(got) != 0 {
		t.Fatalf("priming page1 emitted %d events", len(got))
	}
	if got := DetectProducts(state, page2); len(got) != 0 {
		t.Fatalf("priming page2 emitted %d events", len(got))
	}
	if len(state) != 25 {
		t.Fatalf("tracked products = %d, want 25", len(state))
	}

	// One product on page2 transitions to approved.
	page2[3].Approved = marketplace.CodeApproved
	page2[3].Name = "Rice 25kg"

	if got := DetectProducts(state, page1); len(got) != 0 {
		t.Fatalf("page1 emitted %d events, want 0", len(got))
	}
	got := DetectProducts(state, page2)
	if len(got) != 1 {
		t.Fatalf("page2 emitted %d events, want 1", len(got))
	}
	if got[0].ItemID != 24 || got[0].Product == nil || got[0].Product.Name != "Rice 25kg" {
		t.Errorf("unexpected event %+v", got[0])
	}

	// All 25 watermarks tracked and the approval is not re-reported.
	if got := DetectProducts(state, page2); len(got) != 0 {
		t.Fatalf("repeat poll emitted %d events, want 0", len(got))
	}
}
