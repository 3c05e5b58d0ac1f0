package detector

import (
	"fmt"

	"github.com/SombathSOAN/krob-tele/internal/marketplace"
)

// DetectOrders inspects the first page of the orders collection, newest first.
// The first observation only primes the watermark. Afterwards, a newest id
// strictly greater than the watermark produces exactly one event for that
// newest order; intervening orders that arrived in the same interval are not
// reported individually. That is intentional, inherited behavior — do not
// expand it to one event per order without a requirements change.
func DetectOrders(state *OrderState, orders []marketplace.Order) *Event {
	if len(orders) == 0 {
		return nil
	}
	newest := orders[0]

	if !state.Primed {
		state.LastID = newest.ID
		state.Primed = true
		return nil
	}
	if newest.ID <= state.LastID {
		return nil
	}

	prev := state.LastID
	state.LastID = newest.ID
	o := newest
	return &Event{
		Kind:       KindOrder,
		ItemID:     newest.ID,
		Transition: fmt.Sprintf("id %d->%d", prev, newest.ID),
		Order:      &o,
	}
}
