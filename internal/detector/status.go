package detector

import (
	"fmt"

	"github.com/SombathSOAN/krob-tele/internal/marketplace"
)

// DetectVouchers walks the full coupon set and reports every voucher whose
// status moved pending -> approved since the previous observation. Unseen ids
// adopt their current status silently; any other transition pair updates the
// stored status without an event.
func DetectVouchers(state StatusState, vouchers []marketplace.Voucher) []Event {
	var events []Event
	for i := range vouchers {
		v := vouchers[i]
		prev, seen := state[v.ID]
		state[v.ID] = v.Status
		if !seen {
			continue
		}
		if prev == marketplace.CodePending && v.Status == marketplace.CodeApproved {
			events = append(events, Event{
				Kind:       KindVoucher,
				ItemID:     v.ID,
				Transition: statusTransition(prev, v.Status),
				Voucher:    &v,
			})
		}
	}
	return events
}

// DetectProducts applies the same policy to the approval flag of one page of
// products. It is called once per fetched page so watermark updates stay
// per-item incremental: pages already processed keep their updates even when a
// later page fetch fails and the rest of the tick is abandoned.
func DetectProducts(state StatusState, products []marketplace.Product) []Event {
	var events []Event
	for i := range products {
		p := products[i]
		prev, seen := state[p.ID]
		state[p.ID] = p.Approved
		if !seen {
			continue
		}
		if prev == marketplace.CodePending && p.Approved == marketplace.CodeApproved {
			events = append(events, Event{
				Kind:       KindProduct,
				ItemID:     p.ID,
				Transition: statusTransition(prev, p.Approved),
				Product:    &p,
			})
		}
	}
	return events
}

func statusTransition(from, to marketplace.Code) string {
	return fmt.Sprintf("status %d->%d", from, to)
}
