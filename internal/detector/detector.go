// Package detector holds the pure change-detection logic of the relay: given
// the previously observed state for a resource kind and a freshly fetched
// collection, it decides which items crossed a reportable transition.
//
// Detection and watermark advance happen in the same step, so a given
// (kind, item) transition is reported at most once no matter how delivery of
// the resulting events goes.
package detector

import "github.com/SombathSOAN/krob-tele/internal/marketplace"

type Kind string

const (
	KindOrder   Kind = "order"
	KindVoucher Kind = "voucher"
	KindProduct Kind = "product"
)

// Event is a single detected transition. It is transient: dispatched to the
// notifier and dropped, never stored.
type Event struct {
	Kind       Kind
	ItemID     int64
	Transition string

	// Exactly one of the following is set, matching Kind.
	Order   *marketplace.Order
	Voucher *marketplace.Voucher
	Product *marketplace.Product
}

// OrderState is the order watermark: the highest order id seen so far.
// Primed is false until the first successful poll adopts a baseline.
type OrderState struct {
	LastID int64
	Primed bool
}

// StatusState maps an item id to its last observed status code. Used for both
// voucher statuses and product approval flags.
type StatusState map[int64]marketplace.Code
