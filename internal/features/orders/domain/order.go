package domain

import (
	"time"

	providerdomain "shop-order-sync/internal/features/provider/domain"
)

// Order is the canonical order entity every consumer works with. Identity is
// derived deterministically from the provider order id (falling back to the
// provider code), so two orders with the same ID are the same logical order
// regardless of which endpoint produced them.
type Order struct {
	// ID is the stable logical order identifier.
	ID string `json:"id"`
	// TrackingNumber is the carrier waybill, when assigned.
	TrackingNumber string `json:"tracking_number"`
	// Status is the delivery-lifecycle bucket derived by Classify.
	Status LifecycleStatus `json:"lifecycle_status"`
	// SendDate is when the order was handed to the carrier.
	SendDate time.Time `json:"send_date,omitempty"`
	// CustomerName is the recipient name.
	CustomerName string `json:"customer_name"`
	// CustomerPhone is the recipient phone.
	CustomerPhone string `json:"customer_phone"`
	// CustomerAddress is the delivery address.
	CustomerAddress string `json:"customer_address"`
	// COD is the cash-on-delivery amount to collect.
	COD float64 `json:"cod"`
	// ShippingFee is the carrier fee for the order.
	ShippingFee float64 `json:"shipping_fee"`
	// Raw is the provider payload retained verbatim for traceability.
	Raw providerdomain.RawOrder `json:"raw_order,omitempty"`
	// ShopID is the normalized id of the shop the order belongs to.
	ShopID string `json:"shop_id"`
}

// ShopOrderSet groups the orders of one distinct shop after deduplication.
// It is retained with zero orders only when it carries a fetch error.
type ShopOrderSet struct {
	ShopID       string  `json:"shop_id"`
	ShopName     string  `json:"shop_name"`
	CredentialID string  `json:"credential_id"`
	Orders       []Order `json:"orders"`
	FetchError   string  `json:"fetch_error,omitempty"`
}

// CacheSnapshot is the sole persisted state: the authoritative order set, the
// per-shop grouping, and the sync timestamps. It is replaced atomically after
// each successful sync, never partially overwritten.
type CacheSnapshot struct {
	Orders         []Order        `json:"orders"`
	ShopOrderSets  []ShopOrderSet `json:"shop_order_sets"`
	LastFetchTime  time.Time      `json:"last_fetch_time"`
	LastUpdateTime time.Time      `json:"last_update_time"`
}

// IsEmpty reports whether the snapshot holds no orders at all.
func (s CacheSnapshot) IsEmpty() bool {
	return len(s.Orders) == 0
}

// SyncResult buckets one reconciliation pass. RemovedCandidates are orders
// present in cache but absent from the latest fetch; they are recorded for
// observability and never actually removed.
type SyncResult struct {
	Added             []Order `json:"added"`
	Updated           []Order `json:"updated"`
	Unchanged         []Order `json:"unchanged"`
	RemovedCandidates []Order `json:"removed_candidates"`
}

// HasChanges reports whether the pass produced anything worth persisting.
func (r SyncResult) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Updated) > 0
}
