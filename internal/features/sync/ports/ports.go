package ports

import (
	"context"
	"time"

	"shop-order-sync/internal/features/orders/domain"
)

// SnapshotStore persists the authoritative order set, the per-shop grouping
// and the sync metadata. Save is atomic from the caller's perspective: the
// full triple becomes visible together or not at all.
// This is a Secondary Port (Driven Port).
type SnapshotStore interface {
	// Load reads the persisted snapshot. A missing snapshot yields an empty
	// one, not an error.
	Load(ctx context.Context) (*domain.CacheSnapshot, error)

	// Save replaces the persisted snapshot with the given state.
	Save(ctx context.Context, snapshot *domain.CacheSnapshot) error

	// IsFresh reports whether the persisted snapshot was fetched within
	// maxAge. A missing snapshot is never fresh.
	IsFresh(ctx context.Context, maxAge time.Duration) (bool, error)

	// Clear removes the persisted snapshot.
	Clear(ctx context.Context) error
}

// FetchOutcome is what one orchestrated fetch contributes to a sync cycle,
// already normalized into canonical entities.
type FetchOutcome struct {
	// Sets holds one ShopOrderSet per distinct shop.
	Sets []domain.ShopOrderSet
	// TotalOrders is the raw order count across all kept shops.
	TotalOrders int
	// SuccessCount is the number of shops fetched without error.
	SuccessCount int
	// ErrorCount is the number of shops whose fetch ended in an error.
	ErrorCount int
}

// Orders flattens every shop set into one order list.
func (o FetchOutcome) Orders() []domain.Order {
	var orders []domain.Order
	for _, set := range o.Sets {
		orders = append(orders, set.Orders...)
	}
	return orders
}

// Fetcher runs one full fan-out fetch across every configured credential.
// This is the seam between the sync engine and the provider feature.
type Fetcher interface {
	FetchAll(ctx context.Context) (*FetchOutcome, error)
}
