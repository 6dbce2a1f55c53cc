package service

import (
	"context"
	"errors"
	"sync"

	"shop-order-sync/internal/features/provider/domain"
	"shop-order-sync/internal/features/provider/ports"

	"go.uber.org/zap"
)

// ErrNoCredentials is the only hard failure of a sync attempt: nothing is
// configured, so no partial state can be produced.
var ErrNoCredentials = errors.New("no provider credentials configured")

// FetchSummary aggregates the outcome of one orchestrated fetch.
type FetchSummary struct {
	// Shops holds one deduplicated result per distinct shop.
	Shops []domain.ShopResult
	// TotalOrders is the number of raw orders across all kept shops.
	TotalOrders int
	// SuccessCount is the number of shops fetched without error.
	SuccessCount int
	// ErrorCount is the number of shops whose fetch ended in an error.
	ErrorCount int
}

// Orchestrator fans out shop fetchers across every configured credential and
// consolidates the per-shop results. It is read-only with respect to cache.
type Orchestrator struct {
	fetcher *ShopFetcher
	logger  *zap.Logger
}

// NewOrchestrator creates an Orchestrator around the given provider client.
func NewOrchestrator(client ports.Client, pageSize, maxPages int, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: NewShopFetcher(client, pageSize, maxPages, logger),
		logger:  logger,
	}
}

// SyncAll runs one full fan-out fetch: one concurrent task per credential,
// per-shop fan-out inside each, then shop deduplication across credentials.
// A single shop's failure never aborts sibling shops or credentials.
func (o *Orchestrator) SyncAll(ctx context.Context, creds []domain.Credential) (*FetchSummary, error) {
	if len(creds) == 0 {
		return nil, ErrNoCredentials
	}

	perCredential := make([][]domain.ShopResult, len(creds))
	var wg sync.WaitGroup

	for i, cred := range creds {
		wg.Add(1)
		go func(i int, cred domain.Credential) {
			defer wg.Done()
			perCredential[i] = o.fetcher.FetchCredential(ctx, cred)
		}(i, cred)
	}
	wg.Wait()

	var all []domain.ShopResult
	for _, results := range perCredential {
		all = append(all, results...)
	}

	deduped := dedupeShops(all)

	summary := &FetchSummary{}
	for _, shop := range deduped {
		switch {
		case shop.Err != nil && errors.Is(shop.Err, ErrNoEndpoint) && len(shop.Orders) == 0:
			// No endpoint yielded data for the shop: counted, not kept.
			summary.ErrorCount++
			o.logger.Warn("Shop yielded no resolvable endpoint",
				zap.String("shop", shop.Shop.ID),
			)
		case shop.Err != nil:
			summary.ErrorCount++
			summary.Shops = append(summary.Shops, shop)
			summary.TotalOrders += len(shop.Orders)
		case len(shop.Orders) == 0:
			// Empty and error-free sets are dropped.
			summary.SuccessCount++
		default:
			summary.SuccessCount++
			summary.Shops = append(summary.Shops, shop)
			summary.TotalOrders += len(shop.Orders)
		}
	}

	o.logger.Info("Fetch fan-out finished",
		zap.Int("credentials", len(creds)),
		zap.Int("shops", len(summary.Shops)),
		zap.Int("orders", summary.TotalOrders),
		zap.Int("success", summary.SuccessCount),
		zap.Int("errors", summary.ErrorCount),
	)

	return summary, nil
}

// dedupeShops collapses results reporting the same normalized shop id. The
// result with more orders is kept as base; orders only present on the other
// are unioned in by logical order id, so the merged count is the union of
// the inputs, never the sum.
func dedupeShops(results []domain.ShopResult) []domain.ShopResult {
	byID := make(map[string]int)
	var deduped []domain.ShopResult

	for _, result := range results {
		id := domain.NormalizeShopID(result.Shop.ID)
		idx, exists := byID[id]
		if !exists {
			result.Shop.ID = id
			byID[id] = len(deduped)
			deduped = append(deduped, result)
			continue
		}

		base := deduped[idx]
		other := result
		if len(other.Orders) > len(base.Orders) {
			base, other = other, base
			base.Shop.ID = id
		}

		seen := make(map[string]bool, len(base.Orders))
		for _, o := range base.Orders {
			if oid := o.Raw.OrderID(); oid != "" {
				seen[oid] = true
			}
		}
		for _, o := range other.Orders {
			oid := o.Raw.OrderID()
			if oid != "" && seen[oid] {
				continue
			}
			base.Orders = append(base.Orders, o)
			if oid != "" {
				seen[oid] = true
			}
		}

		if base.Err == nil {
			base.Err = other.Err
		}
		deduped[idx] = base
	}

	return deduped
}
