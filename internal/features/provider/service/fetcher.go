package service

import (
	"context"
	"errors"
	"sync"

	"shop-order-sync/internal/features/provider/domain"
	"shop-order-sync/internal/features/provider/ports"

	"go.uber.org/zap"
)

// ShopFetcher produces the raw order set of every shop under one credential.
type ShopFetcher struct {
	client    ports.Client
	resolver  *Resolver
	paginator *Paginator
	logger    *zap.Logger
}

// NewShopFetcher creates a ShopFetcher with the given page size and bound.
func NewShopFetcher(client ports.Client, pageSize, maxPages int, logger *zap.Logger) *ShopFetcher {
	return &ShopFetcher{
		client:    client,
		resolver:  NewResolver(client, pageSize, logger),
		paginator: NewPaginator(client, pageSize, maxPages, logger),
		logger:    logger,
	}
}

// FetchCredential fetches the shop list for one credential and fans out one
// task per shop. A shop-list failure degrades to treating the whole
// credential as one pseudo-shop against the generic endpoints.
func (f *ShopFetcher) FetchCredential(ctx context.Context, cred domain.Credential) []domain.ShopResult {
	shops, err := f.client.FetchShops(ctx, cred)
	if err != nil || len(shops) == 0 {
		if err != nil {
			f.logger.Warn("Shop list fetch failed, falling back to pseudo-shop",
				zap.String("credential", cred.ID),
				zap.Error(err),
			)
		}
		shops = []domain.Shop{
			{ID: cred.PseudoShopID(), Name: cred.DisplayName},
		}
	}

	results := make([]domain.ShopResult, len(shops))
	var wg sync.WaitGroup

	for i, shop := range shops {
		wg.Add(1)
		go func(i int, shop domain.Shop) {
			defer wg.Done()
			results[i] = f.fetchShop(ctx, cred, shop)
		}(i, shop)
	}
	wg.Wait()

	return results
}

// fetchShop runs the primary orders endpoint and the secondary returned-orders
// endpoint for one shop, merging the two by logical order id. Orders seen only
// on the secondary endpoint are tagged as originating from it.
func (f *ShopFetcher) fetchShop(ctx context.Context, cred domain.Credential, shop domain.Shop) domain.ShopResult {
	result := domain.ShopResult{Shop: shop, CredentialID: cred.ID}

	primary, err := f.fetchEndpoint(ctx, cred, OrderEndpointCandidates(shop.ID))
	if err != nil {
		result.Err = err
		return result
	}

	seen := make(map[string]bool, len(primary))
	for _, raw := range primary {
		result.Orders = append(result.Orders, domain.FetchedOrder{Raw: raw})
		if id := raw.OrderID(); id != "" {
			seen[id] = true
		}
	}

	// The returned-orders listing is best-effort: its absence is not an
	// error, and a failure never discards the primary result.
	returned, err := f.fetchEndpoint(ctx, cred, ReturnedEndpointCandidates(shop.ID))
	if err != nil && !errors.Is(err, ErrNoEndpoint) {
		f.logger.Warn("Returned-orders fetch failed, keeping primary orders",
			zap.String("shop", shop.ID),
			zap.Error(err),
		)
	}
	for _, raw := range returned {
		id := raw.OrderID()
		if id != "" && seen[id] {
			continue
		}
		result.Orders = append(result.Orders, domain.FetchedOrder{Raw: raw, FromReturnedEndpoint: true})
		if id != "" {
			seen[id] = true
		}
	}

	return result
}

// fetchEndpoint resolves one candidate list and pages it to completion.
func (f *ShopFetcher) fetchEndpoint(ctx context.Context, cred domain.Credential, candidates []string) ([]domain.RawOrder, error) {
	endpoint, first, err := f.resolver.Resolve(ctx, cred, candidates)
	if err != nil {
		return nil, err
	}
	return f.paginator.FetchAll(ctx, cred, endpoint, first), nil
}
