package service

import (
	"context"

	ordersservice "shop-order-sync/internal/features/orders/service"
	providerdomain "shop-order-sync/internal/features/provider/domain"
	providerservice "shop-order-sync/internal/features/provider/service"
	"shop-order-sync/internal/features/sync/ports"
)

// ProviderFetchSource composes the fetch orchestrator with the normalizer,
// turning raw per-shop fetch results into canonical shop order sets. It is
// the production implementation of ports.Fetcher.
type ProviderFetchSource struct {
	orchestrator *providerservice.Orchestrator
	normalizer   *ordersservice.Normalizer
	credentials  func() []providerdomain.Credential
}

// NewProviderFetchSource wires the orchestrator and normalizer behind the
// Fetcher port. Credentials are re-read through the callback on every fetch
// so settings edits take effect without a restart.
func NewProviderFetchSource(
	orchestrator *providerservice.Orchestrator,
	normalizer *ordersservice.Normalizer,
	credentials func() []providerdomain.Credential,
) *ProviderFetchSource {
	return &ProviderFetchSource{
		orchestrator: orchestrator,
		normalizer:   normalizer,
		credentials:  credentials,
	}
}

// FetchAll runs one orchestrated fetch and normalizes every shop result.
func (s *ProviderFetchSource) FetchAll(ctx context.Context) (*ports.FetchOutcome, error) {
	summary, err := s.orchestrator.SyncAll(ctx, s.credentials())
	if err != nil {
		return nil, err
	}

	outcome := &ports.FetchOutcome{
		SuccessCount: summary.SuccessCount,
		ErrorCount:   summary.ErrorCount,
	}
	for _, result := range summary.Shops {
		set := s.normalizer.NormalizeShop(result)
		outcome.Sets = append(outcome.Sets, set)
		outcome.TotalOrders += len(set.Orders)
	}
	return outcome, nil
}
