package service

import (
	"context"
	"errors"
	"fmt"

	"shop-order-sync/internal/features/provider/domain"
	"shop-order-sync/internal/features/provider/ports"

	"go.uber.org/zap"
)

// ErrNoEndpoint is returned when every candidate endpoint for a shop answered
// 404 or an empty first page. The shop contributes nothing this cycle.
var ErrNoEndpoint = errors.New("no candidate endpoint returned data")

// OrderEndpointCandidates returns the prioritized endpoint templates for a
// shop's primary orders. Shop-scoped endpoints come first; generic fallbacks
// last, for sites whose endpoint contract is not contractually fixed.
func OrderEndpointCandidates(shopID string) []string {
	return []string{
		fmt.Sprintf("/shops/%s/orders", shopID),
		fmt.Sprintf("/orders?shop_id=%s", shopID),
		"/orders",
	}
}

// ReturnedEndpointCandidates returns the prioritized endpoint templates for
// the secondary returned-orders listing.
func ReturnedEndpointCandidates(shopID string) []string {
	return []string{
		fmt.Sprintf("/shops/%s/returns", shopID),
		fmt.Sprintf("/orders/returned?shop_id=%s", shopID),
		"/returns",
	}
}

// Resolver probes candidate endpoints and selects the first that returns data.
type Resolver struct {
	client   ports.Client
	pageSize int
	logger   *zap.Logger
}

// NewResolver creates a Resolver fetching first pages of the given size.
func NewResolver(client ports.Client, pageSize int, logger *zap.Logger) *Resolver {
	return &Resolver{
		client:   client,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Resolve issues a first-page request against each candidate in order.
// A candidate is accepted when it parses to a non-empty order array with
// HTTP 200; its first page is returned so the paginator does not refetch it.
// A 404 advances to the next candidate without retrying earlier ones; any
// other error aborts resolution and propagates.
func (r *Resolver) Resolve(ctx context.Context, cred domain.Credential, candidates []string) (string, *domain.Page, error) {
	for _, endpoint := range candidates {
		page, err := r.client.FetchPage(ctx, cred, endpoint, 1, r.pageSize)
		if err != nil {
			if errors.Is(err, ports.ErrEndpointNotFound) {
				r.logger.Debug("Candidate endpoint not found, trying next",
					zap.String("endpoint", endpoint),
				)
				continue
			}
			return "", nil, fmt.Errorf("endpoint resolution failed at %s: %w", endpoint, err)
		}

		if len(page.Orders) == 0 {
			r.logger.Debug("Candidate endpoint returned no orders, trying next",
				zap.String("endpoint", endpoint),
			)
			continue
		}

		return endpoint, page, nil
	}

	return "", nil, ErrNoEndpoint
}
