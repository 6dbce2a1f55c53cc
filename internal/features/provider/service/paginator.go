package service

import (
	"context"

	"shop-order-sync/internal/features/provider/domain"
	"shop-order-sync/internal/features/provider/ports"

	"go.uber.org/zap"
)

// Paginator walks a resolved endpoint page by page until the full order list
// is retrieved or a safety bound is reached.
type Paginator struct {
	client   ports.Client
	pageSize int
	maxPages int
	logger   *zap.Logger
}

// NewPaginator creates a Paginator with the given page size and page bound.
func NewPaginator(client ports.Client, pageSize, maxPages int, logger *zap.Logger) *Paginator {
	return &Paginator{
		client:   client,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// FetchAll continues pagination from an already-fetched first page. It stops
// when a reported total (entries or pages) is reached, when a page comes back
// short of the page size with no total reported, or at the page bound.
// A page error mid-stream truncates gracefully: accumulated pages are kept.
func (p *Paginator) FetchAll(ctx context.Context, cred domain.Credential, endpoint string, first *domain.Page) []domain.RawOrder {
	orders := append([]domain.RawOrder(nil), first.Orders...)

	totalEntries := first.TotalEntries
	totalPages := first.TotalPages

	if p.done(orders, 1, totalEntries, totalPages, len(first.Orders)) {
		return orders
	}

	for page := 2; ; page++ {
		if page > p.maxPages {
			p.logger.Warn("Pagination safety bound reached",
				zap.String("endpoint", endpoint),
				zap.Int("max_pages", p.maxPages),
				zap.Int("orders", len(orders)),
			)
			return orders
		}

		result, err := p.client.FetchPage(ctx, cred, endpoint, page, p.pageSize)
		if err != nil {
			// Mid-stream failure keeps everything fetched so far.
			p.logger.Warn("Page fetch failed, truncating pagination",
				zap.String("endpoint", endpoint),
				zap.Int("page", page),
				zap.Int("orders_kept", len(orders)),
				zap.Error(err),
			)
			return orders
		}

		orders = append(orders, result.Orders...)

		if result.TotalEntries > 0 {
			totalEntries = result.TotalEntries
		}
		if result.TotalPages > 0 {
			totalPages = result.TotalPages
		}

		if p.done(orders, page, totalEntries, totalPages, len(result.Orders)) {
			return orders
		}
	}
}

// done reports whether pagination can stop after the given page.
func (p *Paginator) done(orders []domain.RawOrder, page, totalEntries, totalPages, lastPageLen int) bool {
	if totalEntries > 0 && len(orders) >= totalEntries {
		return true
	}
	if totalPages > 0 && page >= totalPages {
		return true
	}
	if totalEntries == 0 && totalPages == 0 && lastPageLen < p.pageSize {
		return true
	}
	return false
}
