package service

import (
	"context"
	"fmt"
	"sync"

	"shop-order-sync/internal/features/provider/domain"
	"shop-order-sync/internal/features/provider/ports"
)

// stubClient serves canned pages per endpoint. Endpoints with no canned pages
// answer 404, which is also the convenient default for fallback tests.
type stubClient struct {
	mu       sync.Mutex
	pages    map[string]map[int]*domain.Page
	pageErrs map[string]map[int]error
	shops    []domain.Shop
	shopsErr error
	requests []string
}

func newStubClient() *stubClient {
	return &stubClient{
		pages:    make(map[string]map[int]*domain.Page),
		pageErrs: make(map[string]map[int]error),
	}
}

func (c *stubClient) addPage(endpoint string, page int, result *domain.Page) {
	if c.pages[endpoint] == nil {
		c.pages[endpoint] = make(map[int]*domain.Page)
	}
	c.pages[endpoint][page] = result
}

func (c *stubClient) failPage(endpoint string, page int, err error) {
	if c.pageErrs[endpoint] == nil {
		c.pageErrs[endpoint] = make(map[int]error)
	}
	c.pageErrs[endpoint][page] = err
}

func (c *stubClient) FetchPage(_ context.Context, _ domain.Credential, endpoint string, page, _ int) (*domain.Page, error) {
	c.mu.Lock()
	c.requests = append(c.requests, fmt.Sprintf("%s#%d", endpoint, page))
	c.mu.Unlock()

	if err, ok := c.pageErrs[endpoint][page]; ok {
		return nil, err
	}
	if result, ok := c.pages[endpoint][page]; ok {
		return result, nil
	}
	return nil, fmt.Errorf("%w: %s", ports.ErrEndpointNotFound, endpoint)
}

func (c *stubClient) FetchShops(_ context.Context, _ domain.Credential) ([]domain.Shop, error) {
	return c.shops, c.shopsErr
}

// rawOrders builds n sequential raw records with ids starting at first.
func rawOrders(first, n int) []domain.RawOrder {
	orders := make([]domain.RawOrder, n)
	for i := range orders {
		orders[i] = domain.RawOrder{"id": fmt.Sprintf("%d", first+i)}
	}
	return orders
}
