package service

import (
	"context"
	"errors"
	"testing"

	"shop-order-sync/internal/features/provider/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolver_FallsThroughOn404(t *testing.T) {
	client := newStubClient()
	client.addPage("/orders?shop_id=s1", 1, &domain.Page{Orders: rawOrders(1, 2)})

	resolver := NewResolver(client, 100, zap.NewNop())

	endpoint, first, err := resolver.Resolve(context.Background(), domain.Credential{}, OrderEndpointCandidates("s1"))
	require.NoError(t, err)
	assert.Equal(t, "/orders?shop_id=s1", endpoint)
	assert.Len(t, first.Orders, 2)
}

func TestResolver_SkipsEmptyFirstPage(t *testing.T) {
	client := newStubClient()
	client.addPage("/shops/s1/orders", 1, &domain.Page{Orders: []domain.RawOrder{}})
	client.addPage("/orders?shop_id=s1", 1, &domain.Page{Orders: rawOrders(1, 1)})

	resolver := NewResolver(client, 100, zap.NewNop())

	endpoint, _, err := resolver.Resolve(context.Background(), domain.Credential{}, OrderEndpointCandidates("s1"))
	require.NoError(t, err)
	assert.Equal(t, "/orders?shop_id=s1", endpoint)
}

func TestResolver_AllCandidatesExhausted(t *testing.T) {
	client := newStubClient()

	resolver := NewResolver(client, 100, zap.NewNop())

	_, _, err := resolver.Resolve(context.Background(), domain.Credential{}, OrderEndpointCandidates("s1"))
	assert.ErrorIs(t, err, ErrNoEndpoint)
	// Each candidate was probed exactly once, in priority order.
	assert.Equal(t, []string{
		"/shops/s1/orders#1",
		"/orders?shop_id=s1#1",
		"/orders#1",
	}, client.requests)
}

func TestResolver_NonNotFoundErrorAborts(t *testing.T) {
	client := newStubClient()
	boom := errors.New("provider API returned status: 500")
	client.failPage("/shops/s1/orders", 1, boom)
	client.addPage("/orders", 1, &domain.Page{Orders: rawOrders(1, 1)})

	resolver := NewResolver(client, 100, zap.NewNop())

	_, _, err := resolver.Resolve(context.Background(), domain.Credential{}, OrderEndpointCandidates("s1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// Later candidates were never probed.
	assert.Equal(t, []string{"/shops/s1/orders#1"}, client.requests)
}
