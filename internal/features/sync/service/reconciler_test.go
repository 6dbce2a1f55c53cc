package service

import (
	"testing"

	providerdomain "shop-order-sync/internal/features/provider/domain"
	"shop-order-sync/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func order(id string, fields ...func(*domain.Order)) domain.Order {
	o := domain.Order{ID: id, ShopID: "s1", Status: domain.StatusSent}
	for _, f := range fields {
		f(&o)
	}
	return o
}

func withTracking(tn string) func(*domain.Order) {
	return func(o *domain.Order) { o.TrackingNumber = tn }
}

func withRaw(raw providerdomain.RawOrder) func(*domain.Order) {
	return func(o *domain.Order) { o.Raw = raw }
}

func TestReconciler_Buckets(t *testing.T) {
	r := NewReconciler(zap.NewNop())

	old := []domain.Order{
		order("1", withTracking("TN-1")),
		order("2"),
		order("3"),
	}
	new := []domain.Order{
		order("1", withTracking("TN-1")),    // unchanged
		order("2", withTracking("TN-2-v2")), // updated
		order("4"),                          // added
	}

	result := r.Reconcile(old, new)
	require.Len(t, result.Added, 1)
	assert.Equal(t, "4", result.Added[0].ID)
	require.Len(t, result.Updated, 1)
	assert.Equal(t, "2", result.Updated[0].ID)
	require.Len(t, result.Unchanged, 1)
	require.Len(t, result.RemovedCandidates, 1)
	assert.Equal(t, "3", result.RemovedCandidates[0].ID)
}

func TestReconciler_TrackingChangeIsUpdateNotAdd(t *testing.T) {
	r := NewReconciler(zap.NewNop())

	old := []domain.Order{order("1", withTracking("TN-OLD"))}
	new := []domain.Order{order("1", withTracking("TN-NEW"))}

	result := r.Reconcile(old, new)
	assert.Empty(t, result.Added, "identity follows the order id, not the tracking number")
	require.Len(t, result.Updated, 1)
	assert.Equal(t, "TN-NEW", result.Updated[0].TrackingNumber)
}

func TestReconciler_RawSubFieldChangeDetected(t *testing.T) {
	r := NewReconciler(zap.NewNop())

	old := []domain.Order{order("1", withRaw(providerdomain.RawOrder{"sub_status": float64(1)}))}
	new := []domain.Order{order("1", withRaw(providerdomain.RawOrder{"sub_status": float64(7)}))}

	result := r.Reconcile(old, new)
	assert.Len(t, result.Updated, 1)
}

func TestReconciler_OmittedOrdersSurviveMerge(t *testing.T) {
	r := NewReconciler(zap.NewNop())

	old := []domain.Order{order("X"), order("Y")}
	new := []domain.Order{order("Y"), order("Z")}

	result := r.Reconcile(old, new)
	require.Len(t, result.RemovedCandidates, 1)
	assert.Equal(t, "X", result.RemovedCandidates[0].ID)

	merged := r.Merge(old, result)
	ids := make([]string, len(merged))
	for i, o := range merged {
		ids[i] = o.ID
	}
	// X was omitted by the fetch but is never deleted; cached order is kept.
	assert.Equal(t, []string{"X", "Y", "Z"}, ids)
}

func TestReconciler_Idempotent(t *testing.T) {
	r := NewReconciler(zap.NewNop())

	set := []domain.Order{
		order("1", withTracking("TN-1")),
		order("2", withRaw(providerdomain.RawOrder{"status_name": "shipped"})),
	}

	result := r.Reconcile(set, set)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.RemovedCandidates)
	assert.Len(t, result.Unchanged, 2)
	assert.False(t, result.HasChanges())

	merged := r.Merge(set, result)
	assert.Equal(t, set, merged)
}

func TestReconciler_MergeIsMonotonic(t *testing.T) {
	r := NewReconciler(zap.NewNop())

	old := []domain.Order{order("1"), order("2"), order("3")}
	// Even a drastically smaller fetch never shrinks the merged set.
	new := []domain.Order{order("3")}

	merged := r.Merge(old, r.Reconcile(old, new))
	assert.GreaterOrEqual(t, len(merged), len(old))
	assert.Len(t, merged, 3)
}

func TestReconciler_HasChanges(t *testing.T) {
	r := NewReconciler(zap.NewNop())

	a := []domain.Order{order("1", withRaw(providerdomain.RawOrder{"updated_at": "2026-03-01T10:00:00Z"}))}
	same := []domain.Order{order("1", withRaw(providerdomain.RawOrder{"updated_at": "2026-03-01T10:00:00Z"}))}
	touched := []domain.Order{order("1", withRaw(providerdomain.RawOrder{"updated_at": "2026-03-01T11:00:00Z"}))}
	grown := append(append([]domain.Order(nil), a...), order("2"))

	assert.False(t, r.HasChanges(a, same))
	assert.True(t, r.HasChanges(a, touched))
	assert.True(t, r.HasChanges(a, grown))
}
