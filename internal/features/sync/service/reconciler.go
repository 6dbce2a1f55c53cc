package service

import (
	"shop-order-sync/internal/features/orders/domain"

	"go.uber.org/zap"
)

// rawComparisonFields are the raw-payload sub-fields compared in addition to
// the canonical fields when deciding whether an order changed.
var rawComparisonFields = [][]string{
	{"sub_status", "substatus", "sub_state"},
	{"status_code", "status_id"},
	{"status_name", "status", "state"},
	{"updated_at", "update_time", "modified_at"},
}

// Reconciler diffs a freshly normalized order set against the cached set and
// folds it in without discarding anything the new fetch omitted. Providers
// under-report on pagination and filter edge cases, so omission is advisory
// only: removal candidates are recorded for observability, never removed.
type Reconciler struct {
	logger *zap.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Reconcile buckets the new set against the old one by logical order id.
func (r *Reconciler) Reconcile(old, new []domain.Order) domain.SyncResult {
	oldByID := make(map[string]domain.Order, len(old))
	for _, o := range old {
		oldByID[o.ID] = o
	}

	var result domain.SyncResult
	newIDs := make(map[string]bool, len(new))

	for _, incoming := range new {
		newIDs[incoming.ID] = true
		existing, known := oldByID[incoming.ID]
		if !known {
			result.Added = append(result.Added, incoming)
			continue
		}
		if orderChanged(existing, incoming) {
			result.Updated = append(result.Updated, incoming)
		} else {
			result.Unchanged = append(result.Unchanged, existing)
		}
	}

	for _, o := range old {
		if !newIDs[o.ID] {
			result.RemovedCandidates = append(result.RemovedCandidates, o)
		}
	}

	if len(result.RemovedCandidates) > 0 {
		r.logger.Info("Fetch omitted cached orders, keeping them",
			zap.Int("removal_candidates", len(result.RemovedCandidates)),
		)
	}

	return result
}

// Merge overlays every added and updated order onto the old set by id.
// Unchanged orders and removal candidates are left untouched, so the merged
// size only grows or stays equal across syncs.
func (r *Reconciler) Merge(old []domain.Order, result domain.SyncResult) []domain.Order {
	overlay := make(map[string]domain.Order, len(result.Added)+len(result.Updated))
	for _, o := range result.Updated {
		overlay[o.ID] = o
	}
	added := make(map[string]bool, len(result.Added))
	for _, o := range result.Added {
		overlay[o.ID] = o
		added[o.ID] = true
	}

	merged := make([]domain.Order, 0, len(old)+len(result.Added))
	for _, o := range old {
		if replacement, ok := overlay[o.ID]; ok {
			merged = append(merged, replacement)
			delete(added, o.ID)
			continue
		}
		merged = append(merged, o)
	}
	for _, o := range result.Added {
		if added[o.ID] {
			merged = append(merged, o)
		}
	}

	return merged
}

// HasChanges short-circuits a full diff: order counts differing or any
// updated-at timestamp moving means a reconcile pass is worth running.
func (r *Reconciler) HasChanges(old, new []domain.Order) bool {
	if len(old) != len(new) {
		return true
	}

	oldUpdatedAt := make(map[string]string, len(old))
	for _, o := range old {
		oldUpdatedAt[o.ID] = o.Raw.String(rawComparisonFields[3]...)
	}
	for _, o := range new {
		stamp, known := oldUpdatedAt[o.ID]
		if !known || stamp != o.Raw.String(rawComparisonFields[3]...) {
			return true
		}
	}
	return false
}

// orderChanged compares the fixed canonical field set plus the raw sub-fields
// the classifier reads.
func orderChanged(a, b domain.Order) bool {
	if a.Status != b.Status ||
		a.TrackingNumber != b.TrackingNumber ||
		a.CustomerName != b.CustomerName ||
		a.CustomerPhone != b.CustomerPhone ||
		a.CustomerAddress != b.CustomerAddress ||
		a.COD != b.COD ||
		a.ShippingFee != b.ShippingFee {
		return true
	}

	for _, candidates := range rawComparisonFields {
		if a.Raw.String(candidates...) != b.Raw.String(candidates...) {
			return true
		}
	}
	return false
}
