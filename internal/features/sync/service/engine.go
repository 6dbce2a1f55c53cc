package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"shop-order-sync/internal/core/metrics"
	"shop-order-sync/internal/features/orders/domain"
	"shop-order-sync/internal/features/sync/ports"

	"go.uber.org/zap"
)

// ErrSyncInFlight is returned when a non-forced sync is requested while
// another cycle is running. The caller drops the trigger; it is not queued.
var ErrSyncInFlight = errors.New("sync already in flight")

// ErrOrderNotFound is returned when no order matches a tracking number.
var ErrOrderNotFound = errors.New("order not found")

// FetchOptions controls one sync cycle.
type FetchOptions struct {
	// Force bypasses cache, freshness checks and the single-flight guard.
	Force bool
	// UseCache short-circuits the cycle entirely when the persisted
	// snapshot is still within the freshness window.
	UseCache bool
	// Incremental skips persisting and notifying when the reconcile pass
	// found no changes.
	Incremental bool
	// Trigger labels the cycle for logs and metrics (cold_start, force,
	// poll, manual).
	Trigger string
}

// Engine owns the in-memory snapshot and exposes the public sync operations.
// The snapshot is only ever replaced wholesale under the single-flight guard,
// so readers need no more than the snapshot lock.
type Engine struct {
	store       ports.SnapshotStore
	fetcher     ports.Fetcher
	reconciler  *Reconciler
	broadcaster *Broadcaster
	cacheMaxAge time.Duration
	logger      *zap.Logger

	mu       sync.RWMutex
	snapshot domain.CacheSnapshot

	syncing atomic.Bool
}

// NewEngine creates an Engine around the given store and fetcher.
func NewEngine(store ports.SnapshotStore, fetcher ports.Fetcher, cacheMaxAge time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		store:       store,
		fetcher:     fetcher,
		reconciler:  NewReconciler(logger),
		broadcaster: NewBroadcaster(),
		cacheMaxAge: cacheMaxAge,
		logger:      logger,
	}
}

// InitializeFromCache loads the persisted snapshot into memory without any
// network access and announces data availability if it is non-empty.
func (e *Engine) InitializeFromCache(ctx context.Context) error {
	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.snapshot = *snapshot
	e.mu.Unlock()

	if !snapshot.IsEmpty() {
		metrics.OrdersCached.Set(float64(len(snapshot.Orders)))
		e.broadcaster.Publish(ChangeEvent{
			Kind:       ChangeCacheLoaded,
			OrderCount: len(snapshot.Orders),
		})
	}

	e.logger.Info("Snapshot loaded from cache",
		zap.Int("orders", len(snapshot.Orders)),
		zap.Int("shops", len(snapshot.ShopOrderSets)),
	)
	return nil
}

// FetchOrders is the primary entry point: fetch, reconcile, merge, persist,
// notify. Exactly one cycle runs at a time; a poll arriving mid-cycle is
// dropped, a forced refresh runs regardless and the last writer wins (merge
// monotonicity makes either outcome safe).
func (e *Engine) FetchOrders(ctx context.Context, opts FetchOptions) (*domain.SyncResult, error) {
	trigger := opts.Trigger
	if trigger == "" {
		trigger = "manual"
	}

	if opts.UseCache && !opts.Force {
		if fresh, _ := e.store.IsFresh(ctx, e.cacheMaxAge); fresh && !e.Snapshot().IsEmpty() {
			e.logger.Debug("Snapshot still fresh, skipping fetch")
			metrics.SyncCycles.WithLabelValues(trigger, "skipped").Inc()
			return nil, nil
		}
	}

	if opts.Force {
		e.syncing.Store(true)
	} else if !e.syncing.CompareAndSwap(false, true) {
		metrics.SyncCycles.WithLabelValues(trigger, "skipped").Inc()
		return nil, ErrSyncInFlight
	}
	defer e.syncing.Store(false)

	start := time.Now()

	outcome, err := e.fetcher.FetchAll(ctx)
	if err != nil {
		metrics.SyncCycles.WithLabelValues(trigger, "error").Inc()
		return nil, err
	}

	metrics.OrdersFetched.Add(float64(outcome.TotalOrders))
	if outcome.ErrorCount > 0 {
		for i := 0; i < outcome.ErrorCount; i++ {
			metrics.ShopFetchErrors.Inc()
		}
	}

	old := e.Snapshot()
	fetched := outcome.Orders()

	// Incremental cycles trust the provider updated-at stamps: matching
	// counts with no stamp movement means the full diff is skipped outright.
	if opts.Incremental && !e.reconciler.HasChanges(old.Orders, fetched) {
		e.logger.Debug("No timestamp movement, skipping diff and persist",
			zap.Int("orders", len(old.Orders)),
		)
		metrics.SyncCycles.WithLabelValues(trigger, "ok").Inc()
		metrics.SyncDuration.Observe(time.Since(start).Seconds())
		result := domain.SyncResult{Unchanged: old.Orders}
		return &result, nil
	}

	result := e.reconciler.Reconcile(old.Orders, fetched)

	if opts.Incremental && !result.HasChanges() {
		e.logger.Debug("No changes detected, skipping persist and notify",
			zap.Int("unchanged", len(result.Unchanged)),
		)
		metrics.SyncCycles.WithLabelValues(trigger, "ok").Inc()
		metrics.SyncDuration.Observe(time.Since(start).Seconds())
		return &result, nil
	}

	merged := e.reconciler.Merge(old.Orders, result)
	now := time.Now()
	snapshot := domain.CacheSnapshot{
		Orders:         merged,
		ShopOrderSets:  rebuildShopSets(old.ShopOrderSets, outcome.Sets, merged),
		LastFetchTime:  now,
		LastUpdateTime: now,
	}

	// A persistence failure degrades to a warning: the in-memory state is
	// updated regardless, the cost is a cache miss on the next cold start.
	if err := e.store.Save(ctx, &snapshot); err != nil {
		e.logger.Warn("Failed to persist snapshot", zap.Error(err))
	}

	e.mu.Lock()
	e.snapshot = snapshot
	e.mu.Unlock()

	metrics.OrdersCached.Set(float64(len(merged)))
	metrics.SyncCycles.WithLabelValues(trigger, "ok").Inc()
	metrics.SyncDuration.Observe(time.Since(start).Seconds())

	event := ChangeEvent{Kind: ChangeFullRefresh, OrderCount: len(merged)}
	if opts.Incremental {
		event.Kind = ChangeIncremental
		event.Result = &result
	}
	e.broadcaster.Publish(event)

	e.logger.Info("Sync cycle finished",
		zap.String("trigger", trigger),
		zap.Int("added", len(result.Added)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("unchanged", len(result.Unchanged)),
		zap.Int("removal_candidates", len(result.RemovedCandidates)),
		zap.Int("total", len(merged)),
		zap.Duration("duration", time.Since(start)),
	)

	return &result, nil
}

// Snapshot returns the current in-memory snapshot.
func (e *Engine) Snapshot() domain.CacheSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// SearchOrders matches the query case-insensitively against order id,
// tracking number, customer name, phone and address.
func (e *Engine) SearchOrders(query string) []domain.Order {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []domain.Order
	for _, o := range e.Snapshot().Orders {
		if strings.Contains(strings.ToLower(o.ID), query) ||
			strings.Contains(strings.ToLower(o.TrackingNumber), query) ||
			strings.Contains(strings.ToLower(o.CustomerName), query) ||
			strings.Contains(strings.ToLower(o.CustomerPhone), query) ||
			strings.Contains(strings.ToLower(o.CustomerAddress), query) {
			matches = append(matches, o)
		}
	}
	return matches
}

// GetOrderByTrackingNumber returns the order carrying the tracking number.
func (e *Engine) GetOrderByTrackingNumber(tn string) (*domain.Order, error) {
	tn = strings.TrimSpace(tn)
	for _, o := range e.Snapshot().Orders {
		if o.TrackingNumber == tn {
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}

// Subscribe registers an observer for change events.
func (e *Engine) Subscribe() (int, <-chan ChangeEvent) {
	return e.broadcaster.Subscribe()
}

// Unsubscribe removes an observer.
func (e *Engine) Unsubscribe(id int) {
	e.broadcaster.Unsubscribe(id)
}

// rebuildShopSets overlays the freshly fetched shop records onto the cached
// ones, then reassociates orders from the merged flat list. Sets survive only
// with orders or a fetch error, mirroring the load-time rebuild.
func rebuildShopSets(old, fetched []domain.ShopOrderSet, merged []domain.Order) []domain.ShopOrderSet {
	records := make(map[string]domain.ShopOrderSet, len(old)+len(fetched))
	var order []string

	for _, set := range old {
		if _, seen := records[set.ShopID]; !seen {
			order = append(order, set.ShopID)
		}
		records[set.ShopID] = set
	}
	for _, set := range fetched {
		if _, seen := records[set.ShopID]; !seen {
			order = append(order, set.ShopID)
		}
		records[set.ShopID] = set
	}

	byShop := make(map[string][]domain.Order)
	for _, o := range merged {
		byShop[o.ShopID] = append(byShop[o.ShopID], o)
	}

	var sets []domain.ShopOrderSet
	for _, id := range order {
		set := records[id]
		set.Orders = byShop[id]
		if len(set.Orders) == 0 && set.FetchError == "" {
			continue
		}
		sets = append(sets, set)
	}
	return sets
}
