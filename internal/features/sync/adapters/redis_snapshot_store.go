package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shop-order-sync/internal/core/cache"
	"shop-order-sync/internal/core/logger"
	"shop-order-sync/internal/features/orders/domain"

	"go.uber.org/zap"
)

// Storage keys: orders hashed by id, shops by normalized shop id, one
// metadata record. The triple is always replaced together.
const (
	ordersKey = "ordersync:orders"
	shopsKey  = "ordersync:shops"
	metaKey   = "ordersync:meta"

	metaLastFetch  = "last_fetch_time"
	metaLastUpdate = "last_update_time"
)

// storedShopSet is the persisted shape of a shop set. Its orders are not
// stored: on load the association is rebuilt from the flat order list, which
// keeps the two persisted shapes from drifting apart.
type storedShopSet struct {
	ShopID       string `json:"shop_id"`
	ShopName     string `json:"shop_name"`
	CredentialID string `json:"credential_id"`
	FetchError   string `json:"fetch_error,omitempty"`
}

// RedisSnapshotStore implements ports.SnapshotStore over the keyed cache.
type RedisSnapshotStore struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewRedisSnapshotStore creates a snapshot store over the given cache.
func NewRedisSnapshotStore(c cache.Cache) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		cache:  c,
		logger: logger.Named("snapshot-store"),
	}
}

// Save replaces the persisted triple inside one transaction scope.
func (s *RedisSnapshotStore) Save(ctx context.Context, snapshot *domain.CacheSnapshot) error {
	orderFields := make(map[string]string, len(snapshot.Orders))
	for _, order := range snapshot.Orders {
		data, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("failed to marshal order %s: %w", order.ID, err)
		}
		orderFields[order.ID] = string(data)
	}

	shopFields := make(map[string]string, len(snapshot.ShopOrderSets))
	for _, set := range snapshot.ShopOrderSets {
		data, err := json.Marshal(storedShopSet{
			ShopID:       set.ShopID,
			ShopName:     set.ShopName,
			CredentialID: set.CredentialID,
			FetchError:   set.FetchError,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal shop set %s: %w", set.ShopID, err)
		}
		shopFields[set.ShopID] = string(data)
	}

	metaFields := map[string]string{
		metaLastFetch:  snapshot.LastFetchTime.Format(time.RFC3339Nano),
		metaLastUpdate: snapshot.LastUpdateTime.Format(time.RFC3339Nano),
	}

	if err := s.cache.ReplaceAll(ctx, map[string]map[string]string{
		ordersKey: orderFields,
		shopsKey:  shopFields,
		metaKey:   metaFields,
	}); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	s.logger.Debug("Snapshot persisted",
		zap.Int("orders", len(orderFields)),
		zap.Int("shops", len(shopFields)),
	)
	return nil
}

// Load reads the persisted snapshot and rebuilds the shop→order association
// by filtering the flat order list on each order's embedded shop id.
func (s *RedisSnapshotStore) Load(ctx context.Context) (*domain.CacheSnapshot, error) {
	orderFields, err := s.cache.HGetAll(ctx, ordersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	snapshot := &domain.CacheSnapshot{}
	ordersByShop := make(map[string][]domain.Order)

	for id, data := range orderFields {
		var order domain.Order
		if err := json.Unmarshal([]byte(data), &order); err != nil {
			s.logger.Warn("Skipping undecodable cached order",
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		snapshot.Orders = append(snapshot.Orders, order)
		ordersByShop[order.ShopID] = append(ordersByShop[order.ShopID], order)
	}

	shopFields, err := s.cache.HGetAll(ctx, shopsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop sets: %w", err)
	}
	for id, data := range shopFields {
		var stored storedShopSet
		if err := json.Unmarshal([]byte(data), &stored); err != nil {
			s.logger.Warn("Skipping undecodable cached shop set",
				zap.String("shop", id),
				zap.Error(err),
			)
			continue
		}
		snapshot.ShopOrderSets = append(snapshot.ShopOrderSets, domain.ShopOrderSet{
			ShopID:       stored.ShopID,
			ShopName:     stored.ShopName,
			CredentialID: stored.CredentialID,
			FetchError:   stored.FetchError,
			Orders:       ordersByShop[stored.ShopID],
		})
	}

	snapshot.LastFetchTime, snapshot.LastUpdateTime = s.loadMeta(ctx)
	return snapshot, nil
}

// IsFresh reports whether the last fetch happened within maxAge.
func (s *RedisSnapshotStore) IsFresh(ctx context.Context, maxAge time.Duration) (bool, error) {
	lastFetch, _ := s.loadMeta(ctx)
	if lastFetch.IsZero() {
		return false, nil
	}
	return time.Since(lastFetch) <= maxAge, nil
}

// Clear removes the persisted triple.
func (s *RedisSnapshotStore) Clear(ctx context.Context) error {
	err := s.cache.ReplaceAll(ctx, map[string]map[string]string{
		ordersKey: {},
		shopsKey:  {},
		metaKey:   {},
	})
	if err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// loadMeta reads the sync timestamps, tolerating a missing record.
func (s *RedisSnapshotStore) loadMeta(ctx context.Context) (lastFetch, lastUpdate time.Time) {
	meta, err := s.cache.HGetAll(ctx, metaKey)
	if err != nil {
		s.logger.Warn("Failed to load sync metadata", zap.Error(err))
		return time.Time{}, time.Time{}
	}
	if v, ok := meta[metaLastFetch]; ok {
		lastFetch, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v, ok := meta[metaLastUpdate]; ok {
		lastUpdate, _ = time.Parse(time.RFC3339Nano, v)
	}
	return lastFetch, lastUpdate
}
