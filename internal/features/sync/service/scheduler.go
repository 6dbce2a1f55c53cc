package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives the engine's four triggers: cold start, foreground
// force-refresh, background poll and incremental fetch. Poll ticks arriving
// while a cycle is in flight are dropped, never queued.
type Scheduler struct {
	engine *Engine
	logger *zap.Logger

	mu       sync.Mutex
	stopPoll context.CancelFunc
}

// NewScheduler creates a Scheduler around the engine.
func NewScheduler(engine *Engine, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		engine: engine,
		logger: logger,
	}
}

// ColdStart loads the cache synchronously, then triggers a background full
// sync if the cache is empty or stale beyond the freshness window.
func (s *Scheduler) ColdStart(ctx context.Context) error {
	if err := s.engine.InitializeFromCache(ctx); err != nil {
		return err
	}

	fresh, err := s.engine.store.IsFresh(ctx, s.engine.cacheMaxAge)
	if err != nil {
		s.logger.Warn("Freshness check failed, forcing initial sync", zap.Error(err))
	}
	if s.engine.Snapshot().IsEmpty() || !fresh {
		go func() {
			if _, err := s.engine.FetchOrders(ctx, FetchOptions{Trigger: "cold_start"}); err != nil {
				s.logger.Warn("Initial sync failed", zap.Error(err))
			}
		}()
	}
	return nil
}

// ForceRefresh runs a user-initiated full sync, bypassing cache, freshness
// checks and the single-flight guard.
func (s *Scheduler) ForceRefresh(ctx context.Context) error {
	_, err := s.engine.FetchOrders(ctx, FetchOptions{Force: true, Trigger: "force"})
	return err
}

// StartPolling starts the background incremental poll at the given interval.
// Starting again restarts the loop with the new interval.
func (s *Scheduler) StartPolling(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopPoll != nil {
		s.stopPoll()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopPoll = cancel

	go s.pollLoop(ctx, interval)
	s.logger.Info("Background polling started", zap.Duration("interval", interval))
}

// StopPolling stops the background poll. The in-flight cycle, if any, runs
// to completion; only future ticks are cancelled.
func (s *Scheduler) StopPolling() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopPoll != nil {
		s.stopPoll()
		s.stopPoll = nil
		s.logger.Info("Background polling stopped")
	}
}

// pollLoop fires one incremental sync per tick until cancelled.
func (s *Scheduler) pollLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Each cycle runs on its own context: cancelling the loop stops
			// future ticks without aborting in-flight provider requests.
			_, err := s.engine.FetchOrders(context.Background(), FetchOptions{Incremental: true, Trigger: "poll"})
			if err != nil {
				if errors.Is(err, ErrSyncInFlight) {
					s.logger.Debug("Poll tick dropped, sync in flight")
					continue
				}
				s.logger.Warn("Background poll failed", zap.Error(err))
			}
		}
	}
}
