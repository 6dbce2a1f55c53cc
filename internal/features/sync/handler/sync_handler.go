package handler

import (
	"errors"
	"net/http"
	"time"

	"shop-order-sync/internal/core/cache"
	"shop-order-sync/internal/core/logger"
	"shop-order-sync/internal/features/orders/domain"
	ordersservice "shop-order-sync/internal/features/orders/service"
	providerservice "shop-order-sync/internal/features/provider/service"
	"shop-order-sync/internal/features/sync/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SyncHandler handles HTTP requests for the sync engine.
type SyncHandler struct {
	engine    *service.Engine
	scheduler *service.Scheduler
	cache     cache.Cache
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(engine *service.Engine, scheduler *service.Scheduler, c cache.Cache) *SyncHandler {
	return &SyncHandler{
		engine:    engine,
		scheduler: scheduler,
		cache:     c,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// syncRequest is the body of POST /sync.
type syncRequest struct {
	Force       bool `json:"force"`
	UseCache    bool `json:"use_cache"`
	Incremental bool `json:"incremental"`
}

// syncResponse reports the outcome of a triggered cycle.
type syncResponse struct {
	Added             int `json:"added"`
	Updated           int `json:"updated"`
	Unchanged         int `json:"unchanged"`
	RemovedCandidates int `json:"removed_candidates"`
	Total             int `json:"total"`
}

// rayID extracts the request id injected by the requestid middleware.
func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return "unknown"
}

// TriggerSync godoc
// @Summary Trigger a synchronization cycle
// @Description Runs one fetch-reconcile-merge-persist cycle. A non-forced request is rejected while another cycle is in flight.
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} syncResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sync [post]
func (h *SyncHandler) TriggerSync(c *fiber.Ctx) error {
	var req syncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Message: "invalid request body",
				RayID:   rayID(c),
			})
		}
	}

	result, err := h.engine.FetchOrders(c.UserContext(), service.FetchOptions{
		Force:       req.Force,
		UseCache:    req.UseCache,
		Incremental: req.Incremental,
		Trigger:     "manual",
	})
	if err != nil {
		logger.Get().Error("Sync trigger failed",
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)

		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrSyncInFlight):
			status = http.StatusConflict
		case errors.Is(err, providerservice.ErrNoCredentials):
			status = http.StatusBadRequest
		}

		return c.Status(status).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	resp := syncResponse{Total: len(h.engine.Snapshot().Orders)}
	if result != nil {
		resp.Added = len(result.Added)
		resp.Updated = len(result.Updated)
		resp.Unchanged = len(result.Unchanged)
		resp.RemovedCandidates = len(result.RemovedCandidates)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// ForceRefresh godoc
// @Summary Force a full refresh
// @Description Runs a full sync bypassing cache freshness and the single-flight guard. Last writer wins against a concurrent cycle.
// @Tags sync
// @Produce json
// @Success 200 {object} syncResponse
// @Failure 400 {object} ErrorResponse
// @Router /sync/refresh [post]
func (h *SyncHandler) ForceRefresh(c *fiber.Ctx) error {
	if err := h.scheduler.ForceRefresh(c.UserContext()); err != nil {
		logger.Get().Error("Force refresh failed",
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)

		status := http.StatusInternalServerError
		if errors.Is(err, providerservice.ErrNoCredentials) {
			status = http.StatusBadRequest
		}
		return c.Status(status).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}
	return c.Status(http.StatusOK).JSON(syncResponse{
		Total: len(h.engine.Snapshot().Orders),
	})
}

// GetOrders godoc
// @Summary Current order snapshot
// @Description Returns the authoritative order set, the per-shop grouping and the sync timestamps.
// @Tags orders
// @Produce json
// @Success 200 {object} domain.CacheSnapshot
// @Router /orders [get]
func (h *SyncHandler) GetOrders(c *fiber.Ctx) error {
	return c.JSON(h.engine.Snapshot())
}

// SearchOrders godoc
// @Summary Search orders
// @Description Matches the query against order id, tracking number, customer name, phone and address.
// @Tags orders
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} domain.Order
// @Failure 400 {object} ErrorResponse
// @Router /orders/search [get]
func (h *SyncHandler) SearchOrders(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "query parameter q is required",
			RayID:   rayID(c),
		})
	}

	orders := h.engine.SearchOrders(query)
	if orders == nil {
		orders = []domain.Order{}
	}
	return c.JSON(orders)
}

// GetOrderByTrackingNumber godoc
// @Summary Look up one order by tracking number
// @Tags orders
// @Produce json
// @Param number path string true "Tracking number"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/tracking/{number} [get]
func (h *SyncHandler) GetOrderByTrackingNumber(c *fiber.Ctx) error {
	order, err := h.engine.GetOrderByTrackingNumber(c.Params("number"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Message: "order not found",
				RayID:   rayID(c),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}
	return c.JSON(order)
}

// GetStats godoc
// @Summary Lifecycle bucket totals
// @Tags reports
// @Produce json
// @Success 200 {object} ordersservice.LifecycleStats
// @Router /orders/stats [get]
func (h *SyncHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(ordersservice.Stats(h.engine.Snapshot().Orders))
}

// GetWarnings godoc
// @Summary Delivery warning tiers for sent orders
// @Tags reports
// @Produce json
// @Success 200 {object} ordersservice.WarningReport
// @Router /orders/warnings [get]
func (h *SyncHandler) GetWarnings(c *fiber.Ctx) error {
	report := ordersservice.Warnings(h.engine.Snapshot().Orders, time.Now())
	return c.JSON(fiber.Map{
		"yellow_count": report.YellowCount(),
		"red_count":    report.RedCount(),
		"yellow":       report.Yellow,
		"red":          report.Red,
	})
}

// Health godoc
// @Summary Engine and cache health
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse
// @Router /health [get]
func (h *SyncHandler) Health(c *fiber.Ctx) error {
	if err := h.cache.Ping(c.UserContext()); err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{
			Message: "cache unreachable",
			RayID:   rayID(c),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
