package service

import (
	"time"

	"shop-order-sync/internal/features/orders/domain"
)

// LifecycleStats are the lifecycle-bucketed totals consumed by reporting.
// Pending/unclassified orders are excluded from the three buckets but still
// counted in Total.
type LifecycleStats struct {
	Total     int `json:"total"`
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Returned  int `json:"returned"`
	Cancelled int `json:"cancelled"`
	Pending   int `json:"pending"`
}

// WarningReport groups sent orders by warning tier.
type WarningReport struct {
	Yellow []domain.Order `json:"yellow"`
	Red    []domain.Order `json:"red"`
}

// YellowCount returns the number of yellow-tier orders.
func (r WarningReport) YellowCount() int { return len(r.Yellow) }

// RedCount returns the number of red-tier orders.
func (r WarningReport) RedCount() int { return len(r.Red) }

// Stats aggregates lifecycle totals over a snapshot's order set.
func Stats(orders []domain.Order) LifecycleStats {
	stats := LifecycleStats{Total: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case domain.StatusSent:
			stats.Sent++
		case domain.StatusDelivered:
			stats.Delivered++
		case domain.StatusReturned:
			stats.Returned++
		case domain.StatusCancelled:
			stats.Cancelled++
		default:
			stats.Pending++
		}
	}
	return stats
}

// Warnings derives the warning tiers for every sent order at the given time.
// Counts shown anywhere upstream must come from this derivation, nothing else.
func Warnings(orders []domain.Order, now time.Time) WarningReport {
	var report WarningReport
	for _, o := range orders {
		switch domain.WarningFor(o, now) {
		case domain.WarningYellow:
			report.Yellow = append(report.Yellow, o)
		case domain.WarningRed:
			report.Red = append(report.Red, o)
		}
	}
	return report
}
