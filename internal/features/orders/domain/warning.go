package domain

import "time"

// WarningTier is the day-elapsed severity bucket applied to sent orders.
type WarningTier string

const (
	// WarningNone means the order is within the expected delivery window.
	WarningNone WarningTier = "none"
	// WarningYellow means the order has been in transit 6 to 14 days.
	WarningYellow WarningTier = "yellow"
	// WarningRed means the order has been in transit over 14 days, or its
	// send date is unknown and it is treated as worst case.
	WarningRed WarningTier = "red"
)

// Warning thresholds in elapsed days since the send date. This table is the
// single source of truth; every warning count a consumer shows must be
// derivable purely from it.
const (
	warningYellowAfterDays = 6
	warningRedAfterDays    = 15
)

// WarningFor derives the warning tier of an order at the given time.
// Tiering applies only to orders currently classified sent; a sent order
// with a missing or unparsable send date is never silently dropped, it
// tiers red.
func WarningFor(o Order, now time.Time) WarningTier {
	if o.Status != StatusSent {
		return WarningNone
	}
	if o.SendDate.IsZero() {
		return WarningRed
	}

	days := int(now.Sub(o.SendDate).Hours() / 24)
	switch {
	case days >= warningRedAfterDays:
		return WarningRed
	case days >= warningYellowAfterDays:
		return WarningYellow
	default:
		return WarningNone
	}
}
