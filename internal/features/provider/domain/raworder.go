package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RawOrder is the opaque, schema-variable payload as returned by a provider.
// It is retained verbatim on the canonical order for traceability and for
// re-deriving fields the normalizer may have missed.
type RawOrder map[string]interface{}

// Value resolves a possibly dotted path ("customer.name") inside the payload.
func (r RawOrder) Value(path string) (interface{}, bool) {
	if r == nil {
		return nil, false
	}

	current := map[string]interface{}(r)
	parts := strings.Split(path, ".")

	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		nested, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = nested
	}
	return nil, false
}

// String probes the given paths in priority order and returns the first value
// that coerces to a non-empty string. Numbers are rendered without exponent.
func (r RawOrder) String(paths ...string) string {
	for _, path := range paths {
		v, ok := r.Value(path)
		if !ok || v == nil {
			continue
		}
		if s := coerceString(v); s != "" {
			return s
		}
	}
	return ""
}

// Number probes the given paths in priority order and returns the first value
// that coerces to a number.
func (r RawOrder) Number(paths ...string) (float64, bool) {
	for _, path := range paths {
		v, ok := r.Value(path)
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// OrderID derives the stable logical order id: the first non-empty of the
// provider order id and the provider code. Two raw records with the same
// derived id are the same logical order regardless of originating endpoint.
func (r RawOrder) OrderID() string {
	return r.String("id", "order_id", "code", "order_code")
}

// coerceString renders scalar JSON values as strings.
func coerceString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// FetchedOrder is one raw order plus its fetch provenance. Orders that only
// appear on the secondary returned-orders endpoint carry FromReturnedEndpoint,
// which feeds the lifecycle classifier.
type FetchedOrder struct {
	Raw                  RawOrder
	FromReturnedEndpoint bool
}

// Page is the normalized result of one provider page: the raw records plus
// whatever pagination metadata the envelope reported. A provider that reports
// no totals leaves TotalEntries and TotalPages at zero.
type Page struct {
	Orders       []RawOrder
	TotalEntries int
	TotalPages   int
}

// ShopResult is the per-shop outcome of a fetch: every raw order collected
// from the primary and returned endpoints, or the error that stopped the shop.
type ShopResult struct {
	Shop         Shop
	CredentialID string
	Orders       []FetchedOrder
	Err          error
}

// String implements fmt.Stringer for log output.
func (s ShopResult) String() string {
	if s.Err != nil {
		return fmt.Sprintf("shop %s: error: %v", s.Shop.ID, s.Err)
	}
	return fmt.Sprintf("shop %s: %d orders", s.Shop.ID, len(s.Orders))
}
