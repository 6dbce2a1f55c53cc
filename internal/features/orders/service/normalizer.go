package service

import (
	"time"

	"shop-order-sync/internal/features/orders/domain"
	providerdomain "shop-order-sync/internal/features/provider/domain"

	"go.uber.org/zap"
)

// Field candidate lists, probed first-non-empty-wins, because providers are
// inconsistent about field naming. The id list mirrors RawOrder.OrderID.
var (
	trackingFields = []string{"tracking_number", "tracking_code", "waybill", "shipment_code", "tracking.number"}
	sendDateFields = []string{"send_date", "sent_at", "shipped_at", "ship_date", "dispatch_date"}
	nameFields     = []string{"customer_name", "receiver_name", "to_name", "customer.name", "receiver.name"}
	phoneFields    = []string{"customer_phone", "receiver_phone", "to_phone", "customer.phone", "receiver.phone"}
	addressFields  = []string{"customer_address", "receiver_address", "to_address", "customer.address", "receiver.address"}
	codFields      = []string{"cod", "cod_amount", "collection_amount", "money_collection"}
	feeFields      = []string{"shipping_fee", "ship_fee", "total_fee", "carrier_fee"}

	subStatusFields  = []string{"sub_status", "substatus", "sub_state"}
	statusCodeFields = []string{"status_code", "status_id"}
	statusNameFields = []string{"status_name", "status", "state"}
)

// sendDateLayouts are tried in order when parsing provider timestamps.
var sendDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer maps heterogeneous raw provider records into canonical orders.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize maps one fetched record to the canonical Order. The raw payload
// is kept on the order for auditability. Records without a derivable id are
// rejected (false): an order that cannot be identified cannot be reconciled.
func (n *Normalizer) Normalize(fetched providerdomain.FetchedOrder, shopID string) (domain.Order, bool) {
	raw := fetched.Raw

	id := raw.OrderID()
	if id == "" {
		n.logger.Warn("Dropping record without a derivable order id",
			zap.String("shop", shopID),
		)
		return domain.Order{}, false
	}

	order := domain.Order{
		ID:              id,
		TrackingNumber:  raw.String(trackingFields...),
		SendDate:        n.parseSendDate(raw),
		CustomerName:    raw.String(nameFields...),
		CustomerPhone:   raw.String(phoneFields...),
		CustomerAddress: raw.String(addressFields...),
		Raw:             raw,
		ShopID:          shopID,
	}

	if cod, ok := raw.Number(codFields...); ok {
		order.COD = cod
	}
	if fee, ok := raw.Number(feeFields...); ok {
		order.ShippingFee = fee
	}

	order.Status = domain.Classify(Signals(raw, fetched.FromReturnedEndpoint))

	return order, true
}

// NormalizeShop maps one raw shop result into a canonical ShopOrderSet.
func (n *Normalizer) NormalizeShop(result providerdomain.ShopResult) domain.ShopOrderSet {
	set := domain.ShopOrderSet{
		ShopID:       result.Shop.ID,
		ShopName:     result.Shop.Name,
		CredentialID: result.CredentialID,
	}
	if result.Err != nil {
		set.FetchError = result.Err.Error()
	}

	for _, fetched := range result.Orders {
		if order, ok := n.Normalize(fetched, set.ShopID); ok {
			set.Orders = append(set.Orders, order)
		}
	}
	return set
}

// Signals extracts the normalized classification inputs from a raw payload.
// Exposed so the reconciler compares the same sub-fields the classifier reads.
func Signals(raw providerdomain.RawOrder, fromReturned bool) domain.StatusSignals {
	return domain.StatusSignals{
		SubStatus:            statusValueOf(raw, subStatusFields),
		StatusCode:           statusValueOf(raw, statusCodeFields),
		StatusName:           raw.String(statusNameFields...),
		FromReturnedEndpoint: fromReturned,
	}
}

// statusValueOf normalizes the first present candidate field.
func statusValueOf(raw providerdomain.RawOrder, paths []string) domain.StatusValue {
	for _, path := range paths {
		if v, ok := raw.Value(path); ok {
			if nv := domain.NormalizeStatusValue(v); nv.Kind != domain.StatusAbsent {
				return nv
			}
		}
	}
	return domain.StatusValue{Kind: domain.StatusAbsent}
}

// parseSendDate tries each candidate field against each known layout.
// Unparsable dates yield the zero time; the warning classifier treats that
// as worst case rather than dropping the order.
func (n *Normalizer) parseSendDate(raw providerdomain.RawOrder) time.Time {
	value := raw.String(sendDateFields...)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range sendDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	n.logger.Warn("Failed to parse send date", zap.String("date", value))
	return time.Time{}
}
