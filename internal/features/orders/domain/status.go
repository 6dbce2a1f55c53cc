package domain

import (
	"strconv"
	"strings"
)

// LifecycleStatus is the engine's canonical delivery-lifecycle bucket.
type LifecycleStatus string

const (
	// StatusSent indicates the order has been handed to the carrier.
	StatusSent LifecycleStatus = "sent"
	// StatusDelivered indicates the order reached the customer.
	StatusDelivered LifecycleStatus = "delivered"
	// StatusReturned indicates the order came back to the sender.
	StatusReturned LifecycleStatus = "returned"
	// StatusPending indicates no lifecycle predicate matched; such orders
	// are excluded from lifecycle-bucketed totals.
	StatusPending LifecycleStatus = "pending"
	// StatusCancelled indicates the order was cancelled before shipping.
	StatusCancelled LifecycleStatus = "cancelled"
)

// StatusKind tags the normalized shape of a provider status field.
type StatusKind int

const (
	// StatusAbsent means the field was missing or unusable.
	StatusAbsent StatusKind = iota
	// StatusNumber means the field carried a numeric code.
	StatusNumber
	// StatusText means the field carried a textual name.
	StatusText
)

// StatusValue is the tagged-variant intermediate every provider status shape
// (number, numeric string, text, or object) is normalized to before the
// classification predicates run, so classification only ever branches on one
// shape.
type StatusValue struct {
	Kind   StatusKind
	Number float64
	Text   string
}

// NormalizeStatusValue maps an arbitrary raw status field to a StatusValue.
// Objects are probed for their code/value/name members.
func NormalizeStatusValue(v interface{}) StatusValue {
	switch s := v.(type) {
	case nil:
		return StatusValue{Kind: StatusAbsent}
	case float64:
		return StatusValue{Kind: StatusNumber, Number: s}
	case int:
		return StatusValue{Kind: StatusNumber, Number: float64(s)}
	case string:
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return StatusValue{Kind: StatusAbsent}
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return StatusValue{Kind: StatusNumber, Number: n}
		}
		return StatusValue{Kind: StatusText, Text: strings.ToLower(trimmed)}
	case map[string]interface{}:
		for _, key := range []string{"code", "id", "value"} {
			if inner, ok := s[key]; ok {
				if nv := NormalizeStatusValue(inner); nv.Kind != StatusAbsent {
					return nv
				}
			}
		}
		if name, ok := s["name"]; ok {
			return NormalizeStatusValue(name)
		}
		return StatusValue{Kind: StatusAbsent}
	default:
		return StatusValue{Kind: StatusAbsent}
	}
}

// Equals reports whether the value carries the given numeric code.
func (s StatusValue) Equals(code float64) bool {
	return s.Kind == StatusNumber && s.Number == code
}

// Matches reports whether the value's text contains any of the given words.
func (s StatusValue) Matches(vocabulary ...string) bool {
	if s.Kind != StatusText {
		return false
	}
	for _, word := range vocabulary {
		if strings.Contains(s.Text, word) {
			return true
		}
	}
	return false
}

// Provider status codes observed across endpoints. Sub-status is the primary
// classification signal; status-code is the coarse fallback.
const (
	codeSent      = 1
	codeDelivered = 7
	codeReturned  = 8
)

// Classification vocabularies for providers that only report status text.
var (
	sentVocabulary      = []string{"shipped", "sent", "shipping", "in transit"}
	deliveredVocabulary = []string{"delivered", "received", "signed", "success"}
	returnedVocabulary  = []string{"returned", "return", "refused", "rejected"}
	cancelledVocabulary = []string{"cancelled", "canceled", "void"}
)

// StatusSignals are the normalized classification inputs of one order.
type StatusSignals struct {
	// SubStatus is the provider's fine-grained status code.
	SubStatus StatusValue
	// StatusCode is the provider's coarse status code.
	StatusCode StatusValue
	// StatusName is the provider's textual status, lowercased.
	StatusName string
	// FromReturnedEndpoint marks orders fetched via the secondary
	// returned-orders endpoint.
	FromReturnedEndpoint bool
}

// Classify derives the lifecycle bucket from the normalized signals. It is a
// pure function evaluated identically wherever a status is needed, never a
// stored provider field.
func Classify(s StatusSignals) LifecycleStatus {
	name := NormalizeStatusValue(s.StatusName)

	returned := s.SubStatus.Equals(codeReturned) ||
		s.StatusCode.Equals(codeReturned) ||
		s.FromReturnedEndpoint ||
		name.Matches(returnedVocabulary...) ||
		s.SubStatus.Matches(returnedVocabulary...)
	if returned {
		return StatusReturned
	}

	delivered := s.SubStatus.Equals(codeDelivered) ||
		s.StatusCode.Equals(codeDelivered) ||
		name.Matches(deliveredVocabulary...) ||
		s.SubStatus.Matches(deliveredVocabulary...)
	if delivered {
		return StatusDelivered
	}

	if s.SubStatus.Equals(codeSent) || name.Matches(sentVocabulary...) {
		return StatusSent
	}

	if name.Matches(cancelledVocabulary...) {
		return StatusCancelled
	}

	return StatusPending
}
