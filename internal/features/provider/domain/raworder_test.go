package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawOrder_ValueDottedPath(t *testing.T) {
	raw := RawOrder{
		"customer": map[string]interface{}{
			"name": "Ana",
			"address": map[string]interface{}{
				"city": "Bogota",
			},
		},
	}

	v, ok := raw.Value("customer.name")
	assert.True(t, ok)
	assert.Equal(t, "Ana", v)

	v, ok = raw.Value("customer.address.city")
	assert.True(t, ok)
	assert.Equal(t, "Bogota", v)

	_, ok = raw.Value("customer.phone")
	assert.False(t, ok)

	_, ok = raw.Value("customer.name.first")
	assert.False(t, ok, "scalar in the middle of a path resolves to nothing")
}

func TestRawOrder_StringCoercion(t *testing.T) {
	raw := RawOrder{
		"id":      float64(12345),
		"fee":     float64(12.5),
		"blank":   "  ",
		"flagged": true,
	}

	assert.Equal(t, "12345", raw.String("id"), "whole floats render without decimal point")
	assert.Equal(t, "12.5", raw.String("fee"))
	assert.Equal(t, "true", raw.String("flagged"))
	assert.Equal(t, "", raw.String("blank"))
	assert.Equal(t, "12345", raw.String("missing", "blank", "id"), "probing skips empty values")
}

func TestRawOrder_Number(t *testing.T) {
	raw := RawOrder{
		"cod":    "199000",
		"fee":    float64(12000),
		"status": "shipped",
	}

	n, ok := raw.Number("cod")
	assert.True(t, ok)
	assert.Equal(t, 199000.0, n)

	n, ok = raw.Number("missing", "fee")
	assert.True(t, ok)
	assert.Equal(t, 12000.0, n)

	_, ok = raw.Number("status")
	assert.False(t, ok)
}

func TestRawOrder_OrderID(t *testing.T) {
	assert.Equal(t, "77", RawOrder{"id": float64(77)}.OrderID())
	assert.Equal(t, "ORD-1", RawOrder{"code": "ORD-1"}.OrderID())
	assert.Equal(t, "9", RawOrder{"id": float64(9), "code": "ORD-9"}.OrderID(), "provider id wins over code")
	assert.Equal(t, "", RawOrder{"name": "no identifier"}.OrderID())
	assert.Equal(t, "", RawOrder(nil).OrderID())
}

func TestNormalizeShopID(t *testing.T) {
	assert.Equal(t, "12", NormalizeShopID("12.0"))
	assert.Equal(t, "12", NormalizeShopID(" 12 "))
	assert.Equal(t, "shop-a", NormalizeShopID("Shop-A"))
}
