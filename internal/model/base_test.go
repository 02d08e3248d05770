package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"12","c":null}`), &v))
	assert.Equal(t, ID("12"), v.A)
	assert.Equal(t, v.A, v.B)
	assert.Equal(t, ID(""), v.C)
}

func TestAmountAcceptsDecimalStrings(t *testing.T) {
	var s BookingService
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"price":"499.00","discount_price":""}`), &s))
	assert.Equal(t, Amount(499), s.Price)
	assert.Equal(t, Amount(0), s.DiscountPrice)
	assert.Equal(t, 499.0, s.EffectivePrice())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"price":200,"discount_price":150}`), &s))
	assert.Equal(t, 150.0, s.EffectivePrice())

	assert.Error(t, json.Unmarshal([]byte(`{"price":"abc"}`), &s))
}

func TestFlagVariants(t *testing.T) {
	var c City
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Surat","is_popular":1}`), &c))
	assert.True(t, bool(c.IsPopular))
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Surat","is_popular":"0"}`), &c))
	assert.False(t, bool(c.IsPopular))
}

func TestCustomerPayloadNormalizesShapes(t *testing.T) {
	var wrapped CustomerPayload
	require.NoError(t, json.Unmarshal([]byte(`{"customer":{"id":7,"name":"Asha","mobile_number":"9876543210"},"token":"abc"}`), &wrapped))
	assert.Equal(t, ID("7"), wrapped.Customer.ID)
	assert.Equal(t, "abc", wrapped.Token)

	var flat CustomerPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"name":"Asha","mobile_number":"9876543210"}`), &flat))
	assert.Equal(t, wrapped.Customer, flat.Customer)
	assert.Empty(t, flat.Token)

	var access CustomerPayload
	require.NoError(t, json.Unmarshal([]byte(`{"customer":{"id":7},"access_token":"xyz"}`), &access))
	assert.Equal(t, "xyz", access.Token)
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{}.Normalize(12, 50)
	assert.Equal(t, Pagination{Page: 1, PerPage: 12}, p)

	p = Pagination{Page: 3, PerPage: 500}.Normalize(12, 50)
	assert.Equal(t, Pagination{Page: 3, PerPage: 50}, p)
}
