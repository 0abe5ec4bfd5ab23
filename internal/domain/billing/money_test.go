package billing_test

import (
	"encoding/json"
	"testing"

	"zapshift-backend/internal/domain/billing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits_RoundTripsWholeAmounts(t *testing.T) {
	for _, c := range []int64{1, 7, 99, 150, 500, 1234, 99999, 999999} {
		minor, err := billing.ToMinorUnits(decimal.NewFromInt(c))
		require.NoError(t, err)
		assert.Equal(t, c*100, minor)
		assert.Equal(t, float64(c), billing.ToMajorUnits(minor))
	}
}

func TestToMinorUnits_AcceptsCents(t *testing.T) {
	minor, err := billing.ToMinorUnits(decimal.RequireFromString("19.99"))
	require.NoError(t, err)
	assert.Equal(t, int64(1999), minor)
	assert.Equal(t, 19.99, billing.ToMajorUnits(minor))
}

func TestToMinorUnits_Rejects(t *testing.T) {
	cases := map[string]decimal.Decimal{
		"zero":             decimal.Zero,
		"negative":         decimal.NewFromInt(-5),
		"fractional cents": decimal.RequireFromString("10.005"),
		"too large":        decimal.NewFromInt(1_000_000),
	}
	for name, cost := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := billing.ToMinorUnits(cost)
			assert.ErrorIs(t, err, billing.ErrInvalidAmount)
		})
	}
}

func TestCheckoutRequest_CostFromNumberOrString(t *testing.T) {
	var fromNumber, fromString billing.CheckoutRequest
	require.NoError(t, json.Unmarshal([]byte(`{"cost": 500}`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`{"cost": "500"}`), &fromString))

	assert.True(t, fromNumber.Cost.Equal(decimal.NewFromInt(500)))
	assert.True(t, fromString.Cost.Equal(decimal.NewFromInt(500)))

	var bad billing.CheckoutRequest
	assert.Error(t, json.Unmarshal([]byte(`{"cost": "five hundred"}`), &bad))
}
