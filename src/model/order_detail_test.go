package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailTotal(t *testing.T) {
	detail := OrderDetail{
		Ticker:   "GOOGL",
		Cantidad: 10,
		Precio:   decimal.RequireFromString("150.25"),
	}

	total, ok := detail.Total()
	require.True(t, ok)
	assert.True(t, total.Equal(decimal.RequireFromString("1502.50")), "got %s", total)
}

func TestDetailTotalMarketOrder(t *testing.T) {
	detail := OrderDetail{
		Ticker:         "AAPL",
		Cantidad:       5,
		Precio:         decimal.RequireFromString("99"),
		EsOrdenMercado: true,
	}

	total, ok := detail.Total()
	assert.False(t, ok)
	assert.True(t, total.IsZero())
}
