package templates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shestoi/orderflow/platform/contracts"
)

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	order := contracts.Order{OrderID: "o-1", Price: decimal.RequireFromString("99.5")}

	text, err := r.RenderOrderCreated(order)
	require.NoError(t, err)
	require.Equal(t, "Your order with ID o-1 with 99.5 has been processed.", text)

	text, err = r.RenderOrderCancelled(order)
	require.NoError(t, err)
	require.Equal(t, "Your order with ID o-1 has been cancelled.", text)
}
