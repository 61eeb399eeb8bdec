package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/services/payment/internal/repository"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.GetByOrderID(ctx, "O1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	tx := repository.Transaction{
		OrderID:       "O1",
		Amount:        decimal.RequireFromString("19.98"),
		TransactionID: "tx_O1_1",
		Status:        contracts.PaymentSuccess,
	}
	require.NoError(t, repo.Save(ctx, tx))
	require.ErrorIs(t, repo.Save(ctx, tx), repository.ErrAlreadyExists)

	got, err := repo.GetByOrderID(ctx, "O1")
	require.NoError(t, err)
	require.Equal(t, "tx_O1_1", got.TransactionID)
}
