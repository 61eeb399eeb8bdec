package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/services/inventory/internal/repository"
	"github.com/shestoi/orderflow/services/inventory/internal/repository/mocks"
)

func TestInventoryService_GetStock(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		productCode    string
		repoReturn     int
		repoError      error
		expectedResult int
		expectedError  bool
		errorContains  string
	}{
		{
			name:           "success: returns available stock",
			productCode:    "P1",
			repoReturn:     10,
			expectedResult: 10,
		},
		{
			name:           "success: returns zero stock",
			productCode:    "P2",
			repoReturn:     0,
			expectedResult: 0,
		},
		{
			name:           "ErrNotFound returns default 42",
			productCode:    "P3",
			repoError:      repository.ErrNotFound,
			expectedResult: 42,
		},
		{
			name:          "arbitrary error returns error",
			productCode:   "P4",
			repoError:     errors.New("storage unavailable"),
			expectedError: true,
			errorContains: "storage unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockRepo := mocks.NewInventoryRepository(t)
			service := NewInventoryService(zap.NewNop(), mockRepo, 42)

			mockRepo.On("GetStock", ctx, tt.productCode).Return(tt.repoReturn, tt.repoError).Once()

			// Act
			result, err := service.GetStock(ctx, tt.productCode)

			// Assert
			if tt.expectedError {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errorContains)
				require.Zero(t, result)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expectedResult, result)
		})
	}
}

func TestInventoryService_CheckStock(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		quantity    int
		available   int
		expected    bool
		expectError error
		expectRepo  bool
	}{
		{name: "enough stock", quantity: 2, available: 100, expected: true, expectRepo: true},
		{name: "exact stock", quantity: 5, available: 5, expected: true, expectRepo: true},
		{name: "insufficient stock", quantity: 6, available: 5, expected: false, expectRepo: true},
		{name: "zero stock", quantity: 1, available: 0, expected: false, expectRepo: true},
		{name: "invalid quantity", quantity: 0, expectError: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := mocks.NewInventoryRepository(t)
			service := NewInventoryService(zap.NewNop(), mockRepo, 42)

			if tt.expectRepo {
				mockRepo.On("GetStock", ctx, "P1").Return(tt.available, nil).Once()
			}

			ok, err := service.CheckStock(ctx, "P1", tt.quantity)
			if tt.expectError != nil {
				require.ErrorIs(t, err, tt.expectError)
				mockRepo.AssertNotCalled(t, "GetStock")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, ok)
		})
	}
}
