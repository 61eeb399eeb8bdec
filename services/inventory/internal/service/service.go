package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shestoi/orderflow/services/inventory/internal/repository"
)

// ErrInvalidQuantity возвращается для quantity < 1
var ErrInvalidQuantity = errors.New("quantity must be >= 1")

// InventoryService содержит бизнес-логику работы с инвентарём
// Зависит от интерфейса InventoryRepository, а не от конкретной реализации
type InventoryService struct {
	logger       *zap.Logger
	repo         repository.InventoryRepository
	defaultStock int
}

// NewInventoryService создаёт новый экземпляр InventoryService.
// defaultStock отдаётся для товаров, которых нет в хранилище.
func NewInventoryService(logger *zap.Logger, repo repository.InventoryRepository, defaultStock int) *InventoryService {
	return &InventoryService{
		logger:       logger,
		repo:         repo,
		defaultStock: defaultStock,
	}
}

// GetStock возвращает количество товара на складе
// Для неизвестного товара возвращается defaultStock
func (s *InventoryService) GetStock(ctx context.Context, productCode string) (int, error) {
	available, err := s.repo.GetStock(ctx, productCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("Product not found, using default stock",
				zap.String("product_code", productCode),
				zap.Int("default_stock", s.defaultStock))
			return s.defaultStock, nil
		}
		s.logger.Error("GetStock failed", zap.String("product_code", productCode), zap.Error(err))
		return 0, fmt.Errorf("get stock for %s: %w", productCode, err)
	}

	return available, nil
}

// CheckStock сообщает, доступно ли quantity единиц товара. Остаток не меняется.
func (s *InventoryService) CheckStock(ctx context.Context, productCode string, quantity int) (bool, error) {
	if quantity < 1 {
		return false, ErrInvalidQuantity
	}

	available, err := s.GetStock(ctx, productCode)
	if err != nil {
		return false, err
	}

	ok := available >= quantity
	s.logger.Info("Stock checked",
		zap.String("product_code", productCode),
		zap.Int("quantity", quantity),
		zap.Int("available", available),
		zap.Bool("in_stock", ok))
	return ok, nil
}
