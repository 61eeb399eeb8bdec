package memory

import (
	"context"
	"sync"

	"github.com/shestoi/orderflow/services/inventory/internal/repository"
)

// MemoryRepository реализует InventoryRepository используя in-memory хранилище.
// Остатки задаются при старте (INVENTORY_SEED) и проверкой не меняются.
type MemoryRepository struct {
	mu    sync.RWMutex
	stock map[string]int
}

// NewMemoryRepository создаёт новый in-memory репозиторий с копией initialStock
func NewMemoryRepository(initialStock map[string]int) *MemoryRepository {
	stock := make(map[string]int, len(initialStock))
	for k, v := range initialStock {
		stock[k] = v
	}

	return &MemoryRepository{
		stock: stock,
	}
}

// GetStock получает количество товара из памяти
// Защищён мьютексом для безопасного доступа из разных горутин
func (r *MemoryRepository) GetStock(_ context.Context, productCode string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	available, exists := r.stock[productCode]
	if !exists {
		return 0, repository.ErrNotFound
	}
	return available, nil
}

// SetStock выставляет остаток товара
func (r *MemoryRepository) SetStock(_ context.Context, productCode string, available int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stock[productCode] = available
}
