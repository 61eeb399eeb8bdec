package memory

import (
	"context"
	"sync"

	"github.com/shestoi/orderflow/services/payment/internal/repository"
)

// MemoryRepository реализует PaymentRepository используя in-memory хранилище
type MemoryRepository struct {
	mu           sync.RWMutex
	transactions map[string]repository.Transaction // ключ = orderID
}

// NewMemoryRepository создаёт новый in-memory репозиторий
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		transactions: make(map[string]repository.Transaction),
	}
}

// GetByOrderID получает транзакцию по orderID из памяти
// Защищён мьютексом для безопасного доступа из разных горутин
func (r *MemoryRepository) GetByOrderID(_ context.Context, orderID string) (repository.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, exists := r.transactions[orderID]
	if !exists {
		return repository.Transaction{}, repository.ErrNotFound
	}

	return tx, nil
}

// Save сохраняет транзакцию в памяти, если для заказа её ещё нет
func (r *MemoryRepository) Save(_ context.Context, tx repository.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[tx.OrderID]; exists {
		return repository.ErrAlreadyExists
	}
	r.transactions[tx.OrderID] = tx
	return nil
}
