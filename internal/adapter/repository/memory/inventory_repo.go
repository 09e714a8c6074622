// Package memory provides in-process repositories guarded by read-write
// mutexes. They back the server when no database is configured and keep
// the same ownership and serialization rules as the postgres repositories.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// inventoryRepository implements domain.InventoryRepository
type inventoryRepository struct {
	items map[uuid.UUID]*domain.InventoryItem
	mutex sync.RWMutex
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() domain.InventoryRepository {
	return &inventoryRepository{items: make(map[uuid.UUID]*domain.InventoryItem)}
}

// ListByUser retrieves every item owned by the user, ordered by name
func (r *inventoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	items := []domain.InventoryItem{}
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, *cloneItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

// GetByID retrieves one of the user's items
func (r *inventoryRepository) GetByID(ctx context.Context, userID string, itemID uuid.UUID) (*domain.InventoryItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return nil, domain.NewNotFoundError("inventory item", itemID.String())
	}
	return cloneItem(item), nil
}

// Create stores a new item
func (r *inventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return &domain.ConflictError{Resource: "inventory item", Field: "id", Value: item.ID.String()}
	}
	r.items[item.ID] = cloneItem(item)
	return nil
}

// Update applies fn to a copy of the item under the write lock and stores
// the copy only when fn succeeds
func (r *inventoryRepository) Update(ctx context.Context, userID string, itemID uuid.UUID, fn func(item *domain.InventoryItem) error) (*domain.InventoryItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, ok := r.items[itemID]
	if !ok || current.UserID != userID {
		return nil, domain.NewNotFoundError("inventory item", itemID.String())
	}

	working := cloneItem(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = current.ID
	working.UserID = current.UserID

	r.items[itemID] = working
	return cloneItem(working), nil
}

func cloneItem(item *domain.InventoryItem) *domain.InventoryItem {
	out := *item
	out.PriceHistory = make([]domain.PriceObservation, len(item.PriceHistory))
	for i, obs := range item.PriceHistory {
		if obs.SaleEndDate != nil {
			end := *obs.SaleEndDate
			obs.SaleEndDate = &end
		}
		out.PriceHistory[i] = obs
	}
	if item.CurrentBestPrice != nil {
		best := *item.CurrentBestPrice
		out.CurrentBestPrice = &best
	}
	if item.PriceAlert != nil {
		alert := *item.PriceAlert
		if alert.LastAlertSent != nil {
			sent := *alert.LastAlertSent
			alert.LastAlertSent = &sent
		}
		out.PriceAlert = &alert
	}
	return &out
}
