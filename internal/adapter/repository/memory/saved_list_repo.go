package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// savedListRepository implements domain.SavedListRepository
type savedListRepository struct {
	lists map[uuid.UUID]*domain.SavedShoppingList
	mutex sync.RWMutex
}

// NewSavedListRepository creates a new in-memory saved list repository
func NewSavedListRepository() domain.SavedListRepository {
	return &savedListRepository{lists: make(map[uuid.UUID]*domain.SavedShoppingList)}
}

// Create stores a new saved list. The name check of an active custom list
// and the insert happen under the same write lock.
func (r *savedListRepository) Create(ctx context.Context, list *domain.SavedShoppingList) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.lists[list.ID]; exists {
		return &domain.ConflictError{Resource: "saved shopping list", Field: "id", Value: list.ID.String()}
	}
	if err := r.checkCustomName(list); err != nil {
		return err
	}
	r.lists[list.ID] = list.Clone()
	return nil
}

// checkCustomName rejects an active custom list whose trimmed name is taken
// by another of the user's active custom lists. Callers hold the write lock.
func (r *savedListRepository) checkCustomName(list *domain.SavedShoppingList) error {
	if list.ListType != domain.ListTypeCustom || list.IsArchived {
		return nil
	}
	name := strings.TrimSpace(list.Name)
	for id, other := range r.lists {
		if id == list.ID || other.UserID != list.UserID || other.IsArchived || other.ListType != domain.ListTypeCustom {
			continue
		}
		if strings.TrimSpace(other.Name) == name {
			return &domain.ConflictError{Resource: "saved shopping list", Field: "name", Value: name}
		}
	}
	return nil
}

// GetByID retrieves one of the user's lists
func (r *savedListRepository) GetByID(ctx context.Context, userID string, listID uuid.UUID) (*domain.SavedShoppingList, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	list, ok := r.lists[listID]
	if !ok || list.UserID != userID {
		return nil, domain.NewNotFoundError("saved shopping list", listID.String())
	}
	return list.Clone(), nil
}

// FindByName retrieves the user's active list with the given trimmed name
func (r *savedListRepository) FindByName(ctx context.Context, userID, name string) (*domain.SavedShoppingList, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	name = strings.TrimSpace(name)
	for _, list := range r.lists {
		if list.UserID == userID && !list.IsArchived && strings.TrimSpace(list.Name) == name {
			return list.Clone(), nil
		}
	}
	return nil, domain.NewNotFoundError("saved shopping list", name)
}

// ListByUser retrieves the user's lists in no particular order
func (r *savedListRepository) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.SavedShoppingList, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	lists := []*domain.SavedShoppingList{}
	for _, list := range r.lists {
		if list.UserID != userID || (list.IsArchived && !includeArchived) {
			continue
		}
		lists = append(lists, list.Clone())
	}
	return lists, nil
}

// Update applies fn to a copy of the list under the write lock
func (r *savedListRepository) Update(ctx context.Context, userID string, listID uuid.UUID, fn func(list *domain.SavedShoppingList) error) (*domain.SavedShoppingList, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, ok := r.lists[listID]
	if !ok || current.UserID != userID {
		return nil, domain.NewNotFoundError("saved shopping list", listID.String())
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = current.ID
	working.UserID = current.UserID
	if err := r.checkCustomName(working); err != nil {
		return nil, err
	}

	r.lists[listID] = working
	return working.Clone(), nil
}
