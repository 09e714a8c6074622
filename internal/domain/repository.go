package domain

import (
	"context"

	"github.com/google/uuid"
)

// InventoryRepository defines persistence operations for inventory items
type InventoryRepository interface {
	// ListByUser retrieves every inventory item owned by the user, with price history
	ListByUser(ctx context.Context, userID string) ([]InventoryItem, error)

	// GetByID retrieves one item. Returns NotFoundError when the item
	// does not exist or belongs to another user.
	GetByID(ctx context.Context, userID string, itemID uuid.UUID) (*InventoryItem, error)

	// Create stores a new inventory item
	Create(ctx context.Context, item *InventoryItem) error

	// Update loads the item, applies fn and persists the result.
	// Concurrent updates of the same item are serialized; fn sees the
	// latest committed state. An error from fn aborts without writing.
	Update(ctx context.Context, userID string, itemID uuid.UUID, fn func(item *InventoryItem) error) (*InventoryItem, error)
}

// SavedListRepository defines persistence operations for saved shopping lists
type SavedListRepository interface {
	// Create stores a new saved list. An active custom list may not share
	// its trimmed name with another of the user's active custom lists;
	// Create and Update return ConflictError when it would.
	Create(ctx context.Context, list *SavedShoppingList) error

	// GetByID retrieves one list. Returns NotFoundError when the list
	// does not exist or belongs to another user.
	GetByID(ctx context.Context, userID string, listID uuid.UUID) (*SavedShoppingList, error)

	// FindByName retrieves the user's non-archived list with exactly this name
	FindByName(ctx context.Context, userID, name string) (*SavedShoppingList, error)

	// ListByUser retrieves the user's lists, archived ones only when asked
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*SavedShoppingList, error)

	// Update loads the list, applies fn and persists the result.
	// Concurrent updates of the same list are serialized.
	Update(ctx context.Context, userID string, listID uuid.UUID, fn func(list *SavedShoppingList) error) (*SavedShoppingList, error)
}

// RecipeRepository provides read access to externally owned recipes
type RecipeRepository interface {
	GetByID(ctx context.Context, userID, recipeID string) (*Recipe, error)
}

// MealPlanRepository provides read access to externally owned meal plans
type MealPlanRepository interface {
	GetByID(ctx context.Context, userID, mealPlanID string) (*MealPlan, error)
}

// PreferenceRepository provides the user's currency preferences
type PreferenceRepository interface {
	// GetCurrency returns NotFoundError when the user stored no preference
	GetCurrency(ctx context.Context, userID string) (*CurrencyPreferences, error)
}

// CatalogWriter stores recipes, meal plans and preferences. The pricing
// core never writes them; the demo seeder and integration setup do.
type CatalogWriter interface {
	SaveRecipe(ctx context.Context, recipe *Recipe) error
	SaveMealPlan(ctx context.Context, plan *MealPlan) error
	SaveCurrency(ctx context.Context, userID string, prefs CurrencyPreferences) error
}
