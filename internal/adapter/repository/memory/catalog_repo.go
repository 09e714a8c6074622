package memory

import (
	"context"
	"sync"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// CatalogRepository holds recipes, meal plans and currency preferences.
// It implements domain.RecipeRepository, domain.PreferenceRepository and
// domain.CatalogWriter.
type CatalogRepository struct {
	recipes   map[string]domain.Recipe
	mealPlans map[string]domain.MealPlan
	currency  map[string]domain.CurrencyPreferences
	mutex     sync.RWMutex
}

// NewCatalogRepository creates an empty catalog
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		recipes:   make(map[string]domain.Recipe),
		mealPlans: make(map[string]domain.MealPlan),
		currency:  make(map[string]domain.CurrencyPreferences),
	}
}

// PutRecipe stores or replaces a recipe
func (r *CatalogRepository) PutRecipe(recipe domain.Recipe) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	recipe.Ingredients = append([]domain.Ingredient(nil), recipe.Ingredients...)
	r.recipes[recipe.ID] = recipe
}

// PutMealPlan stores or replaces a meal plan
func (r *CatalogRepository) PutMealPlan(plan domain.MealPlan) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	plan.Meals = append([]domain.PlannedMeal(nil), plan.Meals...)
	r.mealPlans[plan.ID] = plan
}

// PutCurrency stores the user's currency preferences
func (r *CatalogRepository) PutCurrency(userID string, prefs domain.CurrencyPreferences) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.currency[userID] = prefs
}

// GetByID retrieves one of the user's recipes
func (r *CatalogRepository) GetByID(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	recipe, ok := r.recipes[recipeID]
	if !ok || recipe.UserID != userID {
		return nil, domain.NewNotFoundError("recipe", recipeID)
	}
	recipe.Ingredients = append([]domain.Ingredient(nil), recipe.Ingredients...)
	return &recipe, nil
}

// MealPlans exposes the meal plan lookup, whose method name collides with
// the recipe lookup on CatalogRepository
func (r *CatalogRepository) MealPlans() domain.MealPlanRepository {
	return mealPlanLookup{catalog: r}
}

type mealPlanLookup struct {
	catalog *CatalogRepository
}

// GetByID retrieves one of the user's meal plans
func (m mealPlanLookup) GetByID(ctx context.Context, userID, mealPlanID string) (*domain.MealPlan, error) {
	m.catalog.mutex.RLock()
	defer m.catalog.mutex.RUnlock()

	plan, ok := m.catalog.mealPlans[mealPlanID]
	if !ok || plan.UserID != userID {
		return nil, domain.NewNotFoundError("meal plan", mealPlanID)
	}
	plan.Meals = append([]domain.PlannedMeal(nil), plan.Meals...)
	return &plan, nil
}

// GetCurrency returns the user's currency preferences
func (r *CatalogRepository) GetCurrency(ctx context.Context, userID string) (*domain.CurrencyPreferences, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	prefs, ok := r.currency[userID]
	if !ok {
		return nil, domain.NewNotFoundError("currency preferences", userID)
	}
	return &prefs, nil
}

// SaveRecipe implements domain.CatalogWriter
func (r *CatalogRepository) SaveRecipe(ctx context.Context, recipe *domain.Recipe) error {
	r.PutRecipe(*recipe)
	return nil
}

// SaveMealPlan implements domain.CatalogWriter
func (r *CatalogRepository) SaveMealPlan(ctx context.Context, plan *domain.MealPlan) error {
	r.PutMealPlan(*plan)
	return nil
}

// SaveCurrency implements domain.CatalogWriter
func (r *CatalogRepository) SaveCurrency(ctx context.Context, userID string, prefs domain.CurrencyPreferences) error {
	r.PutCurrency(userID, prefs)
	return nil
}
