package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// recipeRepository implements domain.RecipeRepository
type recipeRepository struct {
	db *DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *DB) domain.RecipeRepository {
	return &recipeRepository{db: db}
}

// GetByID retrieves one of the user's recipes
func (r *recipeRepository) GetByID(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	query := `
		SELECT id, user_id, title, ingredients
		FROM recipes
		WHERE id = $1 AND user_id = $2
	`

	var recipe domain.Recipe
	var ingredients []byte
	err := r.db.QueryRowContext(ctx, query, recipeID, userID).Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&ingredients,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("recipe", recipeID)
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to decode recipe ingredients: %w", err)
	}
	return &recipe, nil
}

// mealPlanRepository implements domain.MealPlanRepository
type mealPlanRepository struct {
	db *DB
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *DB) domain.MealPlanRepository {
	return &mealPlanRepository{db: db}
}

// GetByID retrieves one of the user's meal plans
func (r *mealPlanRepository) GetByID(ctx context.Context, userID, mealPlanID string) (*domain.MealPlan, error) {
	query := `
		SELECT id, user_id, name, meals
		FROM meal_plans
		WHERE id = $1 AND user_id = $2
	`

	var plan domain.MealPlan
	var meals []byte
	err := r.db.QueryRowContext(ctx, query, mealPlanID, userID).Scan(
		&plan.ID,
		&plan.UserID,
		&plan.Name,
		&meals,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("meal plan", mealPlanID)
		}
		return nil, fmt.Errorf("failed to get meal plan by ID: %w", err)
	}

	if err := json.Unmarshal(meals, &plan.Meals); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan meals: %w", err)
	}
	return &plan, nil
}

// preferenceRepository implements domain.PreferenceRepository
type preferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *DB) domain.PreferenceRepository {
	return &preferenceRepository{db: db}
}

// GetCurrency returns the user's stored currency preferences
func (r *preferenceRepository) GetCurrency(ctx context.Context, userID string) (*domain.CurrencyPreferences, error) {
	query := `
		SELECT currency, currency_symbol, currency_position, decimal_places
		FROM user_preferences
		WHERE user_id = $1
	`

	var prefs domain.CurrencyPreferences
	var position string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&prefs.Currency,
		&prefs.CurrencySymbol,
		&position,
		&prefs.DecimalPlaces,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("currency preferences", userID)
		}
		return nil, fmt.Errorf("failed to get currency preferences: %w", err)
	}
	prefs.Position = domain.CurrencyPosition(position)
	return &prefs, nil
}

// catalogWriter implements domain.CatalogWriter
type catalogWriter struct {
	db *DB
}

// NewCatalogWriter creates a writer for recipes, meal plans and preferences
func NewCatalogWriter(db *DB) domain.CatalogWriter {
	return &catalogWriter{db: db}
}

// SaveRecipe stores or replaces a recipe
func (w *catalogWriter) SaveRecipe(ctx context.Context, recipe *domain.Recipe) error {
	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to encode recipe ingredients: %w", err)
	}

	query := `
		INSERT INTO recipes (id, user_id, title, ingredients)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, id) DO UPDATE
		SET title = EXCLUDED.title, ingredients = EXCLUDED.ingredients
	`
	if _, err := w.db.ExecContext(ctx, query, recipe.ID, recipe.UserID, recipe.Title, ingredients); err != nil {
		return fmt.Errorf("failed to upsert recipe: %w", err)
	}
	return nil
}

// SaveMealPlan stores or replaces a meal plan
func (w *catalogWriter) SaveMealPlan(ctx context.Context, plan *domain.MealPlan) error {
	meals, err := json.Marshal(plan.Meals)
	if err != nil {
		return fmt.Errorf("failed to encode meal plan meals: %w", err)
	}

	query := `
		INSERT INTO meal_plans (id, user_id, name, meals)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, id) DO UPDATE
		SET name = EXCLUDED.name, meals = EXCLUDED.meals
	`
	if _, err := w.db.ExecContext(ctx, query, plan.ID, plan.UserID, plan.Name, meals); err != nil {
		return fmt.Errorf("failed to upsert meal plan: %w", err)
	}
	return nil
}

// SaveCurrency stores or replaces the user's currency preferences
func (w *catalogWriter) SaveCurrency(ctx context.Context, userID string, prefs domain.CurrencyPreferences) error {
	query := `
		INSERT INTO user_preferences (user_id, currency, currency_symbol, currency_position, decimal_places)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET currency = EXCLUDED.currency, currency_symbol = EXCLUDED.currency_symbol,
			currency_position = EXCLUDED.currency_position, decimal_places = EXCLUDED.decimal_places
	`
	_, err := w.db.ExecContext(ctx, query,
		userID,
		prefs.Currency,
		prefs.CurrencySymbol,
		string(prefs.Position),
		prefs.DecimalPlaces,
	)
	if err != nil {
		return fmt.Errorf("failed to save currency preferences: %w", err)
	}
	return nil
}
