package aggregator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

const (
	defaultManualLabel = "Manual"
	defaultContextName = "Shopping List"
)

// AggregatorService resolves shopping sources and aggregates them into a list
type AggregatorService struct {
	RecipeRepo    domain.RecipeRepository
	MealPlanRepo  domain.MealPlanRepository
	InventoryRepo domain.InventoryRepository
	Logger        *zap.Logger
}

// NewAggregatorService creates a new AggregatorService instance
func NewAggregatorService(
	recipeRepo domain.RecipeRepository,
	mealPlanRepo domain.MealPlanRepository,
	inventoryRepo domain.InventoryRepository,
	logger *zap.Logger,
) *AggregatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregatorService{
		RecipeRepo:    recipeRepo,
		MealPlanRepo:  mealPlanRepo,
		InventoryRepo: inventoryRepo,
		Logger:        logger.Named("aggregator"),
	}
}

// GenerateResult is an aggregated list together with the context it was built from
type GenerateResult struct {
	*Result
	ListType         domain.ListType `json:"listType"`
	ContextName      string          `json:"contextName"`
	SourceRecipeIDs  []string        `json:"sourceRecipeIds"`
	SourceMealPlanID string          `json:"sourceMealPlanId,omitempty"`
}

// Generate builds a shopping list for the user from the given sources.
// Sources that cannot be resolved are skipped and reported; the others
// are still aggregated.
func (s *AggregatorService) Generate(ctx context.Context, userID string, sources []domain.ShoppingSource, opts Options) (*GenerateResult, error) {
	if len(sources) == 0 {
		return nil, domain.NewValidationError("sources", "at least one source is required")
	}

	res := &resolution{}
	for _, source := range sources {
		if err := s.resolve(ctx, userID, source, res); err != nil {
			return nil, err
		}
	}

	var inventory []domain.InventoryItem
	if !opts.SkipInventoryCheck {
		var err error
		inventory, err = s.InventoryRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory: %w", err)
		}
	}

	result := Aggregate(res.ingredients, inventory, opts)
	result.Skipped = append(res.skipped, result.Skipped...)

	s.Logger.Info("shopping list generated",
		zap.String("user_id", userID),
		zap.Int("sources", len(sources)),
		zap.Int("items", result.Summary.TotalItems),
		zap.Int("skipped", len(result.Skipped)),
	)

	return &GenerateResult{
		Result:           result,
		ListType:         domain.ListTypeFor(sources),
		ContextName:      contextName(sources, res),
		SourceRecipeIDs:  res.recipeIDs,
		SourceMealPlanID: res.mealPlanID,
	}, nil
}

// resolution accumulates the resolved ingredients of every source
type resolution struct {
	ingredients  []SourceIngredients
	skipped      []SkippedSource
	recipeIDs    []string
	recipeTitles []string
	mealPlanID   string
	mealPlanName string
	manualLabel  string
}

func (s *AggregatorService) resolve(ctx context.Context, userID string, source domain.ShoppingSource, res *resolution) error {
	switch src := source.(type) {
	case domain.ManualSource:
		label := strings.TrimSpace(src.Label)
		if label == "" {
			label = defaultManualLabel
		}
		if res.manualLabel == "" {
			res.manualLabel = strings.TrimSpace(src.Label)
		}
		res.ingredients = append(res.ingredients, SourceIngredients{Label: label, Ingredients: src.Items})

	case domain.SingleRecipeSource:
		s.resolveRecipe(ctx, userID, src.RecipeID, "", res)

	case domain.MultipleRecipesSource:
		if len(src.RecipeIDs) == 0 {
			return domain.NewValidationError("recipeIds", "at least one recipe is required")
		}
		for _, id := range src.RecipeIDs {
			s.resolveRecipe(ctx, userID, id, "", res)
		}

	case domain.MealPlanSource:
		plan, err := s.MealPlanRepo.GetByID(ctx, userID, src.MealPlanID)
		if err != nil {
			s.skip(res, "meal plan "+src.MealPlanID, err)
			return nil
		}
		res.mealPlanID = plan.ID
		res.mealPlanName = plan.Name
		seen := map[string]bool{}
		for _, meal := range plan.Meals {
			if meal.RecipeID == "" || seen[meal.RecipeID] {
				continue
			}
			seen[meal.RecipeID] = true
			s.resolveRecipe(ctx, userID, meal.RecipeID, plan.Name, res)
		}

	default:
		return domain.NewValidationError("source", fmt.Sprintf("unsupported source %T", source))
	}
	return nil
}

// resolveRecipe fetches a recipe and labels its ingredients with label,
// or with the recipe title when label is empty
func (s *AggregatorService) resolveRecipe(ctx context.Context, userID, recipeID, label string, res *resolution) {
	recipe, err := s.RecipeRepo.GetByID(ctx, userID, recipeID)
	if err != nil {
		s.skip(res, "recipe "+recipeID, err)
		return
	}
	if label == "" {
		label = recipe.Title
		res.recipeTitles = append(res.recipeTitles, recipe.Title)
	}
	res.recipeIDs = append(res.recipeIDs, recipe.ID)
	res.ingredients = append(res.ingredients, SourceIngredients{Label: label, Ingredients: recipe.Ingredients})
}

func (s *AggregatorService) skip(res *resolution, label string, err error) {
	s.Logger.Warn("skipping shopping source",
		zap.String("source", label),
		zap.Error(err),
	)
	res.skipped = append(res.skipped, SkippedSource{Label: label, Reason: err.Error()})
}

func contextName(sources []domain.ShoppingSource, res *resolution) string {
	switch domain.ListTypeFor(sources) {
	case domain.ListTypeRecipe:
		if len(res.recipeTitles) == 1 {
			return res.recipeTitles[0]
		}
	case domain.ListTypeRecipes:
		return fmt.Sprintf("%d Recipes", len(res.recipeTitles))
	case domain.ListTypeMealPlan:
		if res.mealPlanName != "" {
			return res.mealPlanName
		}
	}
	if res.manualLabel != "" {
		return res.manualLabel
	}
	return defaultContextName
}
