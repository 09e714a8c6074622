package domain

import "fmt"

// SourceKind tags the variant of a ShoppingSource
type SourceKind string

const (
	SourceKindManual          SourceKind = "manual"
	SourceKindSingleRecipe    SourceKind = "recipe"
	SourceKindMultipleRecipes SourceKind = "recipes"
	SourceKindMealPlan        SourceKind = "meal-plan"
)

// ShoppingSource is where shopping list requirements come from.
// The set of implementations is closed: ManualSource, SingleRecipeSource,
// MultipleRecipesSource and MealPlanSource.
type ShoppingSource interface {
	Kind() SourceKind
	sealed()
}

// ManualSource is a hand-entered list of items
type ManualSource struct {
	Label string
	Items []Ingredient
}

// SingleRecipeSource references one recipe
type SingleRecipeSource struct {
	RecipeID string
}

// MultipleRecipesSource references several recipes
type MultipleRecipesSource struct {
	RecipeIDs []string
}

// MealPlanSource references a meal plan
type MealPlanSource struct {
	MealPlanID string
}

func (ManualSource) Kind() SourceKind          { return SourceKindManual }
func (SingleRecipeSource) Kind() SourceKind    { return SourceKindSingleRecipe }
func (MultipleRecipesSource) Kind() SourceKind { return SourceKindMultipleRecipes }
func (MealPlanSource) Kind() SourceKind        { return SourceKindMealPlan }

func (ManualSource) sealed()          {}
func (SingleRecipeSource) sealed()    {}
func (MultipleRecipesSource) sealed() {}
func (MealPlanSource) sealed()        {}

// ListTypeFor returns the saved-list type a list generated from the
// given sources should carry. Mixed or manual sources produce a custom list.
func ListTypeFor(sources []ShoppingSource) ListType {
	if len(sources) != 1 {
		recipes := 0
		for _, s := range sources {
			switch s.(type) {
			case SingleRecipeSource, MultipleRecipesSource:
				recipes++
			}
		}
		if recipes > 0 && recipes == len(sources) {
			return ListTypeRecipes
		}
		return ListTypeCustom
	}

	switch s := sources[0].(type) {
	case SingleRecipeSource:
		return ListTypeRecipe
	case MultipleRecipesSource:
		if len(s.RecipeIDs) == 1 {
			return ListTypeRecipe
		}
		return ListTypeRecipes
	case MealPlanSource:
		return ListTypeMealPlan
	default:
		return ListTypeCustom
	}
}

// ParseSourceKind converts a wire value into a SourceKind
func ParseSourceKind(value string) (SourceKind, error) {
	switch SourceKind(value) {
	case SourceKindManual, SourceKindSingleRecipe, SourceKindMultipleRecipes, SourceKindMealPlan:
		return SourceKind(value), nil
	}
	return "", NewValidationError("source.type", fmt.Sprintf("unknown source type %q", value))
}
