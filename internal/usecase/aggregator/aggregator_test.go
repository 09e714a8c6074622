package aggregator

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

func ingredients(names ...string) []domain.Ingredient {
	out := make([]domain.Ingredient, len(names))
	for i, n := range names {
		out[i] = domain.Ingredient{Name: n, Amount: "1", Unit: "lb"}
	}
	return out
}

func TestAggregate_TacoNight(t *testing.T) {
	// Setup
	sources := []SourceIngredients{
		{Label: "Tacos", Ingredients: ingredients("Ground Beef", "Tortillas")},
		{Label: "Taco Salad", Ingredients: ingredients("Ground Beef", "Lettuce")},
	}

	// Execute
	result := Aggregate(sources, nil, Options{})

	// Assert
	assert.Equal(t, 3, result.Summary.TotalItems)
	assert.Equal(t, 3, result.Items.Count())
	require.Len(t, result.Items["Fresh Meat"], 1)
	beef := result.Items["Fresh Meat"][0]
	assert.Equal(t, "Ground Beef", beef.Name)
	assert.Equal(t, []string{"Tacos", "Taco Salad"}, beef.Recipes)
	assert.Equal(t, "ground beef-Fresh Meat", beef.ItemKey)
	assert.Equal(t, []string{"Fresh Vegetables", "Fresh Meat", "Breads"}, result.CategoryOrder)
	assert.Equal(t, []string{"Tacos", "Taco Salad"}, result.Recipes)
	assert.Empty(t, result.Skipped)
}

func TestAggregate_DuplicateWithinSameSourceIsOneLine(t *testing.T) {
	sources := []SourceIngredients{
		{Label: "Soup", Ingredients: []domain.Ingredient{
			{Name: "Carrots", Amount: "2", Unit: "cups"},
			{Name: " carrots ", Amount: "3", Unit: "whole"},
		}},
		{Label: "Stew", Ingredients: []domain.Ingredient{
			{Name: "CARROTS", Amount: "1", Unit: "lb"},
		}},
	}

	result := Aggregate(sources, nil, Options{})

	require.Len(t, result.Items["Fresh Vegetables"], 1)
	carrots := result.Items["Fresh Vegetables"][0]
	assert.Equal(t, []string{"Soup", "Stew"}, carrots.Recipes)
	assert.Equal(t, "1", carrots.Amount, "the last seen amount wins")
	assert.Equal(t, "lb", carrots.Unit)
	assert.Equal(t, "1 lb", carrots.NeedAmount)
	assert.Equal(t, "Carrots", carrots.Name, "the first spelling is kept")
}

func TestAggregate_SameNameDifferentCategoryStaysSeparate(t *testing.T) {
	sources := []SourceIngredients{
		{Label: "A", Ingredients: []domain.Ingredient{{Name: "Beans", Category: "Canned Vegetables"}}},
		{Label: "B", Ingredients: []domain.Ingredient{{Name: "Beans", Category: "Beans & Legumes"}}},
	}

	result := Aggregate(sources, nil, Options{})

	assert.Equal(t, 2, result.Summary.TotalItems)
	assert.Equal(t, 2, result.Summary.Categories)
}

func TestAggregate_NeverProducesNumericCategories(t *testing.T) {
	numeric := regexp.MustCompile(`^\d+$`)
	sources := []SourceIngredients{
		{Label: "Indexed", Ingredients: []domain.Ingredient{
			{Name: "Milk", Category: "0"},
			{Name: "Eggs", Category: "1"},
			{Name: "Xylophone", Category: "2"},
			{Name: "Flour", Category: "15"},
		}},
	}

	result := Aggregate(sources, nil, Options{})

	for category, items := range result.Items {
		assert.False(t, numeric.MatchString(category), "category %q is numeric", category)
		for _, item := range items {
			assert.False(t, numeric.MatchString(item.Category))
		}
	}
	assert.Contains(t, result.Items, "Dairy")
	assert.Contains(t, result.Items, "Eggs")
	assert.Contains(t, result.Items, CategoryOther)
	assert.Contains(t, result.Items, "Baking Ingredients")
}

func TestAggregate_SkipsSourceWithUnnamedIngredient(t *testing.T) {
	sources := []SourceIngredients{
		{Label: "Broken", Ingredients: []domain.Ingredient{{Name: "Milk"}, {Name: "  "}}},
		{Label: "Pancakes", Ingredients: ingredients("Flour", "Eggs")},
	}

	result := Aggregate(sources, nil, Options{})

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "Broken", result.Skipped[0].Label)
	assert.Equal(t, "ingredient 2 has no name", result.Skipped[0].Reason)
	assert.Equal(t, 2, result.Summary.TotalItems)
	assert.NotContains(t, result.Items, "Dairy", "nothing from a skipped source is kept")
	assert.Equal(t, []string{"Pancakes"}, result.Recipes)
}

func TestAggregate_CrossReferencesInventory(t *testing.T) {
	milkID := uuid.New()
	inventory := []domain.InventoryItem{
		{ID: milkID, UserID: "user-1", Name: "Whole Milk", Quantity: decimal.NewFromInt(1), Unit: "gallon"},
		{ID: uuid.New(), UserID: "user-1", Name: "Rice", Quantity: decimal.NewFromInt(2), Unit: "lb"},
	}
	sources := []SourceIngredients{
		{Label: "Breakfast", Ingredients: []domain.Ingredient{
			{Name: "Milk", Category: "Dairy"},
			{Name: "Cream", Category: "Dairy"},
		}},
	}

	result := Aggregate(sources, inventory, Options{})

	dairy := result.Items["Dairy"]
	require.Len(t, dairy, 2)
	assert.Equal(t, "Cream", dairy[0].Name, "need-to-buy lines come before stocked ones")
	assert.False(t, dairy[0].InInventory)
	assert.Empty(t, dairy[0].HaveAmount)

	milk := dairy[1]
	assert.True(t, milk.InInventory)
	assert.Equal(t, "1 gallon", milk.HaveAmount)
	require.NotNil(t, milk.InventoryItemID)
	assert.Equal(t, milkID, *milk.InventoryItemID)

	assert.Equal(t, domain.ShoppingListSummary{TotalItems: 2, NeedToBuy: 1, InInventory: 1, Purchased: 0, Categories: 1}, result.Summary)
}

func TestAggregate_SkipInventoryCheck(t *testing.T) {
	inventory := []domain.InventoryItem{{ID: uuid.New(), Name: "Milk", Quantity: decimal.NewFromInt(1)}}
	sources := []SourceIngredients{{Label: "A", Ingredients: ingredients("Milk")}}

	result := Aggregate(sources, inventory, Options{SkipInventoryCheck: true})

	require.Len(t, result.Items["Dairy"], 1)
	assert.False(t, result.Items["Dairy"][0].InInventory)
	assert.Equal(t, 1, result.Summary.NeedToBuy)
}

func TestSummarize_PurchasedAndStocked(t *testing.T) {
	items := domain.CategorizedItems{
		"Dairy": {
			{Name: "Milk", InInventory: true, Purchased: true},
			{Name: "Cream", Purchased: true},
			{Name: "Butter"},
		},
		"Breads": {
			{Name: "Bagels", InInventory: true},
		},
	}

	summary := Summarize(items)

	assert.Equal(t, 4, summary.TotalItems)
	assert.Equal(t, 1, summary.NeedToBuy)
	assert.Equal(t, 2, summary.InInventory)
	assert.Equal(t, 2, summary.Purchased)
	assert.Equal(t, 2, summary.Categories)
}

func TestNewItem_Defaults(t *testing.T) {
	item := NewItem(domain.Ingredient{Name: " Lettuce ", Amount: "1", Unit: "head"}, "Salad")

	assert.Equal(t, "Lettuce", item.Name)
	assert.Equal(t, "Fresh Vegetables", item.Category)
	assert.Equal(t, "lettuce-Fresh Vegetables", item.ItemKey)
	assert.Equal(t, "1 head", item.NeedAmount)
	assert.Equal(t, domain.PriceSourceNone, item.PriceSource)
	assert.Equal(t, []string{"Salad"}, item.Recipes)
}
