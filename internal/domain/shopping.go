package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceSource records where a shopping list line's price came from
type PriceSource string

const (
	PriceSourceUserManual   PriceSource = "user_manual"
	PriceSourceUserEstimate PriceSource = "user_estimate"
	PriceSourceAI           PriceSource = "ai"
	PriceSourceNone         PriceSource = "none"
)

// Valid reports whether the price source is one of the known values
func (p PriceSource) Valid() bool {
	switch p {
	case PriceSourceUserManual, PriceSourceUserEstimate, PriceSourceAI, PriceSourceNone:
		return true
	}
	return false
}

// ShoppingListItem is one line of a generated or saved shopping list
type ShoppingListItem struct {
	Name            string              `json:"name"`
	Amount          string              `json:"amount"`
	Unit            string              `json:"unit"`
	Category        string              `json:"category"`
	Recipes         []string            `json:"recipes"`
	InInventory     bool                `json:"inInventory"`
	InventoryItemID *uuid.UUID          `json:"inventoryItemId,omitempty"`
	Purchased       bool                `json:"purchased"`
	HaveAmount      string              `json:"haveAmount"`
	NeedAmount      string              `json:"needAmount"`
	ItemKey         string              `json:"itemKey"`
	Notes           string              `json:"notes,omitempty"`
	Price           decimal.NullDecimal `json:"price"`
	EstimatedPrice  decimal.NullDecimal `json:"estimatedPrice"`
	UnitPrice       decimal.NullDecimal `json:"unitPrice"`
	PriceSource     PriceSource         `json:"priceSource"`
}

// NeedToBuy reports whether the line still has to be bought
func (s *ShoppingListItem) NeedToBuy() bool {
	return !s.InInventory && !s.Purchased
}

// AddRecipe appends a source label unless it is already present
func (s *ShoppingListItem) AddRecipe(label string) {
	if label == "" {
		return
	}
	for _, existing := range s.Recipes {
		if existing == label {
			return
		}
	}
	s.Recipes = append(s.Recipes, label)
}

// CategorizedItems groups shopping list lines by category name
type CategorizedItems map[string][]ShoppingListItem

// Count returns the number of lines across all categories
func (c CategorizedItems) Count() int {
	n := 0
	for _, items := range c {
		n += len(items)
	}
	return n
}

// Find returns the category and index of the line with the given item key
func (c CategorizedItems) Find(itemKey string) (string, int, bool) {
	for category, items := range c {
		for i := range items {
			if items[i].ItemKey == itemKey {
				return category, i, true
			}
		}
	}
	return "", -1, false
}

// Clone returns a deep copy safe to mutate independently
func (c CategorizedItems) Clone() CategorizedItems {
	out := make(CategorizedItems, len(c))
	for category, items := range c {
		copied := make([]ShoppingListItem, len(items))
		for i, item := range items {
			item.Recipes = append([]string(nil), item.Recipes...)
			copied[i] = item
		}
		out[category] = copied
	}
	return out
}

// ShoppingListSummary holds the counters shown next to a shopping list
type ShoppingListSummary struct {
	TotalItems  int `json:"totalItems"`
	NeedToBuy   int `json:"needToBuy"`
	InInventory int `json:"inInventory"`
	Purchased   int `json:"purchased"`
	Categories  int `json:"categories"`
}

// Ingredient is one requirement coming from a recipe, meal plan or manual list
type Ingredient struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Unit     string `json:"unit"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Blank reports whether the ingredient has no usable name
func (i Ingredient) Blank() bool {
	return strings.TrimSpace(i.Name) == ""
}

// Recipe is the slice of an externally owned recipe the core consumes
type Recipe struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Title       string       `json:"title"`
	Ingredients []Ingredient `json:"ingredients"`
}

// PlannedMeal is one slot of a meal plan
type PlannedMeal struct {
	Day      string `json:"day"`
	MealType string `json:"mealType"`
	RecipeID string `json:"recipeId"`
}

// MealPlan is the slice of an externally owned meal plan the core consumes
type MealPlan struct {
	ID     string        `json:"id"`
	UserID string        `json:"userId"`
	Name   string        `json:"name"`
	Meals  []PlannedMeal `json:"meals"`
}
