// Package aggregator merges ingredient requirements from recipes, meal plans
// and manual lists into one categorized, deduplicated shopping list.
package aggregator

import (
	"fmt"
	"strings"

	"github.com/docbear71/food-inventory-backend/internal/domain"
	"github.com/docbear71/food-inventory-backend/internal/usecase/matcher"
)

// SourceIngredients is one resolved source: its requirements and the label
// recorded as provenance on every line it contributes to
type SourceIngredients struct {
	Label       string
	Ingredients []domain.Ingredient
}

// SkippedSource notes a source left out of an aggregation
type SkippedSource struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Options tune an aggregation
type Options struct {
	// SkipInventoryCheck leaves every line marked as not in inventory
	SkipInventoryCheck bool
}

// Result is an aggregated shopping list
type Result struct {
	Items         domain.CategorizedItems    `json:"items"`
	CategoryOrder []string                   `json:"categoryOrder"`
	Summary       domain.ShoppingListSummary `json:"summary"`
	Recipes       []string                   `json:"recipes"`
	Skipped       []SkippedSource            `json:"skipped,omitempty"`
}

// ItemKey is the deduplication identity of a shopping list line
func ItemKey(name, category string) string {
	return matcher.Normalize(name) + "-" + category
}

// NewItem turns one ingredient into a shopping list line attributed to label
func NewItem(ing domain.Ingredient, label string) domain.ShoppingListItem {
	name := strings.TrimSpace(ing.Name)
	category := ResolveCategory(name, ing.Category)
	amount := strings.TrimSpace(ing.Amount)
	unit := strings.TrimSpace(ing.Unit)

	item := domain.ShoppingListItem{
		Name:        name,
		Amount:      amount,
		Unit:        unit,
		Category:    category,
		NeedAmount:  strings.TrimSpace(amount + " " + unit),
		ItemKey:     ItemKey(name, category),
		Notes:       strings.TrimSpace(ing.Notes),
		PriceSource: domain.PriceSourceNone,
		Recipes:     []string{},
	}
	item.AddRecipe(label)
	return item
}

// Aggregate merges the sources into one list. Lines with the same item key
// are merged: their source labels are unioned and the last seen amount and
// unit win. A source containing an unnamed ingredient is skipped as a whole
// and reported in Result.Skipped.
func Aggregate(sources []SourceIngredients, inventory []domain.InventoryItem, opts Options) *Result {
	result := &Result{
		Items:   domain.CategorizedItems{},
		Recipes: []string{},
	}

	var order []string
	merged := map[string]*domain.ShoppingListItem{}
	seenLabels := map[string]bool{}

	for i, source := range sources {
		if reason := invalidSource(source); reason != "" {
			result.Skipped = append(result.Skipped, SkippedSource{Label: sourceLabel(source, i), Reason: reason})
			continue
		}

		if source.Label != "" && !seenLabels[source.Label] {
			seenLabels[source.Label] = true
			result.Recipes = append(result.Recipes, source.Label)
		}

		for _, ing := range source.Ingredients {
			item := NewItem(ing, source.Label)
			existing, ok := merged[item.ItemKey]
			if !ok {
				merged[item.ItemKey] = &item
				order = append(order, item.ItemKey)
				continue
			}
			existing.AddRecipe(source.Label)
			existing.Amount = item.Amount
			existing.Unit = item.Unit
			existing.NeedAmount = item.NeedAmount
			if item.Notes != "" {
				existing.Notes = item.Notes
			}
		}
	}

	for _, key := range order {
		item := *merged[key]
		if !opts.SkipInventoryCheck {
			CrossReference(&item, inventory)
		}
		result.Items[item.Category] = append(result.Items[item.Category], item)
	}

	SortWithinCategories(result.Items)
	result.CategoryOrder = OrderCategories(result.Items)
	result.Summary = Summarize(result.Items)
	return result
}

// CrossReference refreshes a line's inventory status against the user's inventory
func CrossReference(item *domain.ShoppingListItem, inventory []domain.InventoryItem) {
	match, ok := matcher.First(item.Name, inventory)
	if !ok {
		item.InInventory = false
		item.InventoryItemID = nil
		item.HaveAmount = ""
		return
	}
	id := match.ID
	item.InInventory = true
	item.InventoryItemID = &id
	item.HaveAmount = match.QuantityLabel()
}

// Summarize counts the lines of a list by status
func Summarize(items domain.CategorizedItems) domain.ShoppingListSummary {
	summary := domain.ShoppingListSummary{Categories: len(items)}
	for _, lines := range items {
		for _, item := range lines {
			summary.TotalItems++
			if item.NeedToBuy() {
				summary.NeedToBuy++
			}
			if item.InInventory {
				summary.InInventory++
			}
			if item.Purchased {
				summary.Purchased++
			}
		}
	}
	return summary
}

func invalidSource(source SourceIngredients) string {
	for i, ing := range source.Ingredients {
		if ing.Blank() {
			return fmt.Sprintf("ingredient %d has no name", i+1)
		}
	}
	return ""
}

func sourceLabel(source SourceIngredients, index int) string {
	if source.Label != "" {
		return source.Label
	}
	return fmt.Sprintf("source %d", index+1)
}
