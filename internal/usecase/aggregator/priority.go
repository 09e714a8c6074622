package aggregator

import (
	"sort"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// unknownCategoryPriority ranks categories missing from the table after the
// known ones but ahead of "Other"
const unknownCategoryPriority = 50

var categoryPriority = map[string]int{
	"Fresh Vegetables":    1,
	"Fresh Fruits":        2,
	"Fresh Produce":       2,
	"Fresh Poultry":       3,
	"Fresh Meat":          4,
	"Fresh Seafood":       5,
	"Dairy":               6,
	"Cheese":              7,
	"Eggs":                8,
	"Breads":              9,
	"Rice & Grains":       10,
	"Pasta":               11,
	"Cereal":              12,
	"Baking Ingredients":  13,
	"Cooking Oil":         14,
	"Spices & Seasonings": 15,
	"Canned Vegetables":   16,
	"Canned Tomatoes":     17,
	"Canned Fruits":       18,
	"Beans & Legumes":     19,
	"Frozen Vegetables":   20,
	"Frozen Fruits":       21,
	"Frozen Meals":        22,
	"Frozen Pizza":        23,
	"Frozen Breakfast":    24,
	"Juices":              30,
	"Soft Drinks":         31,
	"Water":               32,
	"Coffee & Tea":        33,
	"Beer & Wine":         34,
	"Cleaning Supplies":   40,
	"Paper Products":      41,
	"Laundry":             42,
	"Personal Care":       43,
	CategoryOther:         99,
}

// CategoryPriority returns the display rank of a category, lower first
func CategoryPriority(category string) int {
	if p, ok := categoryPriority[category]; ok {
		return p
	}
	return unknownCategoryPriority
}

// OrderCategories sorts the categories of a list for display.
// Equal ranks are ordered alphabetically.
func OrderCategories(items domain.CategorizedItems) []string {
	order := make([]string, 0, len(items))
	for category := range items {
		order = append(order, category)
	}
	sort.Slice(order, func(i, j int) bool {
		pi, pj := CategoryPriority(order[i]), CategoryPriority(order[j])
		if pi != pj {
			return pi < pj
		}
		return order[i] < order[j]
	})
	return order
}

// itemTier ranks lines within a category: need-to-buy first, in-inventory last
func itemTier(item domain.ShoppingListItem) int {
	if item.InInventory {
		return 1
	}
	return 0
}

// SortWithinCategories stably orders each category's lines by tier
func SortWithinCategories(items domain.CategorizedItems) {
	for _, lines := range items {
		sort.SliceStable(lines, func(i, j int) bool {
			return itemTier(lines[i]) < itemTier(lines[j])
		})
	}
}
