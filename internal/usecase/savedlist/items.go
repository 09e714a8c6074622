package savedlist

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docbear71/food-inventory-backend/internal/domain"
	"github.com/docbear71/food-inventory-backend/internal/usecase/aggregator"
)

const (
	defaultAmount = "1"
	defaultUnit   = "item"
)

// normalizeItem fills the defaults of a raw list line. It reports false for
// lines without a name.
func normalizeItem(raw domain.ShoppingListItem) (domain.ShoppingListItem, bool) {
	item := raw
	item.Name = strings.TrimSpace(raw.Name)
	if item.Name == "" {
		return domain.ShoppingListItem{}, false
	}

	item.Amount = strings.TrimSpace(raw.Amount)
	if item.Amount == "" {
		item.Amount = defaultAmount
	}
	item.Unit = strings.TrimSpace(raw.Unit)
	if item.Unit == "" {
		item.Unit = defaultUnit
	}
	item.Category = aggregator.ResolveCategory(item.Name, raw.Category)
	item.ItemKey = aggregator.ItemKey(item.Name, item.Category)
	if strings.TrimSpace(item.NeedAmount) == "" {
		item.NeedAmount = item.Amount + " " + item.Unit
	}
	item.Recipes = append([]string{}, raw.Recipes...)
	if !item.PriceSource.Valid() {
		item.PriceSource = domain.PriceSourceNone
	}
	return item, true
}

// categorize groups raw lines by category, dropping unnamed ones
func categorize(raw []domain.ShoppingListItem) domain.CategorizedItems {
	items := domain.CategorizedItems{}
	for _, r := range raw {
		item, ok := normalizeItem(r)
		if !ok {
			continue
		}
		items[item.Category] = append(items[item.Category], item)
	}
	return items
}

// mergeItems adds lines into existing categories. A line whose name matches
// an existing line of the same category, ignoring case, updates that line's
// amount and notes instead of being added again.
func mergeItems(items domain.CategorizedItems, raw []domain.ShoppingListItem) {
	for _, r := range raw {
		item, ok := normalizeItem(r)
		if !ok {
			continue
		}
		lines := items[item.Category]
		merged := false
		for i := range lines {
			if !strings.EqualFold(lines[i].Name, item.Name) {
				continue
			}
			lines[i].Amount = item.Amount
			lines[i].Unit = item.Unit
			lines[i].NeedAmount = item.NeedAmount
			if item.Notes != "" {
				lines[i].Notes = item.Notes
			}
			merged = true
			break
		}
		if !merged {
			items[item.Category] = append(lines, item)
		}
	}
}

func statsOf(items domain.CategorizedItems) domain.SavedListStats {
	summary := aggregator.Summarize(items)
	return domain.SavedListStats{
		TotalItems:      summary.TotalItems,
		TotalCategories: summary.Categories,
		NeedToBuy:       summary.NeedToBuy,
		InInventory:     summary.InInventory,
		Purchased:       summary.Purchased,
	}
}

// capitalize upper-cases the first letter of a category name
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// displayItems regroups lines under capitalized category names. Categories
// that differ only in the case of the first letter are merged.
func displayItems(items domain.CategorizedItems) domain.CategorizedItems {
	out := make(domain.CategorizedItems, len(items))
	for _, category := range aggregator.OrderCategories(items) {
		key := capitalize(category)
		for _, item := range items[category] {
			item.Recipes = append([]string{}, item.Recipes...)
			out[key] = append(out[key], item)
		}
	}
	return out
}
