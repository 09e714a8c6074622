// Package matcher resolves free-text shopping and ingredient names to
// inventory items by bidirectional substring containment.
package matcher

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// Normalize canonicalizes a name for comparison: NFC form, lowercase, trimmed.
// No stemming or synonym expansion is applied.
func Normalize(name string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(name)))
}

// Matches reports whether either normalized name contains the other.
// Blank names never match.
func Matches(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Filter returns the candidates whose name matches query, preserving candidate order
func Filter[T any](query string, candidates []T, nameOf func(T) string) []T {
	var out []T
	for _, c := range candidates {
		if Matches(query, nameOf(c)) {
			out = append(out, c)
		}
	}
	return out
}

// Match returns every inventory item related to query, in inventory order.
// An empty result means "not in inventory", not an error.
func Match(query string, inventory []domain.InventoryItem) []domain.InventoryItem {
	return Filter(query, inventory, itemName)
}

// First returns the first inventory item related to query
func First(query string, inventory []domain.InventoryItem) (*domain.InventoryItem, bool) {
	for i := range inventory {
		if Matches(query, inventory[i].Name) {
			return &inventory[i], true
		}
	}
	return nil, false
}

func itemName(item domain.InventoryItem) string {
	return item.Name
}
