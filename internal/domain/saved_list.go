package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ListType describes how a saved shopping list was produced
type ListType string

const (
	ListTypeCustom   ListType = "custom"
	ListTypeRecipe   ListType = "recipe"
	ListTypeRecipes  ListType = "recipes"
	ListTypeMealPlan ListType = "meal-plan"
)

// MaxListNameLength bounds the saved list name in characters
const MaxListNameLength = 100

// DefaultListColor is assigned when a list is created without a color
const DefaultListColor = "#3B82F6"

// Valid reports whether the list type is known
func (t ListType) Valid() bool {
	switch t {
	case ListTypeCustom, ListTypeRecipe, ListTypeRecipes, ListTypeMealPlan:
		return true
	}
	return false
}

// ItemsEditable reports whether items of this list type can be added or replaced
func (t ListType) ItemsEditable() bool {
	switch t {
	case ListTypeCustom, ListTypeRecipes, ListTypeRecipe:
		return true
	}
	return false
}

// SavedListStats are the counters persisted with a saved list
type SavedListStats struct {
	TotalItems      int `json:"totalItems"`
	TotalCategories int `json:"totalCategories"`
	NeedToBuy       int `json:"needToBuy"`
	InInventory     int `json:"inInventory"`
	Purchased       int `json:"purchased"`
}

// SavedListUsage tracks how often a saved list has been loaded
type SavedListUsage struct {
	TimesLoaded            int        `json:"timesLoaded"`
	LastLoaded             *time.Time `json:"lastLoaded"`
	CreatedFromSource      string     `json:"createdFromSource"`
	ShoppingSessionStarted *time.Time `json:"shoppingSessionStarted,omitempty"`
}

// SavedShoppingList is a named, reusable shopping list owned by one user
type SavedShoppingList struct {
	ID               uuid.UUID         `json:"id"`
	UserID           string            `json:"userId"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	ListType         ListType          `json:"listType"`
	ContextName      string            `json:"contextName"`
	SourceRecipeIDs  []string          `json:"sourceRecipeIds"`
	SourceMealPlanID string            `json:"sourceMealPlanId,omitempty"`
	Items            CategorizedItems  `json:"items"`
	GeneratedAt      time.Time         `json:"generatedAt"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Color            string            `json:"color"`
	Tags             []string          `json:"tags"`
	IsTemplate       bool              `json:"isTemplate"`
	IsArchived       bool              `json:"isArchived"`
	Stats            SavedListStats    `json:"stats"`
	Usage            SavedListUsage    `json:"usage"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// Validate ensures the saved list adheres to domain rules
func (l *SavedShoppingList) Validate() error {
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return NewValidationError("name", "shopping list name is required")
	}
	if utf8.RuneCountInString(name) > MaxListNameLength {
		return NewValidationError("name", "shopping list name must be 100 characters or less")
	}
	if l.UserID == "" {
		return NewValidationError("userId", "cannot be empty")
	}
	if !l.ListType.Valid() {
		return NewValidationError("listType", "must be one of custom, recipe, recipes, meal-plan")
	}
	return nil
}

// Clone returns a deep copy safe to mutate independently
func (l *SavedShoppingList) Clone() *SavedShoppingList {
	out := *l
	out.Items = l.Items.Clone()
	out.SourceRecipeIDs = append([]string(nil), l.SourceRecipeIDs...)
	out.Tags = append([]string(nil), l.Tags...)
	if l.Metadata != nil {
		out.Metadata = make(map[string]string, len(l.Metadata))
		for k, v := range l.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
