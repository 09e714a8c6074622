// Package savedlist stores named, reusable shopping lists and manages their
// lifecycle: creation, item edits, loading for a shopping trip and archiving.
package savedlist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/docbear71/food-inventory-backend/internal/domain"
	"github.com/docbear71/food-inventory-backend/internal/usecase/aggregator"
)

// Item edit modes
const (
	ModeAdd     = "add"
	ModeReplace = "replace"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SavedListService handles saved shopping list operations
type SavedListService struct {
	SavedListRepo domain.SavedListRepository
	InventoryRepo domain.InventoryRepository
	Logger        *zap.Logger

	Now func() time.Time
}

// NewSavedListService creates a new SavedListService instance
func NewSavedListService(savedListRepo domain.SavedListRepository, inventoryRepo domain.InventoryRepository, logger *zap.Logger) *SavedListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SavedListService{
		SavedListRepo: savedListRepo,
		InventoryRepo: inventoryRepo,
		Logger:        logger.Named("savedlist"),
		Now:           time.Now,
	}
}

// CreateInput represents the input for saving a shopping list
type CreateInput struct {
	UserID           string
	Name             string
	Description      string
	ListType         domain.ListType
	ContextName      string
	SourceRecipeIDs  []string
	SourceMealPlanID string
	Items            []domain.ShoppingListItem
	Metadata         map[string]string
	Color            string
	Tags             []string
	IsTemplate       bool
}

// Create saves a new shopping list. A custom list may not reuse the name of
// another of the user's active lists.
func (s *SavedListService) Create(ctx context.Context, input CreateInput) (*domain.SavedShoppingList, error) {
	now := s.Now()

	listType := input.ListType
	if listType == "" {
		listType = domain.ListTypeCustom
	}

	items := categorize(input.Items)
	list := &domain.SavedShoppingList{
		ID:               uuid.New(),
		UserID:           input.UserID,
		Name:             strings.TrimSpace(input.Name),
		Description:      strings.TrimSpace(input.Description),
		ListType:         listType,
		ContextName:      strings.TrimSpace(input.ContextName),
		SourceRecipeIDs:  append([]string{}, input.SourceRecipeIDs...),
		SourceMealPlanID: input.SourceMealPlanID,
		Items:            items,
		GeneratedAt:      now,
		Metadata:         input.Metadata,
		Color:            strings.TrimSpace(input.Color),
		Tags:             cleanTags(input.Tags),
		IsTemplate:       input.IsTemplate,
		Stats:            statsOf(items),
		Usage: domain.SavedListUsage{
			CreatedFromSource: string(listType),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if list.Color == "" {
		list.Color = domain.DefaultListColor
	}

	// Validate before touching storage
	if err := list.Validate(); err != nil {
		return nil, err
	}

	if listType == domain.ListTypeCustom {
		existing, err := s.SavedListRepo.FindByName(ctx, input.UserID, list.Name)
		if err != nil && !domain.IsNotFound(err) {
			return nil, fmt.Errorf("failed to check list name: %w", err)
		}
		if existing != nil {
			return nil, &domain.ConflictError{Resource: "saved shopping list", Field: "name", Value: list.Name}
		}
	}

	// The repository repeats the name check atomically with the insert
	if err := s.SavedListRepo.Create(ctx, list); err != nil {
		if domain.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create saved list: %w", err)
	}

	s.Logger.Info("saved list created",
		zap.String("user_id", list.UserID),
		zap.String("list_id", list.ID.String()),
		zap.String("list_type", string(list.ListType)),
		zap.Int("items", list.Stats.TotalItems),
	)
	return list, nil
}

// UpdateItemsInput represents the input for adding or replacing list items
type UpdateItemsInput struct {
	UserID string
	ListID uuid.UUID
	Items  []domain.ShoppingListItem
	Mode   string
}

// AddOrReplaceItems edits the items of a custom or recipe list.
// Replace discards the current items; add merges into them.
func (s *SavedListService) AddOrReplaceItems(ctx context.Context, input UpdateItemsInput) (*domain.SavedShoppingList, error) {
	mode := input.Mode
	if mode == "" {
		mode = ModeAdd
	}
	if mode != ModeAdd && mode != ModeReplace {
		return nil, domain.NewValidationError("mode", "must be add or replace")
	}

	list, err := s.SavedListRepo.Update(ctx, input.UserID, input.ListID, func(list *domain.SavedShoppingList) error {
		if !list.ListType.ItemsEditable() {
			return domain.NewValidationError("listType", fmt.Sprintf("items of %s lists cannot be edited", list.ListType))
		}
		if mode == ModeReplace {
			list.Items = categorize(input.Items)
		} else {
			if list.Items == nil {
				list.Items = domain.CategorizedItems{}
			}
			mergeItems(list.Items, input.Items)
		}
		list.Stats = statsOf(list.Items)
		list.UpdatedAt = s.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("saved list items updated",
		zap.String("user_id", input.UserID),
		zap.String("list_id", input.ListID.String()),
		zap.String("mode", mode),
		zap.Int("items", list.Stats.TotalItems),
	)
	return list, nil
}

// LoadOptions control what loading a list refreshes
type LoadOptions struct {
	ResetPurchased        bool
	UpdateInventoryStatus bool
	StartShoppingSession  bool
}

// DefaultLoadOptions resets purchase flags and refreshes inventory status
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{ResetPurchased: true, UpdateInventoryStatus: true}
}

// LoadMetadata identifies the saved list a loaded shopping list came from
type LoadMetadata struct {
	SavedListID   uuid.UUID       `json:"savedListId"`
	SavedListName string          `json:"savedListName"`
	ListType      domain.ListType `json:"listType"`
	ContextName   string          `json:"contextName"`
	LastModified  time.Time       `json:"lastModified"`
	IsLoaded      bool            `json:"isLoaded"`
	Source        string          `json:"source"`
}

// Info describes a saved list without its items
type Info struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	ListType    domain.ListType       `json:"listType"`
	ContextName string                `json:"contextName"`
	Color       string                `json:"color"`
	Tags        []string              `json:"tags"`
	IsTemplate  bool                  `json:"isTemplate"`
	IsArchived  bool                  `json:"isArchived"`
	Stats       domain.SavedListStats `json:"stats"`
	Usage       domain.SavedListUsage `json:"usage"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// LoadedList is a saved list reshaped for a shopping trip
type LoadedList struct {
	Items         domain.CategorizedItems    `json:"items"`
	CategoryOrder []string                   `json:"categoryOrder"`
	Summary       domain.ShoppingListSummary `json:"summary"`
	Recipes       []string                   `json:"recipes"`
	Metadata      LoadMetadata               `json:"metadata"`
	SavedList     Info                       `json:"savedList"`
}

// Load prepares a saved list for shopping. Every load is counted; purchase
// flags, inventory status and the shopping session are refreshed per opts.
func (s *SavedListService) Load(ctx context.Context, userID string, listID uuid.UUID, opts LoadOptions) (*LoadedList, error) {
	var inventory []domain.InventoryItem
	if opts.UpdateInventoryStatus {
		var err error
		inventory, err = s.InventoryRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory: %w", err)
		}
	}

	now := s.Now()
	list, err := s.SavedListRepo.Update(ctx, userID, listID, func(list *domain.SavedShoppingList) error {
		for _, lines := range list.Items {
			for i := range lines {
				if opts.ResetPurchased {
					lines[i].Purchased = false
				}
				if opts.UpdateInventoryStatus {
					aggregator.CrossReference(&lines[i], inventory)
				}
			}
		}
		aggregator.SortWithinCategories(list.Items)

		list.Usage.TimesLoaded++
		loaded := now
		list.Usage.LastLoaded = &loaded
		if opts.StartShoppingSession {
			started := now
			list.Usage.ShoppingSessionStarted = &started
		}
		list.Stats = statsOf(list.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("saved list loaded",
		zap.String("user_id", userID),
		zap.String("list_id", listID.String()),
		zap.Int("times_loaded", list.Usage.TimesLoaded),
	)

	items := displayItems(list.Items)
	return &LoadedList{
		Items:         items,
		CategoryOrder: aggregator.OrderCategories(items),
		Summary:       aggregator.Summarize(items),
		Recipes:       recipesOf(list),
		Metadata: LoadMetadata{
			SavedListID:   list.ID,
			SavedListName: list.Name,
			ListType:      list.ListType,
			ContextName:   list.ContextName,
			LastModified:  list.UpdatedAt,
			IsLoaded:      true,
			Source:        "saved_list",
		},
		SavedList: infoOf(list),
	}, nil
}

// Get returns one of the user's lists
func (s *SavedListService) Get(ctx context.Context, userID string, listID uuid.UUID) (*domain.SavedShoppingList, error) {
	return s.SavedListRepo.GetByID(ctx, userID, listID)
}

// ListFilter narrows and pages the user's saved lists
type ListFilter struct {
	UserID          string
	IncludeArchived bool
	ListType        domain.ListType
	// Tags keeps lists carrying at least one of the tags
	Tags  []string
	Page  int
	Limit int
}

// ListPage is one page of saved lists
type ListPage struct {
	Lists   []Info `json:"lists"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	HasMore bool   `json:"hasMore"`
}

// List returns the user's saved lists, most recently loaded first
func (s *SavedListService) List(ctx context.Context, filter ListFilter) (*ListPage, error) {
	if filter.ListType != "" && !filter.ListType.Valid() {
		return nil, domain.NewValidationError("listType", "must be one of custom, recipe, recipes, meal-plan")
	}

	lists, err := s.SavedListRepo.ListByUser(ctx, filter.UserID, filter.IncludeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved lists: %w", err)
	}

	matched := make([]*domain.SavedShoppingList, 0, len(lists))
	for _, list := range lists {
		if filter.ListType != "" && list.ListType != filter.ListType {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(list.Tags, filter.Tags) {
			continue
		}
		matched = append(matched, list)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].Usage.LastLoaded, matched[j].Usage.LastLoaded
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	result := &ListPage{Lists: []Info{}, Total: len(matched), Page: page, Limit: limit}
	start := (page - 1) * limit
	if start < len(matched) {
		end := start + limit
		if end > len(matched) {
			end = len(matched)
		}
		for _, list := range matched[start:end] {
			result.Lists = append(result.Lists, infoOf(list))
		}
		result.HasMore = end < len(matched)
	}
	return result, nil
}

// Archive archives or restores a list
func (s *SavedListService) Archive(ctx context.Context, userID string, listID uuid.UUID, archived bool) (*domain.SavedShoppingList, error) {
	return s.SavedListRepo.Update(ctx, userID, listID, func(list *domain.SavedShoppingList) error {
		list.IsArchived = archived
		list.UpdatedAt = s.Now()
		return nil
	})
}

// TogglePurchased flips the purchased flag of one line and returns it
func (s *SavedListService) TogglePurchased(ctx context.Context, userID string, listID uuid.UUID, itemKey string) (*domain.ShoppingListItem, error) {
	var toggled domain.ShoppingListItem
	_, err := s.SavedListRepo.Update(ctx, userID, listID, func(list *domain.SavedShoppingList) error {
		category, idx, ok := list.Items.Find(itemKey)
		if !ok {
			return domain.NewNotFoundError("shopping list item", itemKey)
		}
		line := &list.Items[category][idx]
		line.Purchased = !line.Purchased
		toggled = *line
		list.Stats = statsOf(list.Items)
		list.UpdatedAt = s.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &toggled, nil
}

// SetItemPriceInput represents the input for pricing one list line
type SetItemPriceInput struct {
	UserID  string
	ListID  uuid.UUID
	ItemKey string
	Price   decimal.Decimal
	Source  domain.PriceSource
}

// SetItemPrice records the price of one list line
func (s *SavedListService) SetItemPrice(ctx context.Context, input SetItemPriceInput) (*domain.ShoppingListItem, error) {
	if !input.Price.IsPositive() {
		return nil, domain.NewValidationError("price", "must be greater than zero")
	}
	source := input.Source
	if source == "" {
		source = domain.PriceSourceUserManual
	}
	if !source.Valid() || source == domain.PriceSourceNone {
		return nil, domain.NewValidationError("priceSource", fmt.Sprintf("unsupported price source %q", input.Source))
	}

	var priced domain.ShoppingListItem
	_, err := s.SavedListRepo.Update(ctx, input.UserID, input.ListID, func(list *domain.SavedShoppingList) error {
		category, idx, ok := list.Items.Find(input.ItemKey)
		if !ok {
			return domain.NewNotFoundError("shopping list item", input.ItemKey)
		}
		line := &list.Items[category][idx]
		line.PriceSource = source
		if source == domain.PriceSourceUserManual {
			line.Price = decimal.NewNullDecimal(input.Price)
		} else {
			line.EstimatedPrice = decimal.NewNullDecimal(input.Price)
		}
		priced = *line
		list.UpdatedAt = s.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &priced, nil
}

// recipesOf lists the recipe context of a loaded list
func recipesOf(list *domain.SavedShoppingList) []string {
	recipes := []string{}
	switch list.ListType {
	case domain.ListTypeRecipe, domain.ListTypeRecipes:
		seen := map[string]bool{}
		for _, category := range aggregator.OrderCategories(list.Items) {
			for _, item := range list.Items[category] {
				for _, r := range item.Recipes {
					if r != "" && !seen[r] {
						seen[r] = true
						recipes = append(recipes, r)
					}
				}
			}
		}
	case domain.ListTypeMealPlan:
		if list.ContextName != "" {
			recipes = append(recipes, list.ContextName)
		}
	}
	return recipes
}

func infoOf(list *domain.SavedShoppingList) Info {
	return Info{
		ID:          list.ID,
		Name:        list.Name,
		Description: list.Description,
		ListType:    list.ListType,
		ContextName: list.ContextName,
		Color:       list.Color,
		Tags:        append([]string{}, list.Tags...),
		IsTemplate:  list.IsTemplate,
		IsArchived:  list.IsArchived,
		Stats:       list.Stats,
		Usage:       list.Usage,
		CreatedAt:   list.CreatedAt,
		UpdatedAt:   list.UpdatedAt,
	}
}

func cleanTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}
