package savedlist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docbear71/food-inventory-backend/internal/adapter/repository/memory"
	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// MockSavedListRepository is a mock implementation of SavedListRepository for testing.
// Update applies fn to the list configured as its first return value.
type MockSavedListRepository struct {
	mock.Mock
}

func (m *MockSavedListRepository) Create(ctx context.Context, list *domain.SavedShoppingList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockSavedListRepository) GetByID(ctx context.Context, userID string, listID uuid.UUID) (*domain.SavedShoppingList, error) {
	args := m.Called(ctx, userID, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedShoppingList), args.Error(1)
}

func (m *MockSavedListRepository) FindByName(ctx context.Context, userID, name string) (*domain.SavedShoppingList, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedShoppingList), args.Error(1)
}

func (m *MockSavedListRepository) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.SavedShoppingList, error) {
	args := m.Called(ctx, userID, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SavedShoppingList), args.Error(1)
}

func (m *MockSavedListRepository) Update(ctx context.Context, userID string, listID uuid.UUID, fn func(list *domain.SavedShoppingList) error) (*domain.SavedShoppingList, error) {
	args := m.Called(ctx, userID, listID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	list := args.Get(0).(*domain.SavedShoppingList)
	if err := fn(list); err != nil {
		return nil, err
	}
	return list, args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository for testing
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) GetByID(ctx context.Context, userID string, itemID uuid.UUID) (*domain.InventoryItem, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) Update(ctx context.Context, userID string, itemID uuid.UUID, fn func(item *domain.InventoryItem) error) (*domain.InventoryItem, error) {
	args := m.Called(ctx, userID, itemID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

var testNow = time.Date(2025, time.February, 3, 18, 0, 0, 0, time.UTC)

func newTestService() (*SavedListService, *MockSavedListRepository, *MockInventoryRepository) {
	lists := new(MockSavedListRepository)
	inventory := new(MockInventoryRepository)
	service := NewSavedListService(lists, inventory, nil)
	service.Now = func() time.Time { return testNow }
	return service, lists, inventory
}

func storedList(listType domain.ListType, items domain.CategorizedItems) *domain.SavedShoppingList {
	return &domain.SavedShoppingList{
		ID:        uuid.New(),
		UserID:    "user-1",
		Name:      "Weekly",
		ListType:  listType,
		Items:     items,
		Color:     domain.DefaultListColor,
		Tags:      []string{},
		UpdatedAt: testNow.Add(-24 * time.Hour),
	}
}

func TestCreate_CustomList(t *testing.T) {
	// Setup
	ctx := context.Background()
	service, lists, _ := newTestService()
	lists.On("FindByName", ctx, "user-1", "Weekly Basics").Return(nil, domain.NewNotFoundError("saved shopping list", "Weekly Basics"))
	lists.On("Create", ctx, mock.AnythingOfType("*domain.SavedShoppingList")).Return(nil)

	// Execute
	list, err := service.Create(ctx, CreateInput{
		UserID: "user-1",
		Name:   "  Weekly Basics ",
		Items: []domain.ShoppingListItem{
			{Name: "Milk", Category: "2"},
			{Name: "Ground Beef", Amount: "2", Unit: "lb", Notes: "lean"},
			{Name: "   "},
		},
		Tags: []string{"weekly", " ", "weekly"},
	})

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, list.ID)
	assert.Equal(t, "Weekly Basics", list.Name)
	assert.Equal(t, domain.ListTypeCustom, list.ListType)
	assert.Equal(t, domain.DefaultListColor, list.Color)
	assert.Equal(t, []string{"weekly"}, list.Tags)
	assert.Equal(t, "custom", list.Usage.CreatedFromSource)
	assert.Equal(t, 0, list.Usage.TimesLoaded)

	require.Len(t, list.Items["Dairy"], 1, "numeric categories are replaced by a derived one")
	milk := list.Items["Dairy"][0]
	assert.Equal(t, "1", milk.Amount)
	assert.Equal(t, "item", milk.Unit)
	assert.Equal(t, "1 item", milk.NeedAmount)
	assert.Equal(t, "milk-Dairy", milk.ItemKey)
	assert.Equal(t, domain.PriceSourceNone, milk.PriceSource)

	assert.Equal(t, domain.SavedListStats{TotalItems: 2, TotalCategories: 2, NeedToBuy: 2}, list.Stats)
	lists.AssertExpectations(t)
}

func TestCreate_DuplicateCustomName(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	lists.On("FindByName", ctx, "user-1", "Weekly").Return(storedList(domain.ListTypeCustom, nil), nil)

	_, err := service.Create(ctx, CreateInput{UserID: "user-1", Name: " Weekly "})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "name", conflict.Field)
	lists.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_ConflictFromRepository(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	lists.On("FindByName", ctx, "user-1", "Weekly").Return(nil, domain.NewNotFoundError("saved shopping list", "Weekly"))
	lists.On("Create", ctx, mock.AnythingOfType("*domain.SavedShoppingList")).
		Return(&domain.ConflictError{Resource: "saved shopping list", Field: "name", Value: "Weekly"})

	list, err := service.Create(ctx, CreateInput{UserID: "user-1", Name: "Weekly"})

	assert.Nil(t, list)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "name", conflict.Field)
}

// slowNameLookup widens the window between the name check and the insert
type slowNameLookup struct {
	domain.SavedListRepository
}

func (r slowNameLookup) FindByName(ctx context.Context, userID, name string) (*domain.SavedShoppingList, error) {
	time.Sleep(5 * time.Millisecond)
	return r.SavedListRepository.FindByName(ctx, userID, name)
}

func TestCreate_ConcurrentSameNameCreatesOne(t *testing.T) {
	// Setup
	ctx := context.Background()
	repo := memory.NewSavedListRepository()
	service := NewSavedListService(slowNameLookup{SavedListRepository: repo}, nil, nil)

	// Execute
	const callers = 4
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Create(ctx, CreateInput{UserID: "user-1", Name: "Weekly"})
		}(i)
	}
	wg.Wait()

	// Assert
	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, domain.IsConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)

	stored, err := repo.ListByUser(ctx, "user-1", false)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCreate_RecipeListSkipsNameCheck(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	lists.On("Create", ctx, mock.AnythingOfType("*domain.SavedShoppingList")).Return(nil)

	list, err := service.Create(ctx, CreateInput{
		UserID:      "user-1",
		Name:        "Weekly",
		ListType:    domain.ListTypeRecipes,
		ContextName: "2 Recipes",
		Items:       []domain.ShoppingListItem{{Name: "Tortillas", Recipes: []string{"Tacos"}}},
	})

	require.NoError(t, err)
	assert.Equal(t, "recipes", list.Usage.CreatedFromSource)
	lists.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateInput
		field string
	}{
		{name: "blank name", input: CreateInput{UserID: "user-1", Name: "  "}, field: "name"},
		{name: "long name", input: CreateInput{UserID: "user-1", Name: string(make([]byte, 101))}, field: "name"},
		{name: "unknown type", input: CreateInput{UserID: "user-1", Name: "Weekly", ListType: "pantry"}, field: "listType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, lists, _ := newTestService()

			_, err := service.Create(context.Background(), tt.input)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			lists.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAddOrReplaceItems_AddMergesDuplicates(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	list := storedList(domain.ListTypeCustom, domain.CategorizedItems{
		"Dairy": {{Name: "Milk", Amount: "1", Unit: "gallon", Category: "Dairy", ItemKey: "milk-Dairy"}},
	})
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	updated, err := service.AddOrReplaceItems(ctx, UpdateItemsInput{
		UserID: "user-1",
		ListID: list.ID,
		Mode:   ModeAdd,
		Items: []domain.ShoppingListItem{
			{Name: "MILK", Amount: "2", Unit: "gallon", Category: "Dairy", Notes: "2%"},
			{Name: "Butter", Category: "Dairy"},
		},
	})

	require.NoError(t, err)
	dairy := updated.Items["Dairy"]
	require.Len(t, dairy, 2)
	assert.Equal(t, "Milk", dairy[0].Name)
	assert.Equal(t, "2", dairy[0].Amount)
	assert.Equal(t, "2%", dairy[0].Notes)
	assert.Equal(t, "Butter", dairy[1].Name)
	assert.Equal(t, 2, updated.Stats.TotalItems)
	assert.Equal(t, testNow, updated.UpdatedAt)
}

func TestAddOrReplaceItems_Replace(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	list := storedList(domain.ListTypeRecipe, domain.CategorizedItems{
		"Dairy": {{Name: "Milk", ItemKey: "milk-Dairy"}},
	})
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	updated, err := service.AddOrReplaceItems(ctx, UpdateItemsInput{
		UserID: "user-1",
		ListID: list.ID,
		Mode:   ModeReplace,
		Items:  []domain.ShoppingListItem{{Name: "Lettuce"}},
	})

	require.NoError(t, err)
	assert.NotContains(t, updated.Items, "Dairy")
	assert.Len(t, updated.Items["Fresh Vegetables"], 1)
	assert.Equal(t, 1, updated.Stats.TotalCategories)
}

func TestAddOrReplaceItems_ReadOnlyListType(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	list := storedList(domain.ListTypeMealPlan, domain.CategorizedItems{})
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	_, err := service.AddOrReplaceItems(ctx, UpdateItemsInput{
		UserID: "user-1",
		ListID: list.ID,
		Mode:   ModeAdd,
		Items:  []domain.ShoppingListItem{{Name: "Lettuce"}},
	})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "listType", vErr.Field)
	assert.Empty(t, list.Items)
}

func TestAddOrReplaceItems_UnknownMode(t *testing.T) {
	service, lists, _ := newTestService()

	_, err := service.AddOrReplaceItems(context.Background(), UpdateItemsInput{UserID: "user-1", ListID: uuid.New(), Mode: "merge"})

	assert.True(t, domain.IsValidation(err))
	lists.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddOrReplaceItems_ListOfAnotherUser(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	listID := uuid.New()
	lists.On("Update", ctx, "intruder", listID, mock.Anything).Return(nil, domain.NewNotFoundError("saved shopping list", listID.String()))

	_, err := service.AddOrReplaceItems(ctx, UpdateItemsInput{UserID: "intruder", ListID: listID, Mode: ModeAdd})

	assert.True(t, domain.IsNotFound(err))
}

func TestLoad_DefaultsRefreshList(t *testing.T) {
	ctx := context.Background()
	service, lists, inventory := newTestService()
	milkID := uuid.New()
	list := storedList(domain.ListTypeRecipes, domain.CategorizedItems{
		"dairy": {
			{Name: "Milk", Category: "dairy", ItemKey: "milk-dairy", Purchased: true, Recipes: []string{"Pancakes"}},
		},
		"Fresh Meat": {
			{Name: "Ground Beef", Category: "Fresh Meat", ItemKey: "ground beef-Fresh Meat", InInventory: true, HaveAmount: "1 lb", Recipes: []string{"Tacos", "Taco Salad"}},
		},
	})
	list.ContextName = "2 Recipes"
	list.Usage.TimesLoaded = 2
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)
	inventory.On("ListByUser", ctx, "user-1").Return([]domain.InventoryItem{
		{ID: milkID, UserID: "user-1", Name: "Milk", Quantity: decimal.NewFromInt(2), Unit: "quarts"},
	}, nil)

	loaded, err := service.Load(ctx, "user-1", list.ID, DefaultLoadOptions())

	require.NoError(t, err)
	assert.Equal(t, 3, list.Usage.TimesLoaded)
	require.NotNil(t, list.Usage.LastLoaded)
	assert.Equal(t, testNow, *list.Usage.LastLoaded)
	assert.Nil(t, list.Usage.ShoppingSessionStarted)

	require.Contains(t, loaded.Items, "Dairy", "categories are capitalized for display")
	milk := loaded.Items["Dairy"][0]
	assert.False(t, milk.Purchased)
	assert.True(t, milk.InInventory)
	assert.Equal(t, "2 quarts", milk.HaveAmount)
	assert.Equal(t, milkID, *milk.InventoryItemID)

	beef := loaded.Items["Fresh Meat"][0]
	assert.False(t, beef.InInventory, "inventory status follows the current inventory")
	assert.Empty(t, beef.HaveAmount)

	assert.Equal(t, []string{"Fresh Meat", "Dairy"}, loaded.CategoryOrder)
	assert.Equal(t, []string{"Tacos", "Taco Salad", "Pancakes"}, loaded.Recipes)
	assert.Equal(t, domain.ShoppingListSummary{TotalItems: 2, NeedToBuy: 1, InInventory: 1, Categories: 2}, loaded.Summary)

	assert.Equal(t, LoadMetadata{
		SavedListID:   list.ID,
		SavedListName: "Weekly",
		ListType:      domain.ListTypeRecipes,
		ContextName:   "2 Recipes",
		LastModified:  list.UpdatedAt,
		IsLoaded:      true,
		Source:        "saved_list",
	}, loaded.Metadata)
	assert.Equal(t, 3, loaded.SavedList.Usage.TimesLoaded)
}

func TestLoad_WithoutRefresh(t *testing.T) {
	ctx := context.Background()
	service, lists, inventory := newTestService()
	list := storedList(domain.ListTypeCustom, domain.CategorizedItems{
		"Dairy": {{Name: "Milk", Category: "Dairy", ItemKey: "milk-Dairy", Purchased: true, InInventory: true, Recipes: []string{"Pancakes"}}},
	})
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	loaded, err := service.Load(ctx, "user-1", list.ID, LoadOptions{StartShoppingSession: true})

	require.NoError(t, err)
	milk := loaded.Items["Dairy"][0]
	assert.True(t, milk.Purchased)
	assert.True(t, milk.InInventory)
	assert.Equal(t, 1, list.Usage.TimesLoaded, "loads are counted even when nothing is refreshed")
	require.NotNil(t, list.Usage.ShoppingSessionStarted)
	assert.Empty(t, loaded.Recipes, "custom lists carry no recipe context")
	inventory.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestLoad_MealPlanRecipes(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	list := storedList(domain.ListTypeMealPlan, domain.CategorizedItems{})
	list.ContextName = "Week 12"
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	loaded, err := service.Load(ctx, "user-1", list.ID, LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"Week 12"}, loaded.Recipes)
}

func TestLoad_InventoryFailure(t *testing.T) {
	ctx := context.Background()
	service, lists, inventory := newTestService()
	listID := uuid.New()
	inventory.On("ListByUser", ctx, "user-1").Return(nil, errors.New("timeout"))

	_, err := service.Load(ctx, "user-1", listID, DefaultLoadOptions())

	require.Error(t, err)
	lists.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestList_FiltersSortsAndPages(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()

	loadedEarly := testNow.Add(-72 * time.Hour)
	loadedLate := testNow.Add(-1 * time.Hour)

	neverLoadedOld := storedList(domain.ListTypeCustom, nil)
	neverLoadedOld.Name = "old"
	neverLoadedOld.UpdatedAt = testNow.Add(-240 * time.Hour)
	neverLoadedNew := storedList(domain.ListTypeCustom, nil)
	neverLoadedNew.Name = "new"
	neverLoadedNew.Tags = []string{"party"}
	early := storedList(domain.ListTypeCustom, nil)
	early.Name = "early"
	early.Usage.LastLoaded = &loadedEarly
	late := storedList(domain.ListTypeCustom, nil)
	late.Name = "late"
	late.Usage.LastLoaded = &loadedLate
	late.Tags = []string{"Weekly"}
	plan := storedList(domain.ListTypeMealPlan, nil)
	plan.Name = "plan"

	lists.On("ListByUser", ctx, "user-1", false).Return([]*domain.SavedShoppingList{neverLoadedOld, early, plan, neverLoadedNew, late}, nil)

	page, err := service.List(ctx, ListFilter{UserID: "user-1", ListType: domain.ListTypeCustom, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Lists, 3)
	assert.Equal(t, "late", page.Lists[0].Name)
	assert.Equal(t, "early", page.Lists[1].Name)
	assert.Equal(t, "new", page.Lists[2].Name)

	second, err := service.List(ctx, ListFilter{UserID: "user-1", ListType: domain.ListTypeCustom, Limit: 3, Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Lists, 1)
	assert.Equal(t, "old", second.Lists[0].Name)
	assert.False(t, second.HasMore)

	tagged, err := service.List(ctx, ListFilter{UserID: "user-1", Tags: []string{"weekly", "party"}})
	require.NoError(t, err)
	assert.Equal(t, 2, tagged.Total)
	assert.Equal(t, 20, tagged.Limit)
}

func TestList_UnknownType(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.List(context.Background(), ListFilter{UserID: "user-1", ListType: "pantry"})

	assert.True(t, domain.IsValidation(err))
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	list := storedList(domain.ListTypeCustom, nil)
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	archived, err := service.Archive(ctx, "user-1", list.ID, true)

	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.Equal(t, testNow, archived.UpdatedAt)
}

func TestTogglePurchased(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	list := storedList(domain.ListTypeCustom, domain.CategorizedItems{
		"Dairy": {{Name: "Milk", Category: "Dairy", ItemKey: "milk-Dairy"}},
	})
	list.Stats = statsOf(list.Items)
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	item, err := service.TogglePurchased(ctx, "user-1", list.ID, "milk-Dairy")
	require.NoError(t, err)
	assert.True(t, item.Purchased)
	assert.Equal(t, 1, list.Stats.Purchased)
	assert.Equal(t, 0, list.Stats.NeedToBuy)

	item, err = service.TogglePurchased(ctx, "user-1", list.ID, "milk-Dairy")
	require.NoError(t, err)
	assert.False(t, item.Purchased, "purchase toggles are reversible")
	assert.Equal(t, 1, list.Stats.NeedToBuy)
}

func TestTogglePurchased_UnknownItem(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	list := storedList(domain.ListTypeCustom, domain.CategorizedItems{})
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	_, err := service.TogglePurchased(ctx, "user-1", list.ID, "saffron-Other")

	assert.True(t, domain.IsNotFound(err))
}

func TestSetItemPrice(t *testing.T) {
	ctx := context.Background()
	service, lists, _ := newTestService()
	list := storedList(domain.ListTypeCustom, domain.CategorizedItems{
		"Dairy": {{Name: "Milk", Category: "Dairy", ItemKey: "milk-Dairy", PriceSource: domain.PriceSourceNone}},
	})
	lists.On("Update", ctx, "user-1", list.ID, mock.Anything).Return(list, nil)

	item, err := service.SetItemPrice(ctx, SetItemPriceInput{
		UserID:  "user-1",
		ListID:  list.ID,
		ItemKey: "milk-Dairy",
		Price:   decimal.RequireFromString("3.49"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriceSourceUserManual, item.PriceSource)
	assert.True(t, item.Price.Valid)
	assert.True(t, item.Price.Decimal.Equal(decimal.RequireFromString("3.49")))

	estimated, err := service.SetItemPrice(ctx, SetItemPriceInput{
		UserID:  "user-1",
		ListID:  list.ID,
		ItemKey: "milk-Dairy",
		Price:   decimal.RequireFromString("3.10"),
		Source:  domain.PriceSourceUserEstimate,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriceSourceUserEstimate, estimated.PriceSource)
	assert.True(t, estimated.EstimatedPrice.Decimal.Equal(decimal.RequireFromString("3.10")))
}

func TestSetItemPrice_Validation(t *testing.T) {
	service, lists, _ := newTestService()

	_, err := service.SetItemPrice(context.Background(), SetItemPriceInput{UserID: "user-1", ListID: uuid.New(), ItemKey: "milk-Dairy"})
	assert.True(t, domain.IsValidation(err))

	_, err = service.SetItemPrice(context.Background(), SetItemPriceInput{
		UserID: "user-1", ListID: uuid.New(), ItemKey: "milk-Dairy",
		Price: decimal.NewFromInt(1), Source: domain.PriceSourceNone,
	})
	assert.True(t, domain.IsValidation(err))
	lists.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
