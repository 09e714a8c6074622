package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/docbear71/food-inventory-backend/internal/domain"
	"github.com/docbear71/food-inventory-backend/internal/usecase/ledger"
)

// DemoNamespace derives the fixed ids of demo inventory items per user
var DemoNamespace = uuid.MustParse("6f1c3c2e-1d59-4b8e-9a55-3c5b8f0e7a10")

// Fixed ids of the demo catalog
const (
	DemoTacoRecipeID     = "demo-taco-night"
	DemoPancakeRecipeID  = "demo-pancakes"
	DemoMealPlanID       = "demo-week"
	demoAddedBy          = "seed"
)

// DemoPrice is one seeded price observation
type DemoPrice struct {
	Price    string
	Store    string
	DaysAgo  int
	IsOnSale bool
}

// DemoItem defines an inventory item to be seeded with its price history
type DemoItem struct {
	Name     string
	Category string
	Quantity string
	Unit     string
	Prices   []DemoPrice
}

// DemoItems is the inventory seeded for a demo user
var DemoItems = []DemoItem{
	{Name: "Milk", Category: "Dairy", Quantity: "1", Unit: "gallon", Prices: []DemoPrice{
		{Price: "3.49", Store: "Kroger", DaysAgo: 20},
		{Price: "2.99", Store: "Aldi", DaysAgo: 12},
		{Price: "3.19", Store: "Kroger", DaysAgo: 3},
	}},
	{Name: "Eggs", Category: "Dairy", Quantity: "12", Unit: "count", Prices: []DemoPrice{
		{Price: "4.29", Store: "Kroger", DaysAgo: 15},
		{Price: "3.59", Store: "Costco", DaysAgo: 6, IsOnSale: true},
	}},
	{Name: "Cheddar Cheese", Category: "Dairy", Quantity: "0", Unit: "lb", Prices: []DemoPrice{
		{Price: "5.99", Store: "Kroger", DaysAgo: 25},
		{Price: "4.49", Store: "Aldi", DaysAgo: 9},
	}},
	{Name: "Ground Beef", Category: "Meat", Quantity: "0", Unit: "lb", Prices: []DemoPrice{
		{Price: "6.49", Store: "Whole Foods", DaysAgo: 18},
		{Price: "4.99", Store: "Costco", DaysAgo: 4},
	}},
	{Name: "Tortillas", Category: "Bakery", Quantity: "1", Unit: "pack", Prices: []DemoPrice{
		{Price: "2.79", Store: "Kroger", DaysAgo: 10},
	}},
	{Name: "Rice", Category: "Pantry", Quantity: "2", Unit: "lb", Prices: []DemoPrice{
		{Price: "1.99", Store: "Aldi", DaysAgo: 30},
		{Price: "2.49", Store: "Kroger", DaysAgo: 2},
	}},
}

// DemoSeeder fills a user's inventory and catalog with sample data so the
// pricing operations have something to work on in development
type DemoSeeder struct {
	InventoryRepo domain.InventoryRepository
	Catalog       domain.CatalogWriter
	Logger        *zap.Logger
	Now           func() time.Time
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(inventoryRepo domain.InventoryRepository, catalog domain.CatalogWriter, logger *zap.Logger) *DemoSeeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DemoSeeder{
		InventoryRepo: inventoryRepo,
		Catalog:       catalog,
		Logger:        logger.Named("seeder"),
		Now:           time.Now,
	}
}

// DemoItemID returns the fixed id of a demo item for the user
func DemoItemID(userID, name string) uuid.UUID {
	return uuid.NewSHA1(DemoNamespace, []byte(userID+"/"+name))
}

// Seed ensures the demo items, recipes and meal plan exist for the user.
// Existing items are left untouched, so seeding twice changes nothing.
func (s *DemoSeeder) Seed(ctx context.Context, userID string) error {
	created := 0
	for _, demo := range DemoItems {
		id := DemoItemID(userID, demo.Name)

		_, err := s.InventoryRepo.GetByID(ctx, userID, id)
		if err == nil {
			continue
		}
		if !domain.IsNotFound(err) {
			return fmt.Errorf("failed to check demo item %s: %w", demo.Name, err)
		}

		item, err := s.buildItem(userID, id, demo)
		if err != nil {
			return err
		}
		if err := s.InventoryRepo.Create(ctx, item); err != nil {
			return fmt.Errorf("failed to create demo item %s: %w", demo.Name, err)
		}
		created++
	}

	for _, recipe := range demoRecipes(userID) {
		if err := s.Catalog.SaveRecipe(ctx, recipe); err != nil {
			return fmt.Errorf("failed to save demo recipe %s: %w", recipe.ID, err)
		}
	}

	plan := &domain.MealPlan{
		ID:     DemoMealPlanID,
		UserID: userID,
		Name:   "Demo Week",
		Meals: []domain.PlannedMeal{
			{Day: "monday", MealType: "dinner", RecipeID: DemoTacoRecipeID},
			{Day: "saturday", MealType: "breakfast", RecipeID: DemoPancakeRecipeID},
			{Day: "sunday", MealType: "breakfast", RecipeID: DemoPancakeRecipeID},
		},
	}
	if err := s.Catalog.SaveMealPlan(ctx, plan); err != nil {
		return fmt.Errorf("failed to save demo meal plan: %w", err)
	}

	if err := s.Catalog.SaveCurrency(ctx, userID, domain.DefaultCurrencyPreferences()); err != nil {
		return fmt.Errorf("failed to save demo currency preferences: %w", err)
	}

	s.Logger.Info("demo data seeded",
		zap.String("user_id", userID),
		zap.Int("items_created", created),
	)
	return nil
}

func (s *DemoSeeder) buildItem(userID string, id uuid.UUID, demo DemoItem) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{
		ID:       id,
		UserID:   userID,
		Name:     demo.Name,
		Category: demo.Category,
		Quantity: decimal.RequireFromString(demo.Quantity),
		Unit:     demo.Unit,
	}

	now := s.Now()
	currency := domain.DefaultCurrencyPreferences()
	for _, p := range demo.Prices {
		obs := domain.PriceObservation{
			ID:             uuid.NewSHA1(id, []byte(fmt.Sprintf("%s/%d", p.Store, p.DaysAgo))),
			Price:          decimal.RequireFromString(p.Price),
			Store:          p.Store,
			Date:           now.AddDate(0, 0, -p.DaysAgo),
			IsOnSale:       p.IsOnSale,
			Currency:       currency.Currency,
			CurrencySymbol: currency.CurrencySymbol,
			AddedBy:        demoAddedBy,
			AddedDate:      now,
		}
		if _, err := ledger.Record(item, obs); err != nil {
			return nil, fmt.Errorf("invalid demo price for %s: %w", demo.Name, err)
		}
	}
	return item, nil
}

func demoRecipes(userID string) []*domain.Recipe {
	return []*domain.Recipe{
		{
			ID:     DemoTacoRecipeID,
			UserID: userID,
			Title:  "Taco Night",
			Ingredients: []domain.Ingredient{
				{Name: "Ground Beef", Amount: "1", Unit: "lb"},
				{Name: "Tortillas", Amount: "8", Unit: "count"},
				{Name: "Cheddar Cheese", Amount: "1", Unit: "cup"},
				{Name: "Lettuce", Amount: "1", Unit: "head"},
				{Name: "Salsa", Amount: "1", Unit: "jar"},
			},
		},
		{
			ID:     DemoPancakeRecipeID,
			UserID: userID,
			Title:  "Pancakes",
			Ingredients: []domain.Ingredient{
				{Name: "Flour", Amount: "2", Unit: "cups"},
				{Name: "Milk", Amount: "1.5", Unit: "cups"},
				{Name: "Eggs", Amount: "2", Unit: "count"},
				{Name: "Maple Syrup", Amount: "1", Unit: "bottle"},
			},
		},
	}
}
