//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docbear71/food-inventory-backend/internal/adapter/repository/postgres"
	"github.com/docbear71/food-inventory-backend/internal/adapter/repository/postgres/migrations"
	"github.com/docbear71/food-inventory-backend/internal/domain"
	"github.com/docbear71/food-inventory-backend/internal/usecase/aggregator"
	"github.com/docbear71/food-inventory-backend/internal/usecase/ledger"
	"github.com/docbear71/food-inventory-backend/internal/usecase/savedlist"
	"github.com/docbear71/food-inventory-backend/internal/usecase/seeder"
)

var db *postgres.DB

// TestMain connects to the database and applies the schema
func TestMain(m *testing.M) {
	var err error
	db, err = postgres.NewDB(context.Background(), getDBConnectionString(), postgres.PoolConfig{MaxOpenConns: 10})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	migrator, err := migrations.New(db.DB, getEnv("DB_NAME", "food_inventory"), zap.NewNop())
	if err != nil {
		panic(fmt.Sprintf("Failed to create migrator: %v", err))
	}
	if err := migrator.Up(); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}

	code := m.Run()

	_ = db.Close()
	os.Exit(code)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDBConnectionString returns the database connection string from environment or defaults
func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "food_inventory"),
	)
}

// newUser returns a user id unique to this test run
func newUser(t *testing.T) string {
	t.Helper()
	return "it-" + uuid.NewString()
}

func createItem(t *testing.T, repo domain.InventoryRepository, userID, name string) *domain.InventoryItem {
	t.Helper()
	item := &domain.InventoryItem{
		UserID:   userID,
		Name:     name,
		Category: "Dairy",
		Quantity: decimal.NewFromInt(1),
		Unit:     "gallon",
	}
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestInventoryLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	userID := newUser(t)
	repo := postgres.NewInventoryRepository(db)
	service := ledger.NewLedgerService(repo, postgres.NewPreferenceRepository(db), zap.NewNop())
	item := createItem(t, repo, userID, "Milk")

	saleEnd := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	first, err := service.RecordObservation(ctx, ledger.RecordObservationInput{
		UserID: userID, ItemID: item.ID, Price: decimal.RequireFromString("3.49"), Store: "Kroger",
		Date: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), Size: decimal.NewFromInt(128), Unit: "oz",
		IsOnSale: true, SaleEndDate: &saleEnd,
	})
	require.NoError(t, err)
	_, err = service.RecordObservation(ctx, ledger.RecordObservationInput{
		UserID: userID, ItemID: item.ID, Price: decimal.RequireFromString("2.99"), Store: "Aldi",
		Date: time.Date(2025, time.January, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, userID, item.ID)
	require.NoError(t, err)
	require.Len(t, stored.PriceHistory, 2)
	assert.Equal(t, "Kroger", stored.PriceHistory[0].Store, "history keeps insertion order")
	assert.True(t, stored.PriceHistory[0].UnitPrice.Valid)
	require.NotNil(t, stored.PriceHistory[0].SaleEndDate)
	assert.True(t, stored.PriceHistory[0].SaleEndDate.Equal(saleEnd))
	assert.True(t, stored.AveragePrice.Equal(decimal.RequireFromString("3.24")))
	require.NotNil(t, stored.CurrentBestPrice)
	assert.Equal(t, "Aldi", stored.CurrentBestPrice.Store)

	// Alerts survive the JSONB round trip
	_, err = service.SetPriceAlert(ctx, userID, item.ID, domain.PriceAlert{
		Enabled: true, TargetPrice: decimal.NewNullDecimal(decimal.RequireFromString("2.50")), AlertWhenBelow: true,
	})
	require.NoError(t, err)

	// Deleting the cheapest entry resets the best price
	_, err = service.DeleteObservation(ctx, userID, item.ID, stored.PriceHistory[1].ID)
	require.NoError(t, err)

	view, err := service.GetPriceHistory(ctx, userID, item.ID)
	require.NoError(t, err)
	require.Len(t, view.History, 1)
	assert.Equal(t, first.Observation.ID, view.History[0].ID)
	assert.Equal(t, "Kroger", view.Pricing.CurrentBestPrice.Store)
	require.NotNil(t, view.Alert)
	assert.True(t, view.Alert.TargetPrice.Decimal.Equal(decimal.RequireFromString("2.50")))

	_, err = repo.GetByID(ctx, newUser(t), item.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestInventoryConcurrentRecords(t *testing.T) {
	ctx := context.Background()
	userID := newUser(t)
	repo := postgres.NewInventoryRepository(db)
	service := ledger.NewLedgerService(repo, nil, zap.NewNop())
	item := createItem(t, repo, userID, "Eggs")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.RecordObservation(ctx, ledger.RecordObservationInput{
				UserID: userID, ItemID: item.ID, Price: decimal.NewFromInt(int64(i + 1)), Store: fmt.Sprintf("Store %d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := repo.GetByID(ctx, userID, item.ID)
	require.NoError(t, err)
	assert.Len(t, stored.PriceHistory, writers)
	assert.True(t, stored.CurrentBestPrice.Price.Equal(decimal.NewFromInt(1)))
}

func TestSavedListLifecycle(t *testing.T) {
	ctx := context.Background()
	userID := newUser(t)
	inventory := postgres.NewInventoryRepository(db)
	createItem(t, inventory, userID, "Milk")
	service := savedlist.NewSavedListService(postgres.NewSavedListRepository(db), inventory, zap.NewNop())

	list, err := service.Create(ctx, savedlist.CreateInput{
		UserID: userID,
		Name:   "Weekly Staples",
		Items: []domain.ShoppingListItem{
			{Name: "Milk", Amount: "1", Unit: "gallon"},
			{Name: "Bread", Amount: "1", Unit: "loaf"},
		},
		Metadata: map[string]string{"source": "integration"},
		Tags:     []string{"staples", "weekly"},
	})
	require.NoError(t, err)

	_, err = service.Create(ctx, savedlist.CreateInput{UserID: userID, Name: " Weekly Staples ", Items: []domain.ShoppingListItem{{Name: "Eggs"}}})
	assert.True(t, domain.IsConflict(err))

	loaded, err := service.Load(ctx, userID, list.ID, savedlist.DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Summary.TotalItems)
	assert.Equal(t, 1, loaded.Summary.InInventory)
	assert.Equal(t, 1, loaded.SavedList.Usage.TimesLoaded)

	stored, err := service.Get(ctx, userID, list.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"staples", "weekly"}, stored.Tags)
	assert.Equal(t, "integration", stored.Metadata["source"])
	require.NotNil(t, stored.Usage.LastLoaded)

	var breadKey string
	for _, items := range stored.Items {
		for _, item := range items {
			if item.Name == "Bread" {
				breadKey = item.ItemKey
			}
		}
	}
	require.NotEmpty(t, breadKey)
	toggled, err := service.TogglePurchased(ctx, userID, list.ID, breadKey)
	require.NoError(t, err)
	assert.True(t, toggled.Purchased)

	_, err = service.Archive(ctx, userID, list.ID, true)
	require.NoError(t, err)
	page, err := service.List(ctx, savedlist.ListFilter{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	page, err = service.List(ctx, savedlist.ListFilter{UserID: userID, IncludeArchived: true})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestSeededMealPlanGeneration(t *testing.T) {
	ctx := context.Background()
	userID := newUser(t)
	inventory := postgres.NewInventoryRepository(db)

	demo := seeder.NewDemoSeeder(inventory, postgres.NewCatalogWriter(db), zap.NewNop())
	require.NoError(t, demo.Seed(ctx, userID))
	require.NoError(t, demo.Seed(ctx, userID))

	items, err := inventory.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, len(seeder.DemoItems))

	service := aggregator.NewAggregatorService(
		postgres.NewRecipeRepository(db),
		postgres.NewMealPlanRepository(db),
		inventory,
		zap.NewNop(),
	)
	result, err := service.Generate(ctx, userID, []domain.ShoppingSource{
		domain.MealPlanSource{MealPlanID: seeder.DemoMealPlanID},
	}, aggregator.Options{})
	require.NoError(t, err)

	assert.Equal(t, domain.ListTypeMealPlan, result.ListType)
	assert.Equal(t, "Demo Week", result.ContextName)
	assert.Equal(t, 9, result.Summary.TotalItems)
	assert.Empty(t, result.Skipped)
}

func TestSavedListConcurrentCustomNames(t *testing.T) {
	ctx := context.Background()
	userID := newUser(t)
	service := savedlist.NewSavedListService(postgres.NewSavedListRepository(db), postgres.NewInventoryRepository(db), zap.NewNop())

	const callers = 6
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Create(ctx, savedlist.CreateInput{UserID: userID, Name: "Party"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, domain.IsConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)

	page, err := service.List(ctx, savedlist.ListFilter{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}
