package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

const (
	// DefaultRangeDays is the analytics window used when none is requested
	DefaultRangeDays = 30

	bestDealsLimit  = 10
	worstDealsLimit = 5

	uncategorized = "Other"
)

// AnalyticsOptions narrows the price analytics
type AnalyticsOptions struct {
	RangeDays int
	Category  string
	Now       time.Time
	Currency  domain.CurrencyPreferences
}

// Overview counts what the analytics were computed from
type Overview struct {
	TotalItemsTracked int `json:"totalItemsTracked"`
	TotalPriceEntries int `json:"totalPriceEntries"`
}

// StoreComparison aggregates the observations made at one store
type StoreComparison struct {
	Store        string          `json:"store"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	ItemCount    int             `json:"itemCount"`
	TotalEntries int             `json:"totalEntries"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
}

// CategoryAnalysis aggregates the observations of one item category
type CategoryAnalysis struct {
	Category     string          `json:"category"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	ItemCount    int             `json:"itemCount"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	PricePerItem decimal.Decimal `json:"pricePerItem"`
}

// Deal describes the spread between an item's lowest and highest price
type Deal struct {
	ItemID           uuid.UUID         `json:"itemId"`
	ItemName         string            `json:"itemName"`
	Category         string            `json:"category"`
	LowestPrice      decimal.Decimal   `json:"lowestPrice"`
	HighestPrice     decimal.Decimal   `json:"highestPrice"`
	SavingsPercent   decimal.Decimal   `json:"savingsPercent"`
	SavingsAmount    decimal.Decimal   `json:"savingsAmount"`
	CurrentBestPrice *domain.BestPrice `json:"currentBestPrice"`
}

// StockUpAlert flags an item whose best price is well below its average
type StockUpAlert struct {
	ItemID       uuid.UUID       `json:"itemId"`
	ItemName     string          `json:"itemName"`
	Category     string          `json:"category"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	Store        string          `json:"store"`
}

// StoreAdvice is a store-level recommendation
type StoreAdvice struct {
	Type           string          `json:"type"`
	Store          string          `json:"store"`
	Reason         string          `json:"reason"`
	SavingsPerItem decimal.Decimal `json:"savingsPerItem"`
}

// Analytics is the price intelligence report for one user's inventory
type Analytics struct {
	Overview             Overview           `json:"overview"`
	StoreComparison      []StoreComparison  `json:"storeComparison"`
	CategoryAnalysis     []CategoryAnalysis `json:"categoryAnalysis"`
	BestDeals            []Deal             `json:"bestDeals"`
	WorstDeals           []Deal             `json:"worstDeals"`
	StockUpAlerts        []StockUpAlert     `json:"stockUpAlerts"`
	StoreRecommendations []StoreAdvice      `json:"storeRecommendations"`
}

type bucket struct {
	name  string
	total decimal.Decimal
	count int
	items map[string]struct{}
}

func (b *bucket) add(itemName string, price decimal.Decimal) {
	b.total = b.total.Add(price)
	b.count++
	b.items[itemName] = struct{}{}
}

// Analyze builds the price analytics for items. Store and category figures
// use observations inside the range window; deals and stock-up alerts use
// the full history.
func Analyze(items []domain.InventoryItem, opts AnalyticsOptions) Analytics {
	rangeDays := opts.RangeDays
	if rangeDays <= 0 {
		rangeDays = DefaultRangeDays
	}
	cutoff := calendarDate(opts.Now).AddDate(0, 0, -rangeDays)

	var tracked []domain.InventoryItem
	for _, item := range items {
		if opts.Category != "" && item.Category != opts.Category {
			continue
		}
		if len(item.PriceHistory) > 0 {
			tracked = append(tracked, item)
		}
	}

	report := Analytics{
		StoreComparison:      []StoreComparison{},
		CategoryAnalysis:     []CategoryAnalysis{},
		BestDeals:            []Deal{},
		WorstDeals:           []Deal{},
		StockUpAlerts:        []StockUpAlert{},
		StoreRecommendations: []StoreAdvice{},
	}
	report.Overview.TotalItemsTracked = len(tracked)

	stores := map[string]*bucket{}
	var storeOrder []string
	categories := map[string]*bucket{}
	var categoryOrder []string

	for _, item := range tracked {
		report.Overview.TotalPriceEntries += len(item.PriceHistory)
		category := categoryOrDefault(item.Category)

		for _, obs := range item.PriceHistory {
			if obs.Date.Before(cutoff) {
				continue
			}
			if _, ok := stores[obs.Store]; !ok {
				stores[obs.Store] = &bucket{name: obs.Store, items: map[string]struct{}{}}
				storeOrder = append(storeOrder, obs.Store)
			}
			stores[obs.Store].add(item.Name, obs.Price)

			if _, ok := categories[category]; !ok {
				categories[category] = &bucket{name: category, items: map[string]struct{}{}}
				categoryOrder = append(categoryOrder, category)
			}
			categories[category].add(item.Name, obs.Price)
		}
	}

	for _, name := range storeOrder {
		b := stores[name]
		report.StoreComparison = append(report.StoreComparison, StoreComparison{
			Store:        name,
			AveragePrice: b.total.Div(decimal.NewFromInt(int64(b.count))).Round(2),
			ItemCount:    len(b.items),
			TotalEntries: b.count,
			TotalSpent:   b.total,
		})
	}
	sort.SliceStable(report.StoreComparison, func(i, j int) bool {
		return report.StoreComparison[i].AveragePrice.LessThan(report.StoreComparison[j].AveragePrice)
	})

	for _, name := range categoryOrder {
		b := categories[name]
		report.CategoryAnalysis = append(report.CategoryAnalysis, CategoryAnalysis{
			Category:     name,
			AveragePrice: b.total.Div(decimal.NewFromInt(int64(b.count))).Round(2),
			ItemCount:    len(b.items),
			TotalSpent:   b.total,
			PricePerItem: b.total.Div(decimal.NewFromInt(int64(len(b.items)))).Round(2),
		})
	}
	sort.SliceStable(report.CategoryAnalysis, func(i, j int) bool {
		return report.CategoryAnalysis[i].TotalSpent.GreaterThan(report.CategoryAnalysis[j].TotalSpent)
	})

	deals := rankDeals(tracked)
	report.BestDeals = append(report.BestDeals, deals[:min(bestDealsLimit, len(deals))]...)
	for i := len(deals) - 1; i >= 0 && i >= len(deals)-worstDealsLimit; i-- {
		report.WorstDeals = append(report.WorstDeals, deals[i])
	}

	for i := range tracked {
		item := &tracked[i]
		if !QualifiesForStockUp(item) {
			continue
		}
		report.StockUpAlerts = append(report.StockUpAlerts, StockUpAlert{
			ItemID:       item.ID,
			ItemName:     item.Name,
			Category:     categoryOrDefault(item.Category),
			CurrentPrice: item.CurrentBestPrice.Price,
			AveragePrice: meanPrice(item.PriceHistory).Round(2),
			Store:        item.CurrentBestPrice.Store,
		})
	}

	if len(report.StoreComparison) > 1 {
		best := report.StoreComparison[0]
		worst := report.StoreComparison[len(report.StoreComparison)-1]
		report.StoreRecommendations = append(report.StoreRecommendations, StoreAdvice{
			Type:           "best_value",
			Store:          best.Store,
			Reason:         fmt.Sprintf("Lowest average prices (%s avg)", opts.Currency.Format(best.AveragePrice)),
			SavingsPerItem: worst.AveragePrice.Sub(best.AveragePrice),
		})
	}

	return report
}

// rankDeals scores every item with at least two observations, highest percentage first
func rankDeals(items []domain.InventoryItem) []Deal {
	var deals []Deal
	for i := range items {
		item := &items[i]
		percent, ok := DealPercent(item)
		if !ok {
			continue
		}
		stats := ComputeStatistics(item.PriceHistory)
		deals = append(deals, Deal{
			ItemID:           item.ID,
			ItemName:         item.Name,
			Category:         categoryOrDefault(item.Category),
			LowestPrice:      stats.Lowest,
			HighestPrice:     stats.Highest,
			SavingsPercent:   percent,
			SavingsAmount:    stats.Highest.Sub(stats.Lowest),
			CurrentBestPrice: item.CurrentBestPrice,
		})
	}
	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].SavingsPercent.GreaterThan(deals[j].SavingsPercent)
	})
	return deals
}

func categoryOrDefault(category string) string {
	if category == "" {
		return uncategorized
	}
	return category
}
