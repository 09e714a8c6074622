// Package optimizer picks the best known price and store for every line of a
// shopping list and recommends a bounded store route.
package optimizer

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/docbear71/food-inventory-backend/internal/domain"
	"github.com/docbear71/food-inventory-backend/internal/usecase/matcher"
)

// Mode selects what the optimizer favours when ordering prices and stores
type Mode string

const (
	ModeSavings     Mode = "savings"
	ModeConvenience Mode = "convenience"
)

// Route efficiency labels
const (
	EfficiencyOptimal       = "optimal"
	EfficiencyGood          = "good"
	EfficiencyConsolidating = "consider_consolidating"
)

var hundred = decimal.NewFromInt(100)

// EstimateFunc prices an item that has no observed price.
// It reports false when no estimate is available.
type EstimateFunc func(item domain.ShoppingListItem) (decimal.Decimal, bool)

// Request is the input of an optimization
type Request struct {
	Items           []domain.ShoppingListItem
	Budget          decimal.NullDecimal
	PreferredStores []string
	// MaxStores bounds the route; nil means Config.DefaultMaxStores
	MaxStores *int
	Mode      Mode
	// Estimate is consulted for unpriced items before the flat default
	Estimate EstimateFunc
}

// StorePrice is one store's current price for an item
type StorePrice struct {
	Store    string          `json:"store"`
	Price    decimal.Decimal `json:"price"`
	Date     time.Time       `json:"date"`
	IsOnSale bool            `json:"isOnSale"`
	Savings  decimal.Decimal `json:"savings"`

	// UnitPrice is the observed price per unit of size, when a size was recorded
	UnitPrice decimal.NullDecimal `json:"unitPrice"`
}

// Item is one optimized shopping list line
type Item struct {
	Name           string             `json:"name"`
	Amount         string             `json:"amount"`
	Unit           string             `json:"unit"`
	Category       string             `json:"category"`
	ItemKey        string             `json:"itemKey,omitempty"`
	BestPrice      *StorePrice        `json:"bestPrice"`
	Alternatives   []StorePrice       `json:"alternatives"`
	EstimatedPrice decimal.Decimal    `json:"estimatedPrice"`
	PriceSource    domain.PriceSource `json:"priceSource"`
}

// StoreRecommendation groups the items whose best price is at one store
type StoreRecommendation struct {
	Store        string          `json:"store"`
	Items        []string        `json:"items"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	TotalSavings decimal.Decimal `json:"totalSavings"`
}

// ConsolidationSavings estimates what limiting the route saves
type ConsolidationSavings struct {
	TimeSavedMinutes int             `json:"timeSaved"`
	PotentialSavings decimal.Decimal `json:"potentialSavings"`
}

// StoreRoute is the bounded set of stores to visit
type StoreRoute struct {
	RecommendedStores    []StoreRecommendation `json:"recommendedStores"`
	ConsolidationSavings ConsolidationSavings  `json:"consolidationSavings"`
	RouteEfficiency      string                `json:"routeEfficiency"`
}

// BudgetCut suggests dropping an item to get back under budget
type BudgetCut struct {
	Action  string          `json:"action"`
	Item    string          `json:"item"`
	Savings decimal.Decimal `json:"savings"`
	Reason  string          `json:"reason"`
}

// BudgetAnalysis compares the list cost with the budget
type BudgetAnalysis struct {
	Budget          decimal.Decimal `json:"budget"`
	EstimatedCost   decimal.Decimal `json:"estimatedCost"`
	Remaining       decimal.Decimal `json:"remaining"`
	OverBudget      bool            `json:"overBudget"`
	Recommendations []BudgetCut     `json:"recommendations"`
}

// Summary condenses an optimization
type Summary struct {
	ItemCount       int             `json:"itemCount"`
	StoresNeeded    int             `json:"storesNeeded"`
	AvgPricePerItem decimal.Decimal `json:"avgPricePerItem"`
	SavingsRate     decimal.Decimal `json:"savingsRate"`
}

// Result is the outcome of an optimization
type Result struct {
	Items                []Item                `json:"items"`
	StoreRecommendations []StoreRecommendation `json:"storeRecommendations"`
	StoreRoute           StoreRoute            `json:"storeRoute"`
	TotalCost            decimal.Decimal       `json:"totalCost"`
	TotalSavings         decimal.Decimal       `json:"totalSavings"`
	BudgetAnalysis       *BudgetAnalysis       `json:"budgetAnalysis"`
	Summary              Summary               `json:"summary"`
}

// Optimize resolves a price for every requested item against the user's
// inventory and builds the store route and budget analysis.
// It does not modify its inputs.
func Optimize(inventory []domain.InventoryItem, req Request, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	if len(req.Items) == 0 {
		return nil, domain.NewValidationError("items", "shopping list required")
	}
	if req.Budget.Valid && req.Budget.Decimal.IsNegative() {
		return nil, domain.NewValidationError("budget", "cannot be negative")
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, domain.NewValidationError("items.name", "cannot be empty")
		}
	}

	maxStores := cfg.DefaultMaxStores
	if req.MaxStores != nil {
		if *req.MaxStores <= 0 {
			return nil, domain.NewValidationError("maxStores", "must be at least 1")
		}
		maxStores = *req.MaxStores
	}

	result := &Result{
		Items:                make([]Item, 0, len(req.Items)),
		StoreRecommendations: []StoreRecommendation{},
		TotalCost:            decimal.Zero,
		TotalSavings:         decimal.Zero,
	}

	stores := map[string]*StoreRecommendation{}
	var storeOrder []string

	for _, requested := range req.Items {
		item := resolveItem(requested, inventory, req, cfg)
		result.Items = append(result.Items, item)
		result.TotalCost = result.TotalCost.Add(item.EstimatedPrice)

		if item.BestPrice == nil {
			continue
		}
		result.TotalSavings = result.TotalSavings.Add(item.BestPrice.Savings)

		rec, ok := stores[item.BestPrice.Store]
		if !ok {
			rec = &StoreRecommendation{Store: item.BestPrice.Store, Items: []string{}}
			stores[item.BestPrice.Store] = rec
			storeOrder = append(storeOrder, item.BestPrice.Store)
		}
		rec.Items = append(rec.Items, item.Name)
		rec.TotalCost = rec.TotalCost.Add(item.BestPrice.Price)
		rec.TotalSavings = rec.TotalSavings.Add(item.BestPrice.Savings)
	}

	for _, store := range storeOrder {
		result.StoreRecommendations = append(result.StoreRecommendations, *stores[store])
	}

	result.StoreRoute = planRoute(result.StoreRecommendations, maxStores, req.Mode, cfg)

	if req.Budget.Valid {
		result.BudgetAnalysis = analyzeBudget(result.Items, result.TotalCost, req.Budget.Decimal, cfg)
	}

	result.Summary = summarize(result, len(result.StoreRecommendations))
	return result, nil
}

func resolveItem(requested domain.ShoppingListItem, inventory []domain.InventoryItem, req Request, cfg Config) Item {
	matches := matcher.Match(requested.Name, inventory)

	item := Item{
		Name:         strings.TrimSpace(requested.Name),
		Amount:       requested.Amount,
		Unit:         requested.Unit,
		Category:     categoryOf(requested, matches, cfg),
		ItemKey:      requested.ItemKey,
		Alternatives: []StorePrice{},
	}

	prices := currentPrices(matches)
	if len(prices) == 0 {
		item.EstimatedPrice = cfg.DefaultEstimate
		item.PriceSource = domain.PriceSourceNone
		if req.Estimate != nil {
			if estimate, ok := req.Estimate(requested); ok && estimate.IsPositive() {
				item.EstimatedPrice = estimate
				item.PriceSource = domain.PriceSourceAI
			}
		}
		return item
	}

	rankPrices(prices, req.Mode, req.PreferredStores)

	best := prices[0]
	item.BestPrice = &best
	item.EstimatedPrice = best.Price
	item.PriceSource = domain.PriceSourceUserManual
	for i := 1; i < len(prices) && len(item.Alternatives) < cfg.MaxAlternatives; i++ {
		item.Alternatives = append(item.Alternatives, prices[i])
	}
	return item
}

// currentPrices keeps each store's most recent observation across all
// matched inventory items, in the order stores were first seen
func currentPrices(matches []domain.InventoryItem) []StorePrice {
	latest := map[string]int{}
	var prices []StorePrice

	for _, match := range matches {
		for _, obs := range match.PriceHistory {
			if !obs.Price.IsPositive() {
				continue
			}
			candidate := StorePrice{
				Store:     obs.Store,
				Price:     obs.Price,
				Date:      obs.Date,
				IsOnSale:  obs.IsOnSale,
				Savings:   savingsAgainst(match.AveragePrice, obs.Price),
				UnitPrice: obs.UnitPrice,
			}
			idx, seen := latest[obs.Store]
			if !seen {
				latest[obs.Store] = len(prices)
				prices = append(prices, candidate)
				continue
			}
			if obs.Date.After(prices[idx].Date) {
				prices[idx] = candidate
			}
		}
	}
	return prices
}

func savingsAgainst(average, price decimal.Decimal) decimal.Decimal {
	if !average.IsPositive() {
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, average.Sub(price))
}

// rankPrices orders the per-store prices for the mode. Convenience puts the
// preferred stores first and keeps price order inside each group; every
// other mode is cheapest first.
func rankPrices(prices []StorePrice, mode Mode, preferred []string) {
	if mode != ModeConvenience {
		sort.SliceStable(prices, func(i, j int) bool {
			return prices[i].Price.LessThan(prices[j].Price)
		})
		return
	}

	isPreferred := make(map[string]bool, len(preferred))
	for _, store := range preferred {
		isPreferred[matcher.Normalize(store)] = true
	}
	rank := func(p StorePrice) int {
		if isPreferred[matcher.Normalize(p.Store)] {
			return 0
		}
		return 1
	}
	sort.SliceStable(prices, func(i, j int) bool {
		ri, rj := rank(prices[i]), rank(prices[j])
		if ri != rj {
			return ri < rj
		}
		return prices[i].Price.LessThan(prices[j].Price)
	})
}

func categoryOf(requested domain.ShoppingListItem, matches []domain.InventoryItem, cfg Config) string {
	if len(matches) > 0 && matches[0].Category != "" {
		return matches[0].Category
	}
	if requested.Category != "" {
		return requested.Category
	}
	return cfg.FallbackCategory
}

func planRoute(stores []StoreRecommendation, maxStores int, mode Mode, cfg Config) StoreRoute {
	sorted := make([]StoreRecommendation, len(stores))
	copy(sorted, stores)

	sort.SliceStable(sorted, func(i, j int) bool {
		switch mode {
		case ModeSavings:
			return sorted[i].TotalSavings.GreaterThan(sorted[j].TotalSavings)
		case ModeConvenience:
			return len(sorted[i].Items) > len(sorted[j].Items)
		default:
			return sorted[i].TotalCost.GreaterThan(sorted[j].TotalCost)
		}
	})

	selected := sorted
	if len(selected) > maxStores {
		selected = selected[:maxStores]
	}

	allCost, selectedCost := decimal.Zero, decimal.Zero
	for _, s := range stores {
		allCost = allCost.Add(s.TotalCost)
	}
	for _, s := range selected {
		selectedCost = selectedCost.Add(s.TotalCost)
	}

	return StoreRoute{
		RecommendedStores: selected,
		ConsolidationSavings: ConsolidationSavings{
			TimeSavedMinutes: (len(stores) - len(selected)) * cfg.MinutesPerStore,
			PotentialSavings: decimal.Max(decimal.Zero, allCost.Sub(selectedCost)),
		},
		RouteEfficiency: efficiencyLabel(len(selected)),
	}
}

func efficiencyLabel(selected int) string {
	switch {
	case selected <= 2:
		return EfficiencyOptimal
	case selected <= 3:
		return EfficiencyGood
	default:
		return EfficiencyConsolidating
	}
}

func analyzeBudget(items []Item, totalCost, budget decimal.Decimal, cfg Config) *BudgetAnalysis {
	analysis := &BudgetAnalysis{
		Budget:          budget,
		EstimatedCost:   totalCost,
		Remaining:       budget.Sub(totalCost),
		OverBudget:      totalCost.GreaterThan(budget),
		Recommendations: []BudgetCut{},
	}
	if !analysis.OverBudget {
		return analysis
	}

	overage := totalCost.Sub(budget)
	priced := make([]Item, 0, len(items))
	for _, item := range items {
		if item.BestPrice != nil {
			priced = append(priced, item)
		}
	}
	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].BestPrice.Price.GreaterThan(priced[j].BestPrice.Price)
	})

	removed := decimal.Zero
	for _, item := range priced {
		if removed.GreaterThanOrEqual(overage) || len(analysis.Recommendations) >= cfg.MaxBudgetCuts {
			break
		}
		analysis.Recommendations = append(analysis.Recommendations, BudgetCut{
			Action:  "remove",
			Item:    item.Name,
			Savings: item.BestPrice.Price,
			Reason:  "Highest cost item",
		})
		removed = removed.Add(item.BestPrice.Price)
	}
	return analysis
}

func summarize(result *Result, storesNeeded int) Summary {
	summary := Summary{
		ItemCount:       len(result.Items),
		StoresNeeded:    storesNeeded,
		AvgPricePerItem: decimal.Zero,
		SavingsRate:     decimal.Zero,
	}
	if summary.ItemCount > 0 {
		summary.AvgPricePerItem = result.TotalCost.Div(decimal.NewFromInt(int64(summary.ItemCount))).Round(2)
	}
	if result.TotalCost.IsPositive() {
		gross := result.TotalCost.Add(result.TotalSavings)
		summary.SavingsRate = result.TotalSavings.Div(gross).Mul(hundred).Round(1)
	}
	return summary
}
