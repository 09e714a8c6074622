// Package ledger maintains the per-item price observation history and the
// statistics derived from it.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

var (
	// stockUpRatio is the share of the mean price at or below which the
	// current best price triggers a stock-up alert
	stockUpRatio = decimal.RequireFromString("0.8")

	hundred = decimal.NewFromInt(100)
)

// Statistics are the aggregates derived from an item's price history
type Statistics struct {
	Average      decimal.Decimal `json:"average"`
	Lowest       decimal.Decimal `json:"lowest"`
	Highest      decimal.Decimal `json:"highest"`
	TotalEntries int             `json:"totalEntries"`
}

// Pricing is an item's statistics together with its best price pointer
type Pricing struct {
	ItemID           uuid.UUID         `json:"itemId"`
	ItemName         string            `json:"itemName"`
	Statistics       Statistics        `json:"statistics"`
	CurrentBestPrice *domain.BestPrice `json:"currentBestPrice"`
}

// ComputeStatistics aggregates every observation with a positive price.
// Average is rounded to cents; all values are zero when no observation qualifies.
// TotalEntries counts every observation in the history.
func ComputeStatistics(history []domain.PriceObservation) Statistics {
	stats := Statistics{TotalEntries: len(history)}

	sum := decimal.Zero
	count := 0
	for _, obs := range history {
		if !obs.Price.IsPositive() {
			continue
		}
		if count == 0 || obs.Price.LessThan(stats.Lowest) {
			stats.Lowest = obs.Price
		}
		if count == 0 || obs.Price.GreaterThan(stats.Highest) {
			stats.Highest = obs.Price
		}
		sum = sum.Add(obs.Price)
		count++
	}

	if count > 0 {
		stats.Average = sum.Div(decimal.NewFromInt(int64(count))).Round(2)
	}
	return stats
}

// Record validates obs, appends it to the item's history and refreshes the
// derived statistics. Prices are kept to the cent and sizes to three
// decimals, the precision of the stored columns. The current best price
// only moves when it is unset or the new price is strictly lower.
func Record(item *domain.InventoryItem, obs domain.PriceObservation) (domain.PriceObservation, error) {
	obs.Store = strings.TrimSpace(obs.Store)
	obs.Price = obs.Price.Round(2)
	obs.Size = obs.Size.Round(3)
	if err := obs.Validate(); err != nil {
		return domain.PriceObservation{}, err
	}

	if obs.ID == uuid.Nil {
		obs.ID = uuid.New()
	}
	obs.Date = calendarDate(obs.Date)
	if obs.Size.IsPositive() {
		obs.UnitPrice = decimal.NewNullDecimal(obs.Price.DivRound(obs.Size, 4))
	} else {
		obs.UnitPrice = decimal.NullDecimal{}
	}

	item.PriceHistory = append(item.PriceHistory, obs)
	applyStatistics(item)

	if item.CurrentBestPrice == nil || obs.Price.LessThan(item.CurrentBestPrice.Price) {
		item.CurrentBestPrice = bestPriceFrom(obs)
	}

	return obs, nil
}

// Remove deletes one observation from the item's history. The best price
// is reset to the cheapest remaining observation, or cleared when none remain.
func Remove(item *domain.InventoryItem, observationID uuid.UUID) error {
	idx := -1
	for i := range item.PriceHistory {
		if item.PriceHistory[i].ID == observationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.NewNotFoundError("price entry", observationID.String())
	}

	item.PriceHistory = append(item.PriceHistory[:idx:idx], item.PriceHistory[idx+1:]...)
	applyStatistics(item)

	item.CurrentBestPrice = nil
	for _, obs := range item.PriceHistory {
		if !obs.Price.IsPositive() {
			continue
		}
		if item.CurrentBestPrice == nil || obs.Price.LessThan(item.CurrentBestPrice.Price) {
			item.CurrentBestPrice = bestPriceFrom(obs)
		}
	}
	return nil
}

// History returns a copy of the item's observations, newest date first.
// Observations on the same date keep most recently added first.
func History(item *domain.InventoryItem) []domain.PriceObservation {
	out := make([]domain.PriceObservation, len(item.PriceHistory))
	copy(out, item.PriceHistory)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].AddedDate.After(out[j].AddedDate)
	})
	return out
}

// PricingOf snapshots the item's derived pricing state
func PricingOf(item *domain.InventoryItem) Pricing {
	return Pricing{
		ItemID:           item.ID,
		ItemName:         item.Name,
		Statistics:       ComputeStatistics(item.PriceHistory),
		CurrentBestPrice: item.CurrentBestPrice,
	}
}

// QualifiesForStockUp reports whether the current best price is at or below
// 80% of the mean of all historical prices.
func QualifiesForStockUp(item *domain.InventoryItem) bool {
	if item.CurrentBestPrice == nil || len(item.PriceHistory) == 0 {
		return false
	}
	return item.CurrentBestPrice.Price.LessThanOrEqual(meanPrice(item.PriceHistory).Mul(stockUpRatio))
}

// DealPercent returns (highest - lowest) / highest * 100 over the item's
// positive prices. Items with fewer than two observations have no deal.
func DealPercent(item *domain.InventoryItem) (decimal.Decimal, bool) {
	stats := ComputeStatistics(item.PriceHistory)
	if countPositive(item.PriceHistory) < 2 || stats.Highest.IsZero() {
		return decimal.Zero, false
	}
	return stats.Highest.Sub(stats.Lowest).Div(stats.Highest).Mul(hundred).Round(2), true
}

func applyStatistics(item *domain.InventoryItem) {
	stats := ComputeStatistics(item.PriceHistory)
	item.AveragePrice = stats.Average
	item.LowestPrice = stats.Lowest
	item.HighestPrice = stats.Highest
}

func bestPriceFrom(obs domain.PriceObservation) *domain.BestPrice {
	return &domain.BestPrice{
		Price:     obs.Price,
		Store:     obs.Store,
		Date:      obs.Date,
		UnitPrice: obs.UnitPrice,
		IsOnSale:  obs.IsOnSale,
	}
}

func meanPrice(history []domain.PriceObservation) decimal.Decimal {
	if len(history) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, obs := range history {
		sum = sum.Add(obs.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(history))))
}

func countPositive(history []domain.PriceObservation) int {
	n := 0
	for _, obs := range history {
		if obs.Price.IsPositive() {
			n++
		}
	}
	return n
}

// calendarDate drops the time of day, keeping the date in UTC
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
