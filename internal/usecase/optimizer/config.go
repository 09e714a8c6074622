package optimizer

import "github.com/shopspring/decimal"

// Config holds the tunable constants of the optimizer
type Config struct {
	// DefaultEstimate is the placeholder price of an item nobody has priced yet
	DefaultEstimate decimal.Decimal
	// MinutesPerStore is the time saved for every store dropped from the route
	MinutesPerStore int
	// MaxAlternatives bounds the alternative stores listed per item
	MaxAlternatives int
	// MaxBudgetCuts bounds the removal suggestions of an over-budget list
	MaxBudgetCuts int
	// DefaultMaxStores applies when a request does not bound the route
	DefaultMaxStores int
	// FallbackCategory is used for items with no category at all
	FallbackCategory string
}

// DefaultConfig returns the stock optimizer constants
func DefaultConfig() Config {
	return Config{
		DefaultEstimate:  decimal.RequireFromString("3.00"),
		MinutesPerStore:  20,
		MaxAlternatives:  3,
		MaxBudgetCuts:    3,
		DefaultMaxStores: 3,
		FallbackCategory: "General",
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if !c.DefaultEstimate.IsPositive() {
		c.DefaultEstimate = d.DefaultEstimate
	}
	if c.MinutesPerStore <= 0 {
		c.MinutesPerStore = d.MinutesPerStore
	}
	if c.MaxAlternatives <= 0 {
		c.MaxAlternatives = d.MaxAlternatives
	}
	if c.MaxBudgetCuts <= 0 {
		c.MaxBudgetCuts = d.MaxBudgetCuts
	}
	if c.DefaultMaxStores <= 0 {
		c.DefaultMaxStores = d.DefaultMaxStores
	}
	if c.FallbackCategory == "" {
		c.FallbackCategory = d.FallbackCategory
	}
	return c
}
