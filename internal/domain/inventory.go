package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the layout used for calendar dates (observation date, sale end date)
const DateLayout = "2006-01-02"

// PriceObservation is one recorded sighting of an item's price at a store.
// Observations are appended to an item's history and never mutated.
type PriceObservation struct {
	ID             uuid.UUID           `json:"id"`
	Price          decimal.Decimal     `json:"price"`
	Store          string              `json:"store"`
	Date           time.Time           `json:"date"`
	Size           decimal.Decimal     `json:"size"`
	Unit           string              `json:"unit,omitempty"`
	UnitPrice      decimal.NullDecimal `json:"unitPrice"`
	IsOnSale       bool                `json:"isOnSale"`
	SaleEndDate    *time.Time          `json:"saleEndDate,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	Currency       string              `json:"currency"`
	CurrencySymbol string              `json:"currencySymbol"`
	AddedBy        string              `json:"addedBy"`
	AddedDate      time.Time           `json:"addedDate"`
}

// Validate ensures the observation can be appended to a ledger
func (o *PriceObservation) Validate() error {
	if !o.Price.IsPositive() {
		return NewValidationError("price", "must be greater than zero")
	}
	if strings.TrimSpace(o.Store) == "" {
		return NewValidationError("store", "cannot be empty")
	}
	if o.Size.IsNegative() {
		return NewValidationError("size", "cannot be negative")
	}
	return nil
}

// BestPrice is the snapshot kept as an item's current best price
type BestPrice struct {
	Price     decimal.Decimal     `json:"price"`
	Store     string              `json:"store"`
	Date      time.Time           `json:"date"`
	UnitPrice decimal.NullDecimal `json:"unitPrice"`
	IsOnSale  bool                `json:"isOnSale"`
}

// PriceAlert holds a user's alert preferences for one item
type PriceAlert struct {
	Enabled        bool                `json:"enabled"`
	TargetPrice    decimal.NullDecimal `json:"targetPrice"`
	AlertWhenBelow bool                `json:"alertWhenBelow"`
	LastAlertSent  *time.Time          `json:"lastAlertSent,omitempty"`
}

// Validate ensures an enabled alert has a usable target
func (a *PriceAlert) Validate() error {
	if !a.Enabled {
		return nil
	}
	if !a.TargetPrice.Valid || !a.TargetPrice.Decimal.IsPositive() {
		return NewValidationError("targetPrice", "must be greater than zero when the alert is enabled")
	}
	return nil
}

// InventoryItem is one tracked product in a user's inventory.
// Only the fields the pricing core reads or maintains are modelled.
type InventoryItem struct {
	ID               uuid.UUID          `json:"id"`
	UserID           string             `json:"userId"`
	Name             string             `json:"name"`
	Category         string             `json:"category"`
	Quantity         decimal.Decimal    `json:"quantity"`
	Unit             string             `json:"unit"`
	PriceHistory     []PriceObservation `json:"priceHistory"`
	CurrentBestPrice *BestPrice         `json:"currentBestPrice"`
	AveragePrice     decimal.Decimal    `json:"averagePrice"`
	LowestPrice      decimal.Decimal    `json:"lowestPrice"`
	HighestPrice     decimal.Decimal    `json:"highestPrice"`
	PriceAlert       *PriceAlert        `json:"priceAlert,omitempty"`
}

// Validate ensures the item adheres to domain rules
func (i *InventoryItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if i.UserID == "" {
		return NewValidationError("userId", "cannot be empty")
	}
	return nil
}

// QuantityLabel renders the held amount as "qty unit"
func (i *InventoryItem) QuantityLabel() string {
	return strings.TrimSpace(i.Quantity.String() + " " + i.Unit)
}

// CurrencyPosition is where the currency symbol is rendered
type CurrencyPosition string

const (
	CurrencyPositionBefore CurrencyPosition = "before"
	CurrencyPositionAfter  CurrencyPosition = "after"
)

// CurrencyPreferences is the user's display preference for money.
// It is presentation metadata only.
type CurrencyPreferences struct {
	Currency       string           `json:"currency"`
	CurrencySymbol string           `json:"currencySymbol"`
	Position       CurrencyPosition `json:"currencyPosition"`
	DecimalPlaces  int32            `json:"decimalPlaces"`
}

// DefaultCurrencyPreferences is used when the user has not stored any
func DefaultCurrencyPreferences() CurrencyPreferences {
	return CurrencyPreferences{
		Currency:       "USD",
		CurrencySymbol: "$",
		Position:       CurrencyPositionBefore,
		DecimalPlaces:  2,
	}
}

// Format renders an amount with the user's symbol, position and precision
func (c CurrencyPreferences) Format(amount decimal.Decimal) string {
	places := c.DecimalPlaces
	if places < 0 {
		places = 2
	}
	value := amount.StringFixed(places)
	if c.Position == CurrencyPositionAfter {
		return value + c.CurrencySymbol
	}
	return c.CurrencySymbol + value
}
