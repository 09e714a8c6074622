package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// LedgerService handles price observation operations on inventory items
type LedgerService struct {
	InventoryRepo  domain.InventoryRepository
	PreferenceRepo domain.PreferenceRepository
	Logger         *zap.Logger

	// Now is the clock used for observation dates and analytics windows
	Now func() time.Time
	// RangeDays is the analytics window used when a request gives none
	RangeDays int
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(inventoryRepo domain.InventoryRepository, preferenceRepo domain.PreferenceRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		InventoryRepo:  inventoryRepo,
		PreferenceRepo: preferenceRepo,
		Logger:         logger.Named("ledger"),
		Now:            time.Now,
		RangeDays:      DefaultRangeDays,
	}
}

// RecordObservationInput represents the input for recording a price
type RecordObservationInput struct {
	UserID      string
	ItemID      uuid.UUID
	Price       decimal.Decimal
	Store       string
	Date        time.Time // zero means today
	Size        decimal.Decimal
	Unit        string
	IsOnSale    bool
	SaleEndDate *time.Time
	Notes       string
}

// RecordObservationResult is the outcome of recording a price
type RecordObservationResult struct {
	Observation    domain.PriceObservation `json:"observation"`
	Pricing        Pricing                 `json:"pricing"`
	AlertTriggered bool                    `json:"alertTriggered"`
}

// RecordObservation appends a price observation to one of the user's items
// and returns the refreshed statistics and best price.
func (s *LedgerService) RecordObservation(ctx context.Context, input RecordObservationInput) (*RecordObservationResult, error) {
	now := s.Now()
	obs := domain.PriceObservation{
		ID:          uuid.New(),
		Price:       input.Price,
		Store:       input.Store,
		Date:        input.Date,
		Size:        input.Size,
		Unit:        input.Unit,
		IsOnSale:    input.IsOnSale,
		SaleEndDate: input.SaleEndDate,
		Notes:       input.Notes,
		AddedBy:     input.UserID,
		AddedDate:   now,
	}
	if obs.Date.IsZero() {
		obs.Date = now
	}

	// Validate before touching storage
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	currency := s.currencyFor(ctx, input.UserID)
	obs.Currency = currency.Currency
	obs.CurrencySymbol = currency.CurrencySymbol

	var recorded domain.PriceObservation
	alertTriggered := false
	item, err := s.InventoryRepo.Update(ctx, input.UserID, input.ItemID, func(item *domain.InventoryItem) error {
		var err error
		recorded, err = Record(item, obs)
		if err != nil {
			return err
		}
		if alertFires(item.PriceAlert, recorded.Price) {
			sent := now
			item.PriceAlert.LastAlertSent = &sent
			alertTriggered = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("price recorded",
		zap.String("user_id", input.UserID),
		zap.String("item_id", item.ID.String()),
		zap.String("store", recorded.Store),
		zap.String("price", recorded.Price.String()),
		zap.Bool("alert_triggered", alertTriggered),
	)

	return &RecordObservationResult{
		Observation:    recorded,
		Pricing:        PricingOf(item),
		AlertTriggered: alertTriggered,
	}, nil
}

// PriceHistoryView is an item's price history prepared for display
type PriceHistoryView struct {
	Pricing  Pricing                    `json:"pricing"`
	History  []domain.PriceObservation  `json:"history"`
	Currency domain.CurrencyPreferences `json:"currency"`
	Alert    *domain.PriceAlert         `json:"alert,omitempty"`
}

// GetPriceHistory returns the item's history newest first with its statistics
func (s *LedgerService) GetPriceHistory(ctx context.Context, userID string, itemID uuid.UUID) (*PriceHistoryView, error) {
	item, err := s.InventoryRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	return &PriceHistoryView{
		Pricing:  PricingOf(item),
		History:  History(item),
		Currency: s.currencyFor(ctx, userID),
		Alert:    item.PriceAlert,
	}, nil
}

// DeleteObservation removes one price entry from an item
func (s *LedgerService) DeleteObservation(ctx context.Context, userID string, itemID, observationID uuid.UUID) (*Pricing, error) {
	item, err := s.InventoryRepo.Update(ctx, userID, itemID, func(item *domain.InventoryItem) error {
		return Remove(item, observationID)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("price entry deleted",
		zap.String("user_id", userID),
		zap.String("item_id", itemID.String()),
		zap.String("entry_id", observationID.String()),
	)

	pricing := PricingOf(item)
	return &pricing, nil
}

// SetPriceAlert stores the alert settings for an item. The time the last
// alert was sent is kept across updates.
func (s *LedgerService) SetPriceAlert(ctx context.Context, userID string, itemID uuid.UUID, alert domain.PriceAlert) (*domain.PriceAlert, error) {
	if err := alert.Validate(); err != nil {
		return nil, err
	}

	item, err := s.InventoryRepo.Update(ctx, userID, itemID, func(item *domain.InventoryItem) error {
		updated := alert
		if item.PriceAlert != nil {
			updated.LastAlertSent = item.PriceAlert.LastAlertSent
		}
		item.PriceAlert = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item.PriceAlert, nil
}

// GetAnalytics computes price analytics across the user's inventory
func (s *LedgerService) GetAnalytics(ctx context.Context, userID string, rangeDays int, category string) (*Analytics, error) {
	items, err := s.InventoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if rangeDays <= 0 {
		rangeDays = s.RangeDays
	}

	report := Analyze(items, AnalyticsOptions{
		RangeDays: rangeDays,
		Category:  category,
		Now:       s.Now(),
		Currency:  s.currencyFor(ctx, userID),
	})
	return &report, nil
}

// currencyFor returns the user's currency preferences, falling back to the
// defaults when none are stored or the lookup fails.
func (s *LedgerService) currencyFor(ctx context.Context, userID string) domain.CurrencyPreferences {
	if s.PreferenceRepo == nil {
		return domain.DefaultCurrencyPreferences()
	}
	prefs, err := s.PreferenceRepo.GetCurrency(ctx, userID)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.Logger.Warn("currency preferences unavailable, using defaults",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		return domain.DefaultCurrencyPreferences()
	}
	return *prefs
}

func alertFires(alert *domain.PriceAlert, price decimal.Decimal) bool {
	if alert == nil || !alert.Enabled || !alert.AlertWhenBelow || !alert.TargetPrice.Valid {
		return false
	}
	return price.LessThanOrEqual(alert.TargetPrice.Decimal)
}
