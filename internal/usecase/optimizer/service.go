package optimizer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

// PriceEstimator suggests a price for an item with no observed price.
// Failures are reported as domain.UpstreamServiceError.
type PriceEstimator interface {
	Estimate(ctx context.Context, item domain.ShoppingListItem) (decimal.Decimal, error)
}

// OptimizerService loads the user's inventory and optimizes shopping lists against it
type OptimizerService struct {
	InventoryRepo domain.InventoryRepository
	// Estimator is optional; without it unpriced items get the flat estimate
	Estimator PriceEstimator
	Config    Config
	Logger    *zap.Logger
}

// NewOptimizerService creates a new OptimizerService instance
func NewOptimizerService(inventoryRepo domain.InventoryRepository, estimator PriceEstimator, cfg Config, logger *zap.Logger) *OptimizerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptimizerService{
		InventoryRepo: inventoryRepo,
		Estimator:     estimator,
		Config:        cfg,
		Logger:        logger.Named("optimizer"),
	}
}

// Optimize runs the optimizer for the user's current inventory
func (s *OptimizerService) Optimize(ctx context.Context, userID string, req Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, domain.NewValidationError("items", "shopping list required")
	}

	inventory, err := s.InventoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	if s.Estimator != nil && req.Estimate == nil {
		req.Estimate = s.estimateFunc(ctx, userID)
	}

	result, err := Optimize(inventory, req, s.Config)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("shopping list optimized",
		zap.String("user_id", userID),
		zap.Int("items", result.Summary.ItemCount),
		zap.Int("stores", result.Summary.StoresNeeded),
		zap.String("total_cost", result.TotalCost.StringFixed(2)),
	)
	return result, nil
}

// estimateFunc adapts the estimator to a single request. After the first
// failure the estimator is not called again for the rest of the request.
func (s *OptimizerService) estimateFunc(ctx context.Context, userID string) EstimateFunc {
	disabled := false
	return func(item domain.ShoppingListItem) (decimal.Decimal, bool) {
		if disabled {
			return decimal.Zero, false
		}
		price, err := s.Estimator.Estimate(ctx, item)
		if err != nil {
			disabled = true
			s.Logger.Warn("price estimate unavailable, using flat estimate",
				zap.String("user_id", userID),
				zap.String("item", item.Name),
				zap.Bool("upstream", domain.IsUpstream(err)),
				zap.Error(err),
			)
			return decimal.Zero, false
		}
		return price, true
	}
}
