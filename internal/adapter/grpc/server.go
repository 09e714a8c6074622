package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/docbear71/food-inventory-backend/internal/domain"
	"github.com/docbear71/food-inventory-backend/internal/usecase/aggregator"
	"github.com/docbear71/food-inventory-backend/internal/usecase/ledger"
	"github.com/docbear71/food-inventory-backend/internal/usecase/optimizer"
	"github.com/docbear71/food-inventory-backend/internal/usecase/savedlist"
)

// Server implements the PriceEngine gRPC server
type Server struct {
	LedgerService     *ledger.LedgerService
	AggregatorService *aggregator.AggregatorService
	OptimizerService  *optimizer.OptimizerService
	SavedListService  *savedlist.SavedListService
}

// NewServer creates a new gRPC server instance
func NewServer(
	ledgerService *ledger.LedgerService,
	aggregatorService *aggregator.AggregatorService,
	optimizerService *optimizer.OptimizerService,
	savedListService *savedlist.SavedListService,
) *Server {
	return &Server{
		LedgerService:     ledgerService,
		AggregatorService: aggregatorService,
		OptimizerService:  optimizerService,
		SavedListService:  savedListService,
	}
}

type recordPriceRequest struct {
	ItemID      string          `json:"itemId"`
	Price       decimal.Decimal `json:"price"`
	Store       string          `json:"store"`
	Date        string          `json:"date"`
	Size        decimal.Decimal `json:"size"`
	Unit        string          `json:"unit"`
	IsOnSale    bool            `json:"isOnSale"`
	SaleEndDate string          `json:"saleEndDate"`
	Notes       string          `json:"notes"`
}

// RecordPrice handles the RecordPrice RPC
func (s *Server) RecordPrice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req recordPriceRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}

	itemID, err := parseID("itemId", req.ItemID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	input := ledger.RecordObservationInput{
		UserID:   userID,
		ItemID:   itemID,
		Price:    req.Price,
		Store:    req.Store,
		Date:     date,
		Size:     req.Size,
		Unit:     req.Unit,
		IsOnSale: req.IsOnSale,
		Notes:    req.Notes,
	}
	if req.SaleEndDate != "" {
		end, err := parseDate("saleEndDate", req.SaleEndDate)
		if err != nil {
			return nil, err
		}
		input.SaleEndDate = &end
	}

	result, err := s.LedgerService.RecordObservation(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(result)
}

type itemRequest struct {
	ItemID string `json:"itemId"`
}

// GetPriceHistory handles the GetPriceHistory RPC
func (s *Server) GetPriceHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req itemRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	itemID, err := parseID("itemId", req.ItemID)
	if err != nil {
		return nil, err
	}

	view, err := s.LedgerService.GetPriceHistory(ctx, userID, itemID)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(view)
}

type deletePriceRequest struct {
	ItemID  string `json:"itemId"`
	PriceID string `json:"priceId"`
}

// DeletePrice handles the DeletePrice RPC
func (s *Server) DeletePrice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req deletePriceRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	itemID, err := parseID("itemId", req.ItemID)
	if err != nil {
		return nil, err
	}
	priceID, err := parseID("priceId", req.PriceID)
	if err != nil {
		return nil, err
	}

	pricing, err := s.LedgerService.DeleteObservation(ctx, userID, itemID, priceID)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"pricing": pricing})
}

type setPriceAlertRequest struct {
	ItemID         string              `json:"itemId"`
	Enabled        bool                `json:"enabled"`
	TargetPrice    decimal.NullDecimal `json:"targetPrice"`
	AlertWhenBelow *bool               `json:"alertWhenBelow"`
}

// SetPriceAlert handles the SetPriceAlert RPC
func (s *Server) SetPriceAlert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req setPriceAlertRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	itemID, err := parseID("itemId", req.ItemID)
	if err != nil {
		return nil, err
	}

	alert := domain.PriceAlert{
		Enabled:        req.Enabled,
		TargetPrice:    req.TargetPrice,
		AlertWhenBelow: req.AlertWhenBelow == nil || *req.AlertWhenBelow,
	}
	stored, err := s.LedgerService.SetPriceAlert(ctx, userID, itemID, alert)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"priceAlert": stored})
}

type analyticsRequest struct {
	Range    int    `json:"range"`
	Category string `json:"category"`
}

// GetPriceAnalytics handles the GetPriceAnalytics RPC
func (s *Server) GetPriceAnalytics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req analyticsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	if req.Range < 0 {
		return nil, mapError(domain.NewValidationError("range", "cannot be negative"))
	}

	report, err := s.LedgerService.GetAnalytics(ctx, userID, req.Range, req.Category)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(report)
}

type sourceDTO struct {
	Type       string              `json:"type"`
	Label      string              `json:"label"`
	Items      []domain.Ingredient `json:"items"`
	RecipeID   string              `json:"recipeId"`
	RecipeIDs  []string            `json:"recipeIds"`
	MealPlanID string              `json:"mealPlanId"`
}

func (d sourceDTO) toDomain() (domain.ShoppingSource, error) {
	kind, err := domain.ParseSourceKind(d.Type)
	if err != nil {
		return nil, err
	}
	switch kind {
	case domain.SourceKindSingleRecipe:
		if strings.TrimSpace(d.RecipeID) == "" {
			return nil, domain.NewValidationError("source.recipeId", "recipe id is required")
		}
		return domain.SingleRecipeSource{RecipeID: d.RecipeID}, nil
	case domain.SourceKindMultipleRecipes:
		return domain.MultipleRecipesSource{RecipeIDs: d.RecipeIDs}, nil
	case domain.SourceKindMealPlan:
		if strings.TrimSpace(d.MealPlanID) == "" {
			return nil, domain.NewValidationError("source.mealPlanId", "meal plan id is required")
		}
		return domain.MealPlanSource{MealPlanID: d.MealPlanID}, nil
	default:
		return domain.ManualSource{Label: d.Label, Items: d.Items}, nil
	}
}

type generateRequest struct {
	Sources            []sourceDTO `json:"sources"`
	SkipInventoryCheck bool        `json:"skipInventoryCheck"`
}

// GenerateShoppingList handles the GenerateShoppingList RPC
func (s *Server) GenerateShoppingList(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req generateRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}

	sources := make([]domain.ShoppingSource, 0, len(req.Sources))
	for _, dto := range req.Sources {
		source, err := dto.toDomain()
		if err != nil {
			return nil, mapError(err)
		}
		sources = append(sources, source)
	}

	result, err := s.AggregatorService.Generate(ctx, userID, sources, aggregator.Options{SkipInventoryCheck: req.SkipInventoryCheck})
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(result)
}

type optimizeRequest struct {
	Items           []domain.ShoppingListItem `json:"items"`
	Budget          decimal.NullDecimal       `json:"budget"`
	PreferredStores []string                  `json:"preferredStores"`
	MaxStores       *int                      `json:"maxStores"`
	Mode            string                    `json:"mode"`
}

// OptimizeShopping handles the OptimizeShopping RPC
func (s *Server) OptimizeShopping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req optimizeRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}

	mode := optimizer.Mode(req.Mode)
	switch mode {
	case "":
		mode = optimizer.ModeSavings
	case optimizer.ModeSavings, optimizer.ModeConvenience:
	default:
		return nil, mapError(domain.NewValidationError("mode", "must be savings or convenience"))
	}

	result, err := s.OptimizerService.Optimize(ctx, userID, optimizer.Request{
		Items:           req.Items,
		Budget:          req.Budget,
		PreferredStores: req.PreferredStores,
		MaxStores:       req.MaxStores,
		Mode:            mode,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(result)
}

type createSavedListRequest struct {
	Name             string                    `json:"name"`
	Description      string                    `json:"description"`
	ListType         string                    `json:"listType"`
	ContextName      string                    `json:"contextName"`
	SourceRecipeIDs  []string                  `json:"sourceRecipeIds"`
	SourceMealPlanID string                    `json:"sourceMealPlanId"`
	Items            []domain.ShoppingListItem `json:"items"`
	CategorizedItems domain.CategorizedItems   `json:"categorizedItems"`
	Metadata         map[string]string         `json:"metadata"`
	Color            string                    `json:"color"`
	Tags             []string                  `json:"tags"`
	IsTemplate       bool                      `json:"isTemplate"`
}

// CreateSavedList handles the CreateSavedList RPC
func (s *Server) CreateSavedList(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req createSavedListRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}

	list, err := s.SavedListService.Create(ctx, savedlist.CreateInput{
		UserID:           userID,
		Name:             req.Name,
		Description:      req.Description,
		ListType:         domain.ListType(req.ListType),
		ContextName:      req.ContextName,
		SourceRecipeIDs:  req.SourceRecipeIDs,
		SourceMealPlanID: req.SourceMealPlanID,
		Items:            append(req.Items, flatten(req.CategorizedItems)...),
		Metadata:         req.Metadata,
		Color:            req.Color,
		Tags:             req.Tags,
		IsTemplate:       req.IsTemplate,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"savedList": list})
}

type updateItemsRequest struct {
	ListID string                    `json:"listId"`
	Items  []domain.ShoppingListItem `json:"items"`
	Mode   string                    `json:"mode"`
}

// UpdateSavedListItems handles the UpdateSavedListItems RPC
func (s *Server) UpdateSavedListItems(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req updateItemsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	listID, err := parseID("listId", req.ListID)
	if err != nil {
		return nil, err
	}

	list, err := s.SavedListService.AddOrReplaceItems(ctx, savedlist.UpdateItemsInput{
		UserID: userID,
		ListID: listID,
		Items:  req.Items,
		Mode:   req.Mode,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"savedList": list})
}

type loadSavedListRequest struct {
	ListID                string `json:"listId"`
	ResetPurchased        *bool  `json:"resetPurchased"`
	UpdateInventoryStatus *bool  `json:"updateInventoryStatus"`
	StartShoppingSession  bool   `json:"startShoppingSession"`
}

// LoadSavedList handles the LoadSavedList RPC
func (s *Server) LoadSavedList(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req loadSavedListRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	listID, err := parseID("listId", req.ListID)
	if err != nil {
		return nil, err
	}

	opts := savedlist.DefaultLoadOptions()
	if req.ResetPurchased != nil {
		opts.ResetPurchased = *req.ResetPurchased
	}
	if req.UpdateInventoryStatus != nil {
		opts.UpdateInventoryStatus = *req.UpdateInventoryStatus
	}
	opts.StartShoppingSession = req.StartShoppingSession

	loaded, err := s.SavedListService.Load(ctx, userID, listID, opts)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(loaded)
}

type listSavedListsRequest struct {
	IncludeArchived bool     `json:"includeArchived"`
	ListType        string   `json:"listType"`
	Tags            []string `json:"tags"`
	Page            int      `json:"page"`
	Limit           int      `json:"limit"`
}

// ListSavedLists handles the ListSavedLists RPC
func (s *Server) ListSavedLists(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req listSavedListsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}

	page, err := s.SavedListService.List(ctx, savedlist.ListFilter{
		UserID:          userID,
		IncludeArchived: req.IncludeArchived,
		ListType:        domain.ListType(req.ListType),
		Tags:            req.Tags,
		Page:            req.Page,
		Limit:           req.Limit,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(page)
}

type archiveRequest struct {
	ListID   string `json:"listId"`
	Archived *bool  `json:"archived"`
}

// ArchiveSavedList handles the ArchiveSavedList RPC
func (s *Server) ArchiveSavedList(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req archiveRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	listID, err := parseID("listId", req.ListID)
	if err != nil {
		return nil, err
	}

	list, err := s.SavedListService.Archive(ctx, userID, listID, req.Archived == nil || *req.Archived)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"savedList": list})
}

type itemKeyRequest struct {
	ListID  string `json:"listId"`
	ItemKey string `json:"itemKey"`
}

// TogglePurchased handles the TogglePurchased RPC
func (s *Server) TogglePurchased(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req itemKeyRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	listID, err := parseID("listId", req.ListID)
	if err != nil {
		return nil, err
	}

	item, err := s.SavedListService.TogglePurchased(ctx, userID, listID, req.ItemKey)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"item": item})
}

type setItemPriceRequest struct {
	ListID  string          `json:"listId"`
	ItemKey string          `json:"itemKey"`
	Price   decimal.Decimal `json:"price"`
	Source  string          `json:"source"`
}

// SetItemPrice handles the SetItemPrice RPC
func (s *Server) SetItemPrice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req setItemPriceRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	listID, err := parseID("listId", req.ListID)
	if err != nil {
		return nil, err
	}

	item, err := s.SavedListService.SetItemPrice(ctx, savedlist.SetItemPriceInput{
		UserID:  userID,
		ListID:  listID,
		ItemKey: req.ItemKey,
		Price:   req.Price,
		Source:  domain.PriceSource(req.Source),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{"item": item})
}

func requireUser(ctx context.Context) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing user id")
	}
	return userID, nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return id, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp; empty yields the zero time
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(domain.DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid %s format: %q", field, value)
	}
	return t, nil
}

// flatten concatenates categorized lines, keeping each line's category
func flatten(items domain.CategorizedItems) []domain.ShoppingListItem {
	var out []domain.ShoppingListItem
	for _, category := range aggregator.OrderCategories(items) {
		for _, item := range items[category] {
			if item.Category == "" {
				item.Category = category
			}
			out = append(out, item)
		}
	}
	return out
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var conflictErr *domain.ConflictError
	var upstreamErr *domain.UpstreamServiceError

	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &notFoundErr):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &conflictErr):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.As(err, &upstreamErr):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
