package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

const inventoryColumns = `
	id, user_id, name, category, quantity, unit,
	average_price, lowest_price, highest_price,
	best_price, best_store, best_date, best_unit_price, best_on_sale,
	price_alert
`

var observationColumnList = []string{
	"id", "item_id", "price", "store", "observed_on", "size", "unit", "unit_price",
	"is_on_sale", "sale_end_date", "notes", "currency", "currency_symbol", "added_by", "added_at",
}

var observationColumns = strings.Join(observationColumnList, ", ")

// inventoryRepository implements domain.InventoryRepository.
// Price history lives in price_observations, ordered by position.
type inventoryRepository struct {
	db *DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *DB) domain.InventoryRepository {
	return &inventoryRepository{db: db}
}

// ListByUser retrieves every item owned by the user with its price history
func (r *inventoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory_items
		WHERE user_id = $1
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory items: %w", err)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		index[item.ID] = len(items)
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory items: %w", err)
	}

	obsQuery := `SELECT ` + prefixed("o") + `
		FROM price_observations o
		JOIN inventory_items i ON i.id = o.item_id
		WHERE i.user_id = $1
		ORDER BY o.item_id, o.position
	`
	obsRows, err := r.db.QueryContext(ctx, obsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price observations: %w", err)
	}
	defer obsRows.Close()

	for obsRows.Next() {
		itemID, obs, err := scanObservation(obsRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[itemID]; ok {
			items[i].PriceHistory = append(items[i].PriceHistory, obs)
		}
	}
	if err := obsRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price observations: %w", err)
	}

	return items, nil
}

// GetByID retrieves one of the user's items
func (r *inventoryRepository) GetByID(ctx context.Context, userID string, itemID uuid.UUID) (*domain.InventoryItem, error) {
	return r.load(ctx, r.db, userID, itemID, false)
}

// Create inserts a new item and any history it already carries
func (r *inventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	args, err := inventoryArgs(item)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO inventory_items (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := dbTx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &domain.ConflictError{Resource: "inventory item", Field: "id", Value: item.ID.String()}
	}

	if err := insertObservations(ctx, dbTx, item); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update locks the item row, applies fn and writes the item back together
// with its full price history
func (r *inventoryRepository) Update(ctx context.Context, userID string, itemID uuid.UUID, fn func(item *domain.InventoryItem) error) (*domain.InventoryItem, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	item, err := r.load(ctx, dbTx, userID, itemID, true)
	if err != nil {
		return nil, err
	}

	if err := fn(item); err != nil {
		return nil, err
	}
	item.ID = itemID
	item.UserID = userID

	args, err := inventoryArgs(item)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE inventory_items
		SET name = $3, category = $4, quantity = $5, unit = $6,
			average_price = $7, lowest_price = $8, highest_price = $9,
			best_price = $10, best_store = $11, best_date = $12, best_unit_price = $13, best_on_sale = $14,
			price_alert = $15, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	if _, err := dbTx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM price_observations WHERE item_id = $1`, itemID); err != nil {
		return nil, fmt.Errorf("failed to clear price observations: %w", err)
	}
	if err := insertObservations(ctx, dbTx, item); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return item, nil
}

func (r *inventoryRepository) load(ctx context.Context, q querier, userID string, itemID uuid.UUID, forUpdate bool) (*domain.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory_items
		WHERE id = $1 AND user_id = $2
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	item, err := scanInventoryItem(q.QueryRowContext(ctx, query, itemID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("inventory item", itemID.String())
		}
		return nil, err
	}

	obsQuery := `SELECT ` + observationColumns + `
		FROM price_observations
		WHERE item_id = $1
		ORDER BY position
	`
	rows, err := q.QueryContext(ctx, obsQuery, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price observations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		_, obs, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		item.PriceHistory = append(item.PriceHistory, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price observations: %w", err)
	}
	return item, nil
}

func insertObservations(ctx context.Context, q querier, item *domain.InventoryItem) error {
	query := `
		INSERT INTO price_observations (position, ` + observationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	for i, obs := range item.PriceHistory {
		if obs.ID == uuid.Nil {
			obs.ID = uuid.New()
			item.PriceHistory[i].ID = obs.ID
		}
		var saleEnd any
		if obs.SaleEndDate != nil {
			saleEnd = *obs.SaleEndDate
		}
		_, err := q.ExecContext(ctx, query,
			i,
			obs.ID,
			item.ID,
			obs.Price.String(),
			obs.Store,
			obs.Date,
			obs.Size.String(),
			obs.Unit,
			nullDecimalArg(obs.UnitPrice),
			obs.IsOnSale,
			saleEnd,
			obs.Notes,
			obs.Currency,
			obs.CurrencySymbol,
			obs.AddedBy,
			obs.AddedDate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert price observation: %w", err)
		}
	}
	return nil
}

func inventoryArgs(item *domain.InventoryItem) ([]any, error) {
	var bestPrice, bestStore, bestDate, bestUnitPrice any
	bestOnSale := false
	if best := item.CurrentBestPrice; best != nil {
		bestPrice = best.Price.String()
		bestStore = best.Store
		bestDate = best.Date
		bestUnitPrice = nullDecimalArg(best.UnitPrice)
		bestOnSale = best.IsOnSale
	}

	var alert any
	if item.PriceAlert != nil {
		raw, err := json.Marshal(item.PriceAlert)
		if err != nil {
			return nil, fmt.Errorf("failed to encode price_alert: %w", err)
		}
		alert = raw
	}

	return []any{
		item.ID,
		item.UserID,
		item.Name,
		item.Category,
		item.Quantity.String(),
		item.Unit,
		item.AveragePrice.String(),
		item.LowestPrice.String(),
		item.HighestPrice.String(),
		bestPrice,
		bestStore,
		bestDate,
		bestUnitPrice,
		bestOnSale,
		alert,
	}, nil
}

func scanInventoryItem(row rowScanner) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	var quantity, average, lowest, highest string
	var bestPrice, bestStore, bestUnitPrice sql.NullString
	var bestDate sql.NullTime
	var bestOnSale bool
	var alert []byte

	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Name,
		&item.Category,
		&quantity,
		&item.Unit,
		&average,
		&lowest,
		&highest,
		&bestPrice,
		&bestStore,
		&bestDate,
		&bestUnitPrice,
		&bestOnSale,
		&alert,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan inventory item: %w", err)
	}

	if item.Quantity, err = parseDecimal(quantity, "quantity"); err != nil {
		return nil, err
	}
	if item.AveragePrice, err = parseDecimal(average, "average_price"); err != nil {
		return nil, err
	}
	if item.LowestPrice, err = parseDecimal(lowest, "lowest_price"); err != nil {
		return nil, err
	}
	if item.HighestPrice, err = parseDecimal(highest, "highest_price"); err != nil {
		return nil, err
	}

	if bestPrice.Valid {
		price, err := parseDecimal(bestPrice.String, "best_price")
		if err != nil {
			return nil, err
		}
		unitPrice, err := parseNullDecimal(bestUnitPrice, "best_unit_price")
		if err != nil {
			return nil, err
		}
		item.CurrentBestPrice = &domain.BestPrice{
			Price:     price,
			Store:     bestStore.String,
			Date:      bestDate.Time.UTC(),
			UnitPrice: unitPrice,
			IsOnSale:  bestOnSale,
		}
	}

	if len(alert) > 0 {
		var pa domain.PriceAlert
		if err := json.Unmarshal(alert, &pa); err != nil {
			return nil, fmt.Errorf("failed to decode price_alert: %w", err)
		}
		item.PriceAlert = &pa
	}

	return &item, nil
}

func scanObservation(row rowScanner) (uuid.UUID, domain.PriceObservation, error) {
	var obs domain.PriceObservation
	var itemID uuid.UUID
	var price, size string
	var unitPrice sql.NullString
	var saleEnd sql.NullTime

	err := row.Scan(
		&obs.ID,
		&itemID,
		&price,
		&obs.Store,
		&obs.Date,
		&size,
		&obs.Unit,
		&unitPrice,
		&obs.IsOnSale,
		&saleEnd,
		&obs.Notes,
		&obs.Currency,
		&obs.CurrencySymbol,
		&obs.AddedBy,
		&obs.AddedDate,
	)
	if err != nil {
		return uuid.Nil, obs, fmt.Errorf("failed to scan price observation: %w", err)
	}

	if obs.Price, err = parseDecimal(price, "price"); err != nil {
		return uuid.Nil, obs, err
	}
	if obs.Size, err = parseDecimal(size, "size"); err != nil {
		return uuid.Nil, obs, err
	}
	if obs.UnitPrice, err = parseNullDecimal(unitPrice, "unit_price"); err != nil {
		return uuid.Nil, obs, err
	}
	obs.Date = obs.Date.UTC()
	obs.AddedDate = obs.AddedDate.UTC()
	if saleEnd.Valid {
		end := saleEnd.Time.UTC()
		obs.SaleEndDate = &end
	}
	return itemID, obs, nil
}

// prefixed qualifies the observation columns with a table alias
func prefixed(alias string) string {
	columns := make([]string, len(observationColumnList))
	for i, column := range observationColumnList {
		columns[i] = alias + "." + column
	}
	return strings.Join(columns, ", ")
}
