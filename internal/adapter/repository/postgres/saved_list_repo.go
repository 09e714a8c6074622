package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/docbear71/food-inventory-backend/internal/domain"
)

const savedListColumns = `
	id, user_id, name, description, list_type, context_name,
	source_recipe_ids, source_meal_plan_id, items, generated_at, metadata,
	color, tags, is_template, is_archived, stats, usage, created_at, updated_at
`

// customNameIndex keeps active custom list names unique per user
const customNameIndex = "uq_saved_shopping_lists_custom_name"

// savedListRepository implements domain.SavedListRepository.
// Items, stats and usage are stored as JSONB documents.
type savedListRepository struct {
	db *DB
}

// NewSavedListRepository creates a new saved list repository
func NewSavedListRepository(db *DB) domain.SavedListRepository {
	return &savedListRepository{db: db}
}

// Create inserts a new saved list
func (r *savedListRepository) Create(ctx context.Context, list *domain.SavedShoppingList) error {
	args, err := savedListArgs(list)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO saved_shopping_lists (` + savedListColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, customNameIndex) {
			return nameConflict(list)
		}
		return fmt.Errorf("failed to create saved shopping list: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &domain.ConflictError{Resource: "saved shopping list", Field: "id", Value: list.ID.String()}
	}
	return nil
}

// GetByID retrieves one of the user's lists
func (r *savedListRepository) GetByID(ctx context.Context, userID string, listID uuid.UUID) (*domain.SavedShoppingList, error) {
	return r.load(ctx, r.db, userID, listID, false)
}

// FindByName retrieves the user's active list with the given trimmed name
func (r *savedListRepository) FindByName(ctx context.Context, userID, name string) (*domain.SavedShoppingList, error) {
	name = strings.TrimSpace(name)
	query := `SELECT ` + savedListColumns + `
		FROM saved_shopping_lists
		WHERE user_id = $1 AND NOT is_archived AND BTRIM(name) = $2
		ORDER BY created_at
		LIMIT 1
	`

	list, err := scanSavedList(r.db.QueryRowContext(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("saved shopping list", name)
		}
		return nil, err
	}
	return list, nil
}

// ListByUser retrieves the user's lists, archived ones only when asked
func (r *savedListRepository) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.SavedShoppingList, error) {
	query := `SELECT ` + savedListColumns + `
		FROM saved_shopping_lists
		WHERE user_id = $1 AND ($2 OR NOT is_archived)
	`

	rows, err := r.db.QueryContext(ctx, query, userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved shopping lists: %w", err)
	}
	defer rows.Close()

	lists := []*domain.SavedShoppingList{}
	for rows.Next() {
		list, err := scanSavedList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved shopping lists: %w", err)
	}
	return lists, nil
}

// Update locks the list row, applies fn and writes the whole document back
func (r *savedListRepository) Update(ctx context.Context, userID string, listID uuid.UUID, fn func(list *domain.SavedShoppingList) error) (*domain.SavedShoppingList, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	list, err := r.load(ctx, dbTx, userID, listID, true)
	if err != nil {
		return nil, err
	}

	if err := fn(list); err != nil {
		return nil, err
	}
	list.ID = listID
	list.UserID = userID

	args, err := savedListArgs(list)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE saved_shopping_lists
		SET name = $3, description = $4, list_type = $5, context_name = $6,
			source_recipe_ids = $7, source_meal_plan_id = $8, items = $9, generated_at = $10,
			metadata = $11, color = $12, tags = $13, is_template = $14, is_archived = $15,
			stats = $16, usage = $17, created_at = $18, updated_at = $19
		WHERE id = $1 AND user_id = $2
	`
	if _, err := dbTx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, customNameIndex) {
			return nil, nameConflict(list)
		}
		return nil, fmt.Errorf("failed to update saved shopping list: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return list, nil
}

func nameConflict(list *domain.SavedShoppingList) error {
	return &domain.ConflictError{Resource: "saved shopping list", Field: "name", Value: strings.TrimSpace(list.Name)}
}

func (r *savedListRepository) load(ctx context.Context, q querier, userID string, listID uuid.UUID, forUpdate bool) (*domain.SavedShoppingList, error) {
	query := `SELECT ` + savedListColumns + `
		FROM saved_shopping_lists
		WHERE id = $1 AND user_id = $2
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	list, err := scanSavedList(q.QueryRowContext(ctx, query, listID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("saved shopping list", listID.String())
		}
		return nil, err
	}
	return list, nil
}

func savedListArgs(list *domain.SavedShoppingList) ([]any, error) {
	items := list.Items
	if items == nil {
		items = domain.CategorizedItems{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	metadata := list.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	statsJSON, err := json.Marshal(list.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats: %w", err)
	}
	usageJSON, err := json.Marshal(list.Usage)
	if err != nil {
		return nil, fmt.Errorf("failed to encode usage: %w", err)
	}

	recipeIDs := list.SourceRecipeIDs
	if recipeIDs == nil {
		recipeIDs = []string{}
	}
	tags := list.Tags
	if tags == nil {
		tags = []string{}
	}

	return []any{
		list.ID,
		list.UserID,
		list.Name,
		list.Description,
		string(list.ListType),
		list.ContextName,
		pq.Array(recipeIDs),
		list.SourceMealPlanID,
		itemsJSON,
		list.GeneratedAt,
		metadataJSON,
		list.Color,
		pq.Array(tags),
		list.IsTemplate,
		list.IsArchived,
		statsJSON,
		usageJSON,
		list.CreatedAt,
		list.UpdatedAt,
	}, nil
}

func scanSavedList(row rowScanner) (*domain.SavedShoppingList, error) {
	var list domain.SavedShoppingList
	var listType string
	var itemsJSON, metadataJSON, statsJSON, usageJSON []byte

	err := row.Scan(
		&list.ID,
		&list.UserID,
		&list.Name,
		&list.Description,
		&listType,
		&list.ContextName,
		pq.Array(&list.SourceRecipeIDs),
		&list.SourceMealPlanID,
		&itemsJSON,
		&list.GeneratedAt,
		&metadataJSON,
		&list.Color,
		pq.Array(&list.Tags),
		&list.IsTemplate,
		&list.IsArchived,
		&statsJSON,
		&usageJSON,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan saved shopping list: %w", err)
	}
	list.ListType = domain.ListType(listType)

	if err := json.Unmarshal(itemsJSON, &list.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &list.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if len(list.Metadata) == 0 {
		list.Metadata = nil
	}
	if err := json.Unmarshal(statsJSON, &list.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	if err := json.Unmarshal(usageJSON, &list.Usage); err != nil {
		return nil, fmt.Errorf("failed to decode usage: %w", err)
	}

	list.GeneratedAt = list.GeneratedAt.UTC()
	list.CreatedAt = list.CreatedAt.UTC()
	list.UpdatedAt = list.UpdatedAt.UTC()
	return &list, nil
}
