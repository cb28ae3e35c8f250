package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
)

const tradeSelect = `
	SELECT at.*, ft.name AS from_trainer_name, tt.name AS to_trainer_name
	FROM automated_trades at
	LEFT JOIN trainers ft ON at.from_trainer_id = ft.id
	LEFT JOIN trainers tt ON at.to_trainer_id = tt.id`

var tradeJSON = map[string]jsonKind{
	"from_items":    jsonObject,
	"to_items":      jsonObject,
	"from_monsters": jsonList,
	"to_monsters":   jsonList,
}

// AutomatedTradeRepository records completed trades. Trades are append-only.
type AutomatedTradeRepository struct {
	table
}

var _ Repository[model.AutomatedTrade, model.AutomatedTradeCreateInput, model.AutomatedTradeUpdateInput] = (*AutomatedTradeRepository)(nil)

// NewAutomatedTradeRepository creates a new automated trade repository
func NewAutomatedTradeRepository(db database.Querier) *AutomatedTradeRepository {
	return &AutomatedTradeRepository{table{db: db, name: "automated_trades"}}
}

// FindByID retrieves a trade with both trainer names
func (r *AutomatedTradeRepository) FindByID(ctx context.Context, id int) (*model.AutomatedTrade, error) {
	row, err := r.db.QueryOne(ctx, tradeSelect+` WHERE at.id = $1`, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get automated trade: %w", err)
	}
	return parseAutomatedTrade(row), nil
}

// FindByTrainerID returns the newest trades a trainer took part in
func (r *AutomatedTradeRepository) FindByTrainerID(ctx context.Context, trainerID, limit int) ([]*model.AutomatedTrade, error) {
	rows, err := r.rows(ctx, tradeSelect+`
		WHERE at.from_trainer_id = $1 OR at.to_trainer_id = $1
		ORDER BY at.created_at DESC, at.id DESC
		LIMIT $2`, trainerID, positiveLimit(limit))
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseAutomatedTrade), nil
}

// FindRecent returns the newest trades overall
func (r *AutomatedTradeRepository) FindRecent(ctx context.Context, limit int) ([]*model.AutomatedTrade, error) {
	rows, err := r.rows(ctx, tradeSelect+` ORDER BY at.created_at DESC, at.id DESC LIMIT $1`, positiveLimit(limit))
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseAutomatedTrade), nil
}

// Create records a trade
func (r *AutomatedTradeRepository) Create(ctx context.Context, in *model.AutomatedTradeCreateInput) (*model.AutomatedTrade, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}

	encoded := make([]interface{}, 0, 4)
	for _, v := range []interface{}{
		mapOrEmpty(in.FromItems), mapOrEmpty(in.ToItems),
		listOrEmpty(in.FromMonsters), listOrEmpty(in.ToMonsters),
	} {
		s, err := toJSON(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode trade: %w", err)
		}
		encoded = append(encoded, s)
	}

	q := r.insertSQL([]string{"from_trainer_id", "to_trainer_id", "from_items", "to_items", "from_monsters", "to_monsters"})
	args := append([]interface{}{in.FromTrainerID, in.ToTrainerID}, encoded...)
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update returns the stored trade; trades never change
func (r *AutomatedTradeRepository) Update(ctx context.Context, id int, _ *model.AutomatedTradeUpdateInput) (*model.AutomatedTrade, error) {
	trade, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, notFound("automated trade", id)
	}
	return trade, nil
}

func positiveLimit(limit int) int {
	if limit < 1 {
		return 50
	}
	return limit
}

func mapOrEmpty(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

func listOrEmpty(l []interface{}) []interface{} {
	if l == nil {
		return []interface{}{}
	}
	return l
}

func parseAutomatedTrade(raw database.Row) *model.AutomatedTrade {
	row := normalizeRow(raw, tradeJSON)
	return &model.AutomatedTrade{
		ID:              getInt(row, "id"),
		FromTrainerID:   getInt(row, "from_trainer_id"),
		ToTrainerID:     getInt(row, "to_trainer_id"),
		FromItems:       getJSONMap(row, "from_items"),
		ToItems:         getJSONMap(row, "to_items"),
		FromMonsters:    getJSONList(row, "from_monsters"),
		ToMonsters:      getJSONList(row, "to_monsters"),
		FromTrainerName: getString(row, "from_trainer_name"),
		ToTrainerName:   getString(row, "to_trainer_name"),
		CreatedAt:       getTimeValue(row, "created_at"),
	}
}
