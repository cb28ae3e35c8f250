package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
)

const antiqueUpsertSQL = `
	INSERT INTO antique_settings
		(item_name, category, holiday, roll_count, force_fusion, force_no_fusion, allow_fusion, force_min_types, override_parameters)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (item_name) DO UPDATE SET
		category = EXCLUDED.category,
		holiday = EXCLUDED.holiday,
		roll_count = EXCLUDED.roll_count,
		force_fusion = EXCLUDED.force_fusion,
		force_no_fusion = EXCLUDED.force_no_fusion,
		allow_fusion = EXCLUDED.allow_fusion,
		force_min_types = EXCLUDED.force_min_types,
		override_parameters = EXCLUDED.override_parameters,
		updated_at = NOW()
	RETURNING *`

var antiqueJSON = map[string]jsonKind{"override_parameters": jsonObject}

// AntiqueSettingRepository stores appraisal settings keyed by item name
type AntiqueSettingRepository struct {
	table
}

var _ Repository[model.AntiqueSetting, model.AntiqueSettingInput, model.AntiqueSettingUpdateInput] = (*AntiqueSettingRepository)(nil)

// NewAntiqueSettingRepository creates a new antique setting repository
func NewAntiqueSettingRepository(db database.Querier) *AntiqueSettingRepository {
	return &AntiqueSettingRepository{table{db: db, name: "antique_settings"}}
}

// FindByID retrieves a setting by ID
func (r *AntiqueSettingRepository) FindByID(ctx context.Context, id int) (*model.AntiqueSetting, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseAntiqueSetting(row), nil
}

// FindByItemName retrieves the setting of an item
func (r *AntiqueSettingRepository) FindByItemName(ctx context.Context, itemName string) (*model.AntiqueSetting, error) {
	row, err := r.db.QueryOne(ctx, `SELECT * FROM antique_settings WHERE item_name = $1`, itemName)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get antique setting: %w", err)
	}
	return parseAntiqueSetting(row), nil
}

// FindAll lists settings by item name, optionally limited to a category
func (r *AntiqueSettingRepository) FindAll(ctx context.Context, category string) ([]*model.AntiqueSetting, error) {
	var (
		rows []database.Row
		err  error
	)
	if category == "" {
		rows, err = r.rows(ctx, `SELECT * FROM antique_settings ORDER BY item_name ASC`)
	} else {
		rows, err = r.rows(ctx, `SELECT * FROM antique_settings WHERE category = $1 ORDER BY item_name ASC`, category)
	}
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseAntiqueSetting), nil
}

// Upsert inserts a setting or overwrites the one with the same item name
func (r *AntiqueSettingRepository) Upsert(ctx context.Context, in *model.AntiqueSettingInput) (*model.AntiqueSetting, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}

	params := in.OverrideParameters
	if params == nil {
		params = map[string]interface{}{}
	}
	paramsJSON, err := toJSON(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode override parameters: %w", err)
	}

	row, err := r.db.QueryOne(ctx, antiqueUpsertSQL,
		in.ItemName,
		in.Category,
		in.Holiday,
		intOr(in.RollCount, 1),
		boolOr(in.ForceFusion, false),
		boolOr(in.ForceNoFusion, false),
		boolOr(in.AllowFusion, true),
		in.ForceMinTypes,
		paramsJSON,
	)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: upsert of %q returned no row", ErrCreateFailed, in.ItemName)
		}
		return nil, fmt.Errorf("failed to upsert antique setting: %w", err)
	}
	return parseAntiqueSetting(row), nil
}

// Create upserts on the item name
func (r *AntiqueSettingRepository) Create(ctx context.Context, in *model.AntiqueSettingInput) (*model.AntiqueSetting, error) {
	return r.Upsert(ctx, in)
}

// Update merges the set fields into the stored row and upserts the result.
// An empty update returns the stored row untouched.
func (r *AntiqueSettingRepository) Update(ctx context.Context, id int, in *model.AntiqueSettingUpdateInput) (*model.AntiqueSetting, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, notFound("antique setting", id)
	}
	if in.IsEmpty() {
		return current, nil
	}
	return r.Upsert(ctx, in.MergeInto(current))
}

// DeleteByItemName removes the setting of an item
func (r *AntiqueSettingRepository) DeleteByItemName(ctx context.Context, itemName string) (bool, error) {
	n, err := r.db.Execute(ctx, `DELETE FROM antique_settings WHERE item_name = $1`, itemName)
	if err != nil {
		return false, fmt.Errorf("failed to delete antique setting: %w", err)
	}
	return n > 0, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func parseAntiqueSetting(raw database.Row) *model.AntiqueSetting {
	row := normalizeRow(raw, antiqueJSON)
	return &model.AntiqueSetting{
		ID:                 getInt(row, "id"),
		ItemName:           getString(row, "item_name"),
		Category:           getString(row, "category"),
		Holiday:            getStringPtr(row, "holiday"),
		RollCount:          getInt(row, "roll_count"),
		ForceFusion:        getBool(row, "force_fusion"),
		ForceNoFusion:      getBool(row, "force_no_fusion"),
		AllowFusion:        getBool(row, "allow_fusion"),
		ForceMinTypes:      getIntPtr(row, "force_min_types"),
		OverrideParameters: getJSONMap(row, "override_parameters"),
		CreatedAt:          getTimeValue(row, "created_at"),
		UpdatedAt:          getTimeValue(row, "updated_at"),
	}
}
