package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

// MonthlyDistributionRepository stores the items handed out each month
type MonthlyDistributionRepository struct {
	table
	db database.Database
}

var _ Repository[model.MonthlyDistributionItem, model.MonthlyDistributionItemInput, model.MonthlyDistributionItemUpdateInput] = (*MonthlyDistributionRepository)(nil)

// NewMonthlyDistributionRepository creates a new distribution repository.
// It needs a Database rather than a Querier because ReplaceItems opens a
// transaction.
func NewMonthlyDistributionRepository(db database.Database) *MonthlyDistributionRepository {
	return &MonthlyDistributionRepository{table: table{db: db, name: "monthly_distribution_items"}, db: db}
}

// FindByID retrieves a distribution item by ID
func (r *MonthlyDistributionRepository) FindByID(ctx context.Context, id int) (*model.MonthlyDistributionItem, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseDistributionItem(row), nil
}

// FindByMonth lists a month's items
func (r *MonthlyDistributionRepository) FindByMonth(ctx context.Context, year, month int) ([]*model.MonthlyDistributionItem, error) {
	rows, err := r.rows(ctx, `
		SELECT * FROM monthly_distribution_items
		WHERE year = $1 AND month = $2
		ORDER BY category ASC, item_name ASC, id ASC`, year, month)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseDistributionItem), nil
}

// Create adds one item to a month
func (r *MonthlyDistributionRepository) Create(ctx context.Context, in *model.MonthlyDistributionItemInput) (*model.MonthlyDistributionItem, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}
	q := r.insertSQL([]string{"year", "month", "item_name", "category", "quantity"})
	args := []interface{}{in.Year, in.Month, in.ItemName, string(in.Category), in.Quantity}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update applies the set fields of in. The table has no updated_at.
func (r *MonthlyDistributionRepository) Update(ctx context.Context, id int, in *model.MonthlyDistributionItemUpdateInput) (*model.MonthlyDistributionItem, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "item_name", in.ItemName)
		if in.Category != nil {
			if !in.Category.IsValid() {
				return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, *in.Category)
			}
			p.Set("category", string(*in.Category))
		}
		query.SetPtr(&p, "quantity", in.Quantity)
	}
	return update(ctx, r.table, id, &p, false, r.FindByID)
}

// ReplaceItems swaps a month's items for items in one transaction. Either
// the old set is fully replaced or nothing changes.
func (r *MonthlyDistributionRepository) ReplaceItems(ctx context.Context, year, month int, items []model.MonthlyDistributionItemInput) ([]*model.MonthlyDistributionItem, error) {
	items = append([]model.MonthlyDistributionItemInput(nil), items...)
	var errs []model.FieldError
	for i := range items {
		items[i].Year, items[i].Month = year, month
		errs = append(errs, items[i].Validate()...)
	}
	if err := model.NewValidationError(errs); err != nil {
		return nil, err
	}

	var out []*model.MonthlyDistributionItem
	err := database.RunInTransaction(ctx, r.db, func(tx database.Querier) error {
		out = make([]*model.MonthlyDistributionItem, 0, len(items))
		if _, err := tx.Execute(ctx, `DELETE FROM monthly_distribution_items WHERE year = $1 AND month = $2`, year, month); err != nil {
			return fmt.Errorf("failed to clear distribution items: %w", err)
		}
		for _, it := range items {
			row, err := tx.QueryOne(ctx, `
				INSERT INTO monthly_distribution_items (year, month, item_name, category, quantity)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING *`, year, month, it.ItemName, string(it.Category), it.Quantity)
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("%w: distribution item %q", ErrCreateFailed, it.ItemName)
				}
				return fmt.Errorf("failed to insert distribution item: %w", err)
			}
			out = append(out, parseDistributionItem(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseDistributionItem(row database.Row) *model.MonthlyDistributionItem {
	return &model.MonthlyDistributionItem{
		ID:        getInt(row, "id"),
		Year:      getInt(row, "year"),
		Month:     getInt(row, "month"),
		ItemName:  getString(row, "item_name"),
		Category:  model.InventoryCategory(getString(row, "category")),
		Quantity:  getInt(row, "quantity"),
		CreatedAt: getTimeValue(row, "created_at"),
	}
}

// ===== Achievement Claims =====

// TrainerAchievementRepository records which achievements trainers claimed
type TrainerAchievementRepository struct {
	table
}

var _ Repository[model.TrainerAchievementClaim, model.TrainerAchievementClaimInput, model.TrainerAchievementClaimUpdateInput] = (*TrainerAchievementRepository)(nil)

// NewTrainerAchievementRepository creates a new achievement claim repository
func NewTrainerAchievementRepository(db database.Querier) *TrainerAchievementRepository {
	return &TrainerAchievementRepository{table{db: db, name: "trainer_achievement_claims"}}
}

// FindByID retrieves a claim by ID
func (r *TrainerAchievementRepository) FindByID(ctx context.Context, id int) (*model.TrainerAchievementClaim, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseAchievementClaim(row), nil
}

// FindByTrainerID lists a trainer's claims, oldest first
func (r *TrainerAchievementRepository) FindByTrainerID(ctx context.Context, trainerID int) ([]*model.TrainerAchievementClaim, error) {
	rows, err := r.rows(ctx, `
		SELECT * FROM trainer_achievement_claims
		WHERE trainer_id = $1
		ORDER BY claimed_at ASC, id ASC`, trainerID)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseAchievementClaim), nil
}

// ClaimedIDs returns the set of achievement IDs a trainer claimed
func (r *TrainerAchievementRepository) ClaimedIDs(ctx context.Context, trainerID int) (map[string]bool, error) {
	rows, err := r.rows(ctx, `SELECT achievement_id FROM trainer_achievement_claims WHERE trainer_id = $1`, trainerID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[getString(row, "achievement_id")] = true
	}
	return out, nil
}

// HasClaimed reports whether a trainer already claimed an achievement
func (r *TrainerAchievementRepository) HasClaimed(ctx context.Context, trainerID int, achievementID string) (bool, error) {
	res, err := r.db.Query(ctx, `
		SELECT 1 AS present FROM trainer_achievement_claims
		WHERE trainer_id = $1 AND achievement_id = $2`, trainerID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to check achievement claim: %w", err)
	}
	return len(res.Rows) > 0, nil
}

// Claim records a claim. A second claim of the same achievement fails with
// ErrAlreadyClaimed.
func (r *TrainerAchievementRepository) Claim(ctx context.Context, trainerID int, achievementID string) (*model.TrainerAchievementClaim, error) {
	in := model.TrainerAchievementClaimInput{TrainerID: trainerID, AchievementID: achievementID}
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}
	res, err := r.db.Query(ctx, `
		INSERT INTO trainer_achievement_claims (trainer_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (trainer_id, achievement_id) DO NOTHING
		RETURNING *`, trainerID, achievementID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim achievement: %w", err)
	}
	row := res.First()
	if row == nil {
		return nil, fmt.Errorf("%w: trainer %d, achievement %s", ErrAlreadyClaimed, trainerID, achievementID)
	}
	return parseAchievementClaim(row), nil
}

// Create claims an achievement
func (r *TrainerAchievementRepository) Create(ctx context.Context, in *model.TrainerAchievementClaimInput) (*model.TrainerAchievementClaim, error) {
	return r.Claim(ctx, in.TrainerID, in.AchievementID)
}

// Update changes which achievement a claim refers to
func (r *TrainerAchievementRepository) Update(ctx context.Context, id int, in *model.TrainerAchievementClaimUpdateInput) (*model.TrainerAchievementClaim, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "achievement_id", in.AchievementID)
	}
	return update(ctx, r.table, id, &p, false, r.FindByID)
}

func parseAchievementClaim(row database.Row) *model.TrainerAchievementClaim {
	return &model.TrainerAchievementClaim{
		ID:            getInt(row, "id"),
		TrainerID:     getInt(row, "trainer_id"),
		AchievementID: getString(row, "achievement_id"),
		ClaimedAt:     getTimeValue(row, "claimed_at"),
	}
}
