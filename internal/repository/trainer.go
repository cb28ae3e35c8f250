package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

const trainerSelect = `SELECT t.*, (SELECT COUNT(*) FROM monsters m WHERE m.trainer_id = t.id) AS monster_count FROM trainers t`

var trainerSort = query.Sort{
	Allowed: map[string]string{
		"name":            "t.name",
		"level":           "t.level",
		"currency":        "t.currency_amount",
		"currency_amount": "t.currency_amount",
		"currencyAmount":  "t.currency_amount",
		"created_at":      "t.created_at",
		"createdAt":       "t.created_at",
	},
	Default: "name",
}

var trainerJSON = map[string]jsonKind{"additional_refs": jsonList}

// TrainerRepository handles trainer data access
type TrainerRepository struct {
	table
}

var _ Repository[model.Trainer, model.TrainerCreateInput, model.TrainerUpdateInput] = (*TrainerRepository)(nil)

// NewTrainerRepository creates a new trainer repository
func NewTrainerRepository(db database.Querier) *TrainerRepository {
	return &TrainerRepository{table{db: db, name: "trainers"}}
}

// FindAll returns one page of trainers
func (r *TrainerRepository) FindAll(ctx context.Context, q model.TrainerQuery) (*query.Paginated[*model.Trainer], error) {
	b := query.New()
	if q.Search != "" {
		p := b.Arg("%" + q.Search + "%")
		b.Where(fmt.Sprintf("(t.name ILIKE %s OR t.nickname ILIKE %s)", p, p))
	}
	if q.PlayerUserID != "" {
		b.Where("t.player_user_id = ?", q.PlayerUserID)
	}
	if q.Faction != "" {
		b.Where("t.faction = ?", q.Faction)
	}

	page := query.NewPage(q.Page, q.Limit)
	columns := "t.*, (SELECT COUNT(*) FROM monsters m WHERE m.trainer_id = t.id) AS monster_count"
	rows, total, err := r.paginate(ctx, b, "trainers t", columns, trainerSort.Clause(q.SortBy, q.SortOrder), page)
	if err != nil {
		return nil, err
	}
	return query.NewPaginated(mapRows(rows, parseTrainer), total, page), nil
}

// FindByID retrieves a trainer by ID
func (r *TrainerRepository) FindByID(ctx context.Context, id int) (*model.Trainer, error) {
	row, err := r.db.QueryOne(ctx, trainerSelect+` WHERE t.id = $1`, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trainer: %w", err)
	}
	return parseTrainer(row), nil
}

// FindByUserID returns every trainer owned by a player
func (r *TrainerRepository) FindByUserID(ctx context.Context, playerUserID string) ([]*model.Trainer, error) {
	rows, err := r.rows(ctx, trainerSelect+` WHERE t.player_user_id = $1 ORDER BY t.name ASC`, playerUserID)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseTrainer), nil
}

// FindByName retrieves a trainer by name, ignoring case
func (r *TrainerRepository) FindByName(ctx context.Context, name string) (*model.Trainer, error) {
	row, err := r.db.QueryOne(ctx, trainerSelect+` WHERE LOWER(t.name) = LOWER($1) LIMIT 1`, name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trainer by name: %w", err)
	}
	return parseTrainer(row), nil
}

// Create creates a new trainer
func (r *TrainerRepository) Create(ctx context.Context, in *model.TrainerCreateInput) (*model.Trainer, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}

	level := 1
	if in.Level != nil {
		level = *in.Level
	}
	currency := 0
	if in.CurrencyAmount != nil {
		currency = *in.CurrencyAmount
	}
	refs := in.AdditionalRefs
	if refs == nil {
		refs = []interface{}{}
	}
	refsJSON, err := toJSON(refs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode additional refs: %w", err)
	}

	q := r.insertSQL([]string{
		"player_user_id", "name", "nickname", "faction", "level",
		"currency_amount", "total_earned_currency", "main_ref", "bio", "additional_refs",
	})
	args := []interface{}{
		in.PlayerUserID, in.Name, in.Nickname, in.Faction, level,
		currency, currency, in.MainRef, in.Bio, refsJSON,
	}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update applies the set fields of in
func (r *TrainerRepository) Update(ctx context.Context, id int, in *model.TrainerUpdateInput) (*model.Trainer, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "name", in.Name)
		query.SetPtr(&p, "nickname", in.Nickname)
		query.SetPtr(&p, "faction", in.Faction)
		query.SetPtr(&p, "level", in.Level)
		query.SetPtr(&p, "currency_amount", in.CurrencyAmount)
		query.SetPtr(&p, "total_earned_currency", in.TotalEarnedCurrency)
		query.SetPtr(&p, "main_ref", in.MainRef)
		query.SetPtr(&p, "bio", in.Bio)
		if in.AdditionalRefs != nil {
			if err := p.SetJSON("additional_refs", *in.AdditionalRefs); err != nil {
				return nil, err
			}
		}
	}
	return update(ctx, r.table, id, &p, true, r.FindByID)
}

// AdjustCurrency adds delta to the trainer's balance. Positive deltas also
// count toward total_earned_currency.
func (r *TrainerRepository) AdjustCurrency(ctx context.Context, id, delta int) (*model.Trainer, error) {
	res, err := r.db.Query(ctx, `
		UPDATE trainers
		SET currency_amount = currency_amount + $1,
			total_earned_currency = total_earned_currency + GREATEST($1, 0),
			updated_at = NOW()
		WHERE id = $2
		RETURNING id`, delta, id)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust currency: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, notFound("trainer", id)
	}
	return r.FindByID(ctx, id)
}

// Parsing helpers

func parseTrainer(raw database.Row) *model.Trainer {
	row := normalizeRow(raw, trainerJSON)
	return &model.Trainer{
		ID:                  getInt(row, "id"),
		PlayerUserID:        getString(row, "player_user_id"),
		Name:                getString(row, "name"),
		Nickname:            getStringPtr(row, "nickname"),
		Faction:             getStringPtr(row, "faction"),
		Level:               getInt(row, "level"),
		CurrencyAmount:      getInt(row, "currency_amount"),
		TotalEarnedCurrency: getInt(row, "total_earned_currency"),
		MainRef:             getStringPtr(row, "main_ref"),
		Bio:                 getStringPtr(row, "bio"),
		AdditionalRefs:      getJSONList(row, "additional_refs"),
		MonsterCount:        getInt(row, "monster_count"),
		CreatedAt:           getTimeValue(row, "created_at"),
		UpdatedAt:           getTimeValue(row, "updated_at"),
	}
}
