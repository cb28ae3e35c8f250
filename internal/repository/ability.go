package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

var abilitySort = query.Sort{
	Allowed: map[string]string{
		"name":       "name",
		"effect":     "effect",
		"created_at": "created_at",
		"createdAt":  "created_at",
	},
	Default: "name",
}

// AbilityRepository handles ability data access
type AbilityRepository struct {
	table
}

var _ Repository[model.Ability, model.AbilityCreateInput, model.AbilityUpdateInput] = (*AbilityRepository)(nil)

// NewAbilityRepository creates a new ability repository
func NewAbilityRepository(db database.Querier) *AbilityRepository {
	return &AbilityRepository{table{db: db, name: "abilities"}}
}

// FindAll returns one page of abilities. Types are matched against
// common_types with q.TypeLogic deciding between any and all.
func (r *AbilityRepository) FindAll(ctx context.Context, q model.AbilityQuery) (*query.Paginated[*model.Ability], error) {
	b := query.New()
	if q.Search != "" {
		p := b.Arg("%" + q.Search + "%")
		b.Where(fmt.Sprintf("(name ILIKE %s OR effect ILIKE %s)", p, p))
	}
	b.WhereSet(query.ParseCombinator(q.TypeLogic), q.Types, func(p string) string {
		return p + " = ANY(common_types)"
	})
	if q.Monster != "" {
		b.Where("? = ANY(signature_monsters)", q.Monster)
	}

	page := query.NewPage(q.Page, q.Limit)
	rows, total, err := r.paginate(ctx, b, r.name, "*", abilitySort.Clause(q.SortBy, q.SortOrder), page)
	if err != nil {
		return nil, err
	}
	return query.NewPaginated(mapRows(rows, parseAbility), total, page), nil
}

// FindByID retrieves an ability by ID
func (r *AbilityRepository) FindByID(ctx context.Context, id int) (*model.Ability, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseAbility(row), nil
}

// FindByName retrieves an ability by name, ignoring case
func (r *AbilityRepository) FindByName(ctx context.Context, name string) (*model.Ability, error) {
	row, err := r.db.QueryOne(ctx, `SELECT * FROM abilities WHERE LOWER(name) = LOWER($1) LIMIT 1`, name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ability by name: %w", err)
	}
	return parseAbility(row), nil
}

// FindRandom returns up to count abilities in random order
func (r *AbilityRepository) FindRandom(ctx context.Context, count int) ([]*model.Ability, error) {
	if count < 1 {
		count = 1
	}
	rows, err := r.rows(ctx, `SELECT * FROM abilities ORDER BY RANDOM() LIMIT $1`, count)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseAbility), nil
}

// Create creates a new ability
func (r *AbilityRepository) Create(ctx context.Context, in *model.AbilityCreateInput) (*model.Ability, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}

	q := r.insertSQL([]string{"name", "effect", "description", "common_types", "signature_monsters"})
	args := []interface{}{
		in.Name,
		in.Effect,
		in.Description,
		nonNilStrings(in.CommonTypes),
		nonNilStrings(in.SignatureMonsters),
	}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update applies the set fields of in
func (r *AbilityRepository) Update(ctx context.Context, id int, in *model.AbilityUpdateInput) (*model.Ability, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "name", in.Name)
		query.SetPtr(&p, "effect", in.Effect)
		query.SetPtr(&p, "description", in.Description)
		if in.CommonTypes != nil {
			p.Set("common_types", nonNilStrings(*in.CommonTypes))
		}
		if in.SignatureMonsters != nil {
			p.Set("signature_monsters", nonNilStrings(*in.SignatureMonsters))
		}
	}
	return update(ctx, r.table, id, &p, true, r.FindByID)
}

// Parsing helpers

func parseAbility(row database.Row) *model.Ability {
	return &model.Ability{
		ID:                getInt(row, "id"),
		Name:              getString(row, "name"),
		Effect:            getStringPtr(row, "effect"),
		Description:       getStringPtr(row, "description"),
		CommonTypes:       getStringSlice(row, "common_types"),
		SignatureMonsters: getStringSlice(row, "signature_monsters"),
		CreatedAt:         getTimeValue(row, "created_at"),
		UpdatedAt:         getTimeValue(row, "updated_at"),
	}
}
