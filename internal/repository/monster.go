package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

const (
	monsterFrom   = "monsters m JOIN trainers t ON m.trainer_id = t.id"
	monsterSelect = "SELECT m.*, t.name AS trainer_name FROM " + monsterFrom
)

var monsterSort = query.Sort{
	Allowed: map[string]string{
		"name":         "m.name",
		"level":        "m.level",
		"species":      "m.species1",
		"species1":     "m.species1",
		"type":         "m.type1",
		"type1":        "m.type1",
		"trainer":      "t.name",
		"trainer_name": "t.name",
		"created_at":   "m.created_at",
		"createdAt":    "m.created_at",
	},
	Default: "name",
}

var monsterJSON = map[string]jsonKind{"moveset": jsonList}

// MonsterRepository handles monster data access
type MonsterRepository struct {
	table
}

var _ Repository[model.Monster, model.MonsterCreateInput, model.MonsterUpdateInput] = (*MonsterRepository)(nil)

// NewMonsterRepository creates a new monster repository
func NewMonsterRepository(db database.Querier) *MonsterRepository {
	return &MonsterRepository{table{db: db, name: "monsters"}}
}

// FindAll returns one page of monsters with their trainer names. Type and
// species filters match any slot.
func (r *MonsterRepository) FindAll(ctx context.Context, q model.MonsterQuery) (*query.Paginated[*model.Monster], error) {
	b := query.New()
	if q.Search != "" {
		p := b.Arg("%" + q.Search + "%")
		b.Where(fmt.Sprintf("(m.name ILIKE %s OR m.species1 ILIKE %s)", p, p))
	}
	if q.TrainerID > 0 {
		b.Where("m.trainer_id = ?", q.TrainerID)
	}
	if q.Type != "" {
		p := b.Arg(q.Type)
		b.Where(fmt.Sprintf("%s IN (m.type1, m.type2, m.type3, m.type4, m.type5)", p))
	}
	if q.Species != "" {
		p := b.Arg(q.Species)
		b.Where(fmt.Sprintf("%s IN (m.species1, m.species2, m.species3)", p))
	}
	if q.Attribute != "" {
		b.Where("m.attribute = ?", q.Attribute)
	}

	page := query.NewPage(q.Page, q.Limit)
	rows, total, err := r.paginate(ctx, b, monsterFrom, "m.*, t.name AS trainer_name", monsterSort.Clause(q.SortBy, q.SortOrder), page)
	if err != nil {
		return nil, err
	}
	return query.NewPaginated(mapRows(rows, parseMonster), total, page), nil
}

// FindByID retrieves a monster by ID
func (r *MonsterRepository) FindByID(ctx context.Context, id int) (*model.Monster, error) {
	row, err := r.db.QueryOne(ctx, monsterSelect+` WHERE m.id = $1`, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get monster: %w", err)
	}
	return parseMonster(row), nil
}

// FindByTrainerID returns a trainer's monsters in box order
func (r *MonsterRepository) FindByTrainerID(ctx context.Context, trainerID int) ([]*model.Monster, error) {
	rows, err := r.rows(ctx, monsterSelect+`
		WHERE m.trainer_id = $1
		ORDER BY m.box_number ASC NULLS LAST, m.trainer_index ASC NULLS LAST, m.id ASC`, trainerID)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseMonster), nil
}

// Create creates a new monster
func (r *MonsterRepository) Create(ctx context.Context, in *model.MonsterCreateInput) (*model.Monster, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}

	level := 1
	if in.Level != nil {
		level = *in.Level
	}
	moveset, err := toJSON(nonNilStrings(in.Moveset))
	if err != nil {
		return nil, fmt.Errorf("failed to encode moveset: %w", err)
	}

	q := r.insertSQL([]string{
		"trainer_id", "player_user_id", "name",
		"species1", "species2", "species3",
		"type1", "type2", "type3", "type4", "type5",
		"attribute", "level", "img_link", "moveset", "box_number", "trainer_index",
	})
	args := []interface{}{
		in.TrainerID, in.PlayerUserID, in.Name,
		in.Species1, in.Species2, in.Species3,
		in.Type1, in.Type2, in.Type3, in.Type4, in.Type5,
		in.Attribute, level, in.ImgLink, moveset, in.BoxNumber, in.TrainerIndex,
	}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update applies the set fields of in
func (r *MonsterRepository) Update(ctx context.Context, id int, in *model.MonsterUpdateInput) (*model.Monster, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "name", in.Name)
		query.SetPtr(&p, "species1", in.Species1)
		query.SetPtr(&p, "species2", in.Species2)
		query.SetPtr(&p, "species3", in.Species3)
		query.SetPtr(&p, "type1", in.Type1)
		query.SetPtr(&p, "type2", in.Type2)
		query.SetPtr(&p, "type3", in.Type3)
		query.SetPtr(&p, "type4", in.Type4)
		query.SetPtr(&p, "type5", in.Type5)
		query.SetPtr(&p, "attribute", in.Attribute)
		query.SetPtr(&p, "level", in.Level)
		query.SetPtr(&p, "img_link", in.ImgLink)
		query.SetPtr(&p, "box_number", in.BoxNumber)
		query.SetPtr(&p, "trainer_index", in.TrainerIndex)
		if in.Moveset != nil {
			if err := p.SetJSON("moveset", nonNilStrings(*in.Moveset)); err != nil {
				return nil, err
			}
		}
	}
	return update(ctx, r.table, id, &p, true, r.FindByID)
}

// Transfer moves a monster to another trainer and that trainer's player
func (r *MonsterRepository) Transfer(ctx context.Context, id, toTrainerID int) (*model.Monster, error) {
	res, err := r.db.Query(ctx, `
		UPDATE monsters
		SET trainer_id = t.id, player_user_id = t.player_user_id, box_number = NULL, trainer_index = NULL, updated_at = NOW()
		FROM trainers t
		WHERE monsters.id = $1 AND t.id = $2
		RETURNING monsters.id`, id, toTrainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer monster: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, notFound("monster or trainer", fmt.Sprintf("%d->%d", id, toTrainerID))
	}
	return r.FindByID(ctx, id)
}

// AddLevels raises a monster's level, capped at the maximum
func (r *MonsterRepository) AddLevels(ctx context.Context, id, levels int) (*model.Monster, error) {
	if levels < 1 {
		return nil, model.ErrInvalidQuantity
	}
	res, err := r.db.Query(ctx, `
		UPDATE monsters SET level = LEAST(level + $1, $2), updated_at = NOW()
		WHERE id = $3
		RETURNING id`, levels, model.MaxMonsterLevel, id)
	if err != nil {
		return nil, fmt.Errorf("failed to add levels: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, notFound("monster", id)
	}
	return r.FindByID(ctx, id)
}

// Parsing helpers

func parseMonster(raw database.Row) *model.Monster {
	row := normalizeRow(raw, monsterJSON)
	moves := getStringSlice(row, "moveset")
	return &model.Monster{
		ID:           getInt(row, "id"),
		TrainerID:    getInt(row, "trainer_id"),
		PlayerUserID: getString(row, "player_user_id"),
		Name:         getString(row, "name"),
		Species1:     getString(row, "species1"),
		Species2:     getStringPtr(row, "species2"),
		Species3:     getStringPtr(row, "species3"),
		Type1:        getString(row, "type1"),
		Type2:        getStringPtr(row, "type2"),
		Type3:        getStringPtr(row, "type3"),
		Type4:        getStringPtr(row, "type4"),
		Type5:        getStringPtr(row, "type5"),
		Attribute:    getStringPtr(row, "attribute"),
		Level:        getInt(row, "level"),
		ImgLink:      getStringPtr(row, "img_link"),
		Moveset:      moves,
		BoxNumber:    getIntPtr(row, "box_number"),
		TrainerIndex: getIntPtr(row, "trainer_index"),
		TrainerName:  getString(row, "trainer_name"),
		CreatedAt:    getTimeValue(row, "created_at"),
		UpdatedAt:    getTimeValue(row, "updated_at"),
	}
}
