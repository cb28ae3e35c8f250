package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

var missionSort = query.Sort{
	Allowed: map[string]string{
		"name":       "name",
		"difficulty": "difficulty",
		"duration":   "duration",
		"min_level":  "min_level",
		"minLevel":   "min_level",
		"created_at": "created_at",
		"createdAt":  "created_at",
	},
	Default: "name",
}

var missionJSON = map[string]jsonKind{
	"requirements":  jsonObject,
	"reward_config": jsonObject,
}

// MissionRepository handles mission templates
type MissionRepository struct {
	table
}

var _ Repository[model.Mission, model.MissionCreateInput, model.MissionUpdateInput] = (*MissionRepository)(nil)

// NewMissionRepository creates a new mission repository
func NewMissionRepository(db database.Querier) *MissionRepository {
	return &MissionRepository{table{db: db, name: "missions"}}
}

// FindAll returns one page of missions
func (r *MissionRepository) FindAll(ctx context.Context, q model.MissionQuery) (*query.Paginated[*model.Mission], error) {
	b := query.New()
	if q.Search != "" {
		p := b.Arg("%" + q.Search + "%")
		b.Where(fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if q.Difficulty != "" {
		if !q.Difficulty.IsValid() {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidDifficulty, q.Difficulty)
		}
		b.Where("difficulty = ?", string(q.Difficulty))
	}
	if q.Active != nil {
		b.Where("is_active = ?", *q.Active)
	}
	if q.Level != nil {
		p := b.Arg(*q.Level)
		b.Where(fmt.Sprintf("min_level <= %s AND (max_level IS NULL OR max_level >= %s)", p, p))
	}

	page := query.NewPage(q.Page, q.Limit)
	rows, total, err := r.paginate(ctx, b, r.name, "*", missionSort.Clause(q.SortBy, q.SortOrder), page)
	if err != nil {
		return nil, err
	}
	return query.NewPaginated(mapRows(rows, parseMission), total, page), nil
}

// FindAvailable lists active missions open to the given level
func (r *MissionRepository) FindAvailable(ctx context.Context, level int) ([]*model.Mission, error) {
	rows, err := r.rows(ctx, `
		SELECT * FROM missions
		WHERE is_active = TRUE AND min_level <= $1 AND (max_level IS NULL OR max_level >= $1)
		ORDER BY min_level ASC, name ASC`, level)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseMission), nil
}

// FindByID retrieves a mission by ID
func (r *MissionRepository) FindByID(ctx context.Context, id int) (*model.Mission, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseMission(row), nil
}

// Create creates a new mission
func (r *MissionRepository) Create(ctx context.Context, in *model.MissionCreateInput) (*model.Mission, error) {
	if in.Difficulty != "" && !in.Difficulty.IsValid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidDifficulty, in.Difficulty)
	}
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}

	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyEasy
	}
	reqs, err := toJSON(mapOrEmpty(in.Requirements))
	if err != nil {
		return nil, fmt.Errorf("failed to encode requirements: %w", err)
	}
	rewards, err := toJSON(mapOrEmpty(in.RewardConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to encode reward config: %w", err)
	}

	q := r.insertSQL([]string{
		"name", "description", "difficulty", "duration", "min_level", "max_level",
		"max_monsters", "requirements", "reward_config", "is_active",
	})
	args := []interface{}{
		in.Name, in.Description, string(difficulty), intOr(in.Duration, 1), intOr(in.MinLevel, 1), in.MaxLevel,
		intOr(in.MaxMonsters, 1), reqs, rewards, boolOr(in.IsActive, true),
	}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update applies the set fields of in
func (r *MissionRepository) Update(ctx context.Context, id int, in *model.MissionUpdateInput) (*model.Mission, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "name", in.Name)
		query.SetPtr(&p, "description", in.Description)
		if in.Difficulty != nil {
			if !in.Difficulty.IsValid() {
				return nil, fmt.Errorf("%w: %q", model.ErrInvalidDifficulty, *in.Difficulty)
			}
			p.Set("difficulty", string(*in.Difficulty))
		}
		query.SetPtr(&p, "duration", in.Duration)
		query.SetPtr(&p, "min_level", in.MinLevel)
		query.SetPtr(&p, "max_level", in.MaxLevel)
		query.SetPtr(&p, "max_monsters", in.MaxMonsters)
		if in.Requirements != nil {
			if err := p.SetJSON("requirements", mapOrEmpty(*in.Requirements)); err != nil {
				return nil, err
			}
		}
		if in.RewardConfig != nil {
			if err := p.SetJSON("reward_config", mapOrEmpty(*in.RewardConfig)); err != nil {
				return nil, err
			}
		}
		query.SetPtr(&p, "is_active", in.IsActive)
	}
	return update(ctx, r.table, id, &p, true, r.FindByID)
}

// SetActive enables or disables a mission
func (r *MissionRepository) SetActive(ctx context.Context, id int, active bool) (*model.Mission, error) {
	return r.Update(ctx, id, &model.MissionUpdateInput{IsActive: &active})
}

func parseMission(raw database.Row) *model.Mission {
	row := normalizeRow(raw, missionJSON)
	return &model.Mission{
		ID:           getInt(row, "id"),
		Name:         getString(row, "name"),
		Description:  getStringPtr(row, "description"),
		Difficulty:   model.MissionDifficulty(getString(row, "difficulty")),
		Duration:     getInt(row, "duration"),
		MinLevel:     getInt(row, "min_level"),
		MaxLevel:     getIntPtr(row, "max_level"),
		MaxMonsters:  getInt(row, "max_monsters"),
		Requirements: getJSONMap(row, "requirements"),
		RewardConfig: getJSONMap(row, "reward_config"),
		IsActive:     getBool(row, "is_active"),
		CreatedAt:    getTimeValue(row, "created_at"),
		UpdatedAt:    getTimeValue(row, "updated_at"),
	}
}

// ===== User Missions =====

const userMissionSelect = `
	SELECT um.*, m.name AS mission_name
	FROM user_missions um
	JOIN missions m ON um.mission_id = m.id`

var userMissionJSON = map[string]jsonKind{"monster_ids": jsonList}

// UserMissionRepository tracks players' progress through missions
type UserMissionRepository struct {
	table
}

var _ Repository[model.UserMission, model.UserMissionCreateInput, model.UserMissionUpdateInput] = (*UserMissionRepository)(nil)

// NewUserMissionRepository creates a new user mission repository
func NewUserMissionRepository(db database.Querier) *UserMissionRepository {
	return &UserMissionRepository{table{db: db, name: "user_missions"}}
}

// FindByID retrieves a user mission with its mission name
func (r *UserMissionRepository) FindByID(ctx context.Context, id int) (*model.UserMission, error) {
	row, err := r.db.QueryOne(ctx, userMissionSelect+` WHERE um.id = $1`, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user mission: %w", err)
	}
	return parseUserMission(row), nil
}

// FindActiveByUser lists a player's missions still in progress
func (r *UserMissionRepository) FindActiveByUser(ctx context.Context, userID string) ([]*model.UserMission, error) {
	rows, err := r.rows(ctx, userMissionSelect+`
		WHERE um.user_id = $1 AND um.status = 'active'
		ORDER BY um.started_at ASC, um.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseUserMission), nil
}

// FindByUser lists every mission a player started, newest first
func (r *UserMissionRepository) FindByUser(ctx context.Context, userID string) ([]*model.UserMission, error) {
	rows, err := r.rows(ctx, userMissionSelect+` WHERE um.user_id = $1 ORDER BY um.started_at DESC, um.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseUserMission), nil
}

// Create starts a mission for a player
func (r *UserMissionRepository) Create(ctx context.Context, in *model.UserMissionCreateInput) (*model.UserMission, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}
	ids := in.MonsterIDs
	if ids == nil {
		ids = []int{}
	}
	monsters, err := toJSON(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode monster ids: %w", err)
	}
	q := r.insertSQL([]string{"user_id", "mission_id", "status", "required_progress", "monster_ids"})
	args := []interface{}{in.UserID, in.MissionID, string(model.UserMissionActive), in.RequiredProgress, monsters}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Start is Create under its domain name
func (r *UserMissionRepository) Start(ctx context.Context, in *model.UserMissionCreateInput) (*model.UserMission, error) {
	return r.Create(ctx, in)
}

// Update applies the set fields of in. user_missions has no updated_at.
func (r *UserMissionRepository) Update(ctx context.Context, id int, in *model.UserMissionUpdateInput) (*model.UserMission, error) {
	var p query.Patch
	if in != nil {
		if in.Status != nil {
			p.Set("status", string(*in.Status))
		}
		query.SetPtr(&p, "current_progress", in.CurrentProgress)
		if in.MonsterIDs != nil {
			ids := *in.MonsterIDs
			if ids == nil {
				ids = []int{}
			}
			if err := p.SetJSON("monster_ids", ids); err != nil {
				return nil, err
			}
		}
	}
	return update(ctx, r.table, id, &p, false, r.FindByID)
}

// AddProgress advances an active mission, capped at the required amount.
// Reaching it completes the mission.
func (r *UserMissionRepository) AddProgress(ctx context.Context, id, amount int) (*model.UserMission, error) {
	if amount < 1 {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidQuantity, amount)
	}
	res, err := r.db.Query(ctx, `
		UPDATE user_missions SET
			current_progress = LEAST(current_progress + $1, required_progress),
			status = CASE WHEN current_progress + $1 >= required_progress THEN 'completed' ELSE status END,
			completed_at = CASE WHEN current_progress + $1 >= required_progress THEN NOW() ELSE completed_at END
		WHERE id = $2 AND status = 'active'
		RETURNING id`, amount, id)
	if err != nil {
		return nil, fmt.Errorf("failed to add mission progress: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, r.explain(ctx, id, ErrMissionNotActive)
	}
	return r.FindByID(ctx, id)
}

// ClaimReward marks a completed mission's reward as collected
func (r *UserMissionRepository) ClaimReward(ctx context.Context, id int) (*model.UserMission, error) {
	res, err := r.db.Query(ctx, `
		UPDATE user_missions SET reward_claimed = TRUE
		WHERE id = $1 AND status = 'completed' AND reward_claimed = FALSE
		RETURNING id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to claim mission reward: %w", err)
	}
	if len(res.Rows) > 0 {
		return r.FindByID(ctx, id)
	}

	um, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case um == nil:
		return nil, notFound("user mission", id)
	case um.Status != model.UserMissionCompleted:
		return nil, fmt.Errorf("%w: mission %d is %s", ErrMissionNotCompleted, id, um.Status)
	default:
		return nil, fmt.Errorf("%w: mission %d", ErrRewardAlreadyClaimed, id)
	}
}

// Abandon gives up an active mission
func (r *UserMissionRepository) Abandon(ctx context.Context, id int) (*model.UserMission, error) {
	res, err := r.db.Query(ctx, `
		UPDATE user_missions SET status = 'abandoned'
		WHERE id = $1 AND status = 'active'
		RETURNING id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to abandon mission: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, r.explain(ctx, id, ErrMissionNotActive)
	}
	return r.FindByID(ctx, id)
}

// explain tells a missing row apart from one in the wrong state
func (r *UserMissionRepository) explain(ctx context.Context, id int, stateErr error) error {
	um, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if um == nil {
		return notFound("user mission", id)
	}
	return fmt.Errorf("%w: mission %d is %s", stateErr, id, um.Status)
}

func parseUserMission(raw database.Row) *model.UserMission {
	row := normalizeRow(raw, userMissionJSON)
	return &model.UserMission{
		ID:               getInt(row, "id"),
		UserID:           getString(row, "user_id"),
		MissionID:        getInt(row, "mission_id"),
		Status:           model.UserMissionStatus(getString(row, "status")),
		CurrentProgress:  getInt(row, "current_progress"),
		RequiredProgress: getInt(row, "required_progress"),
		MonsterIDs:       getIntSlice(row, "monster_ids"),
		RewardClaimed:    getBool(row, "reward_claimed"),
		StartedAt:        getTimeValue(row, "started_at"),
		CompletedAt:      getTime(row, "completed_at"),
		MissionName:      getString(row, "mission_name"),
	}
}
