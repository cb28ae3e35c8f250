package repository

import (
	"context"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
)

// clearOldLogsSQL keeps the newest $2 rows of battle $1 and deletes the
// rest in one statement
const clearOldLogsSQL = `
	DELETE FROM battle_logs
	WHERE battle_id = $1
	AND id NOT IN (
		SELECT id FROM battle_logs
		WHERE battle_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	)`

var battleLogJSON = map[string]jsonKind{"log_data": jsonObject}

// BattleLogRepository stores append-only battle log entries
type BattleLogRepository struct {
	table
}

var _ Repository[model.BattleLog, model.BattleLogCreateInput, model.BattleLogUpdateInput] = (*BattleLogRepository)(nil)

// NewBattleLogRepository creates a new battle log repository
func NewBattleLogRepository(db database.Querier) *BattleLogRepository {
	return &BattleLogRepository{table{db: db, name: "battle_logs"}}
}

// FindByID retrieves a log entry by ID
func (r *BattleLogRepository) FindByID(ctx context.Context, id int) (*model.BattleLog, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseBattleLog(row), nil
}

// FindByBattleID returns a battle's entries oldest first. A positive
// q.Limit keeps only the newest that many.
func (r *BattleLogRepository) FindByBattleID(ctx context.Context, battleID string, q model.BattleLogQuery) ([]*model.BattleLog, error) {
	where := "WHERE battle_id = $1"
	args := []interface{}{battleID}
	if q.LogType != "" {
		if !q.LogType.IsValid() {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidLogType, q.LogType)
		}
		where += " AND log_type = $2"
		args = append(args, string(q.LogType))
	}

	sql := "SELECT * FROM battle_logs " + where + " ORDER BY created_at ASC, id ASC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql = fmt.Sprintf(`SELECT * FROM (
			SELECT * FROM battle_logs %s ORDER BY created_at DESC, id DESC LIMIT $%d
		) newest ORDER BY created_at ASC, id ASC`, where, len(args))
	}

	rows, err := r.rows(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseBattleLog), nil
}

// CountByBattleID returns how many entries a battle holds
func (r *BattleLogRepository) CountByBattleID(ctx context.Context, battleID string) (int, error) {
	row, err := r.db.QueryOne(ctx, `SELECT COUNT(*) AS total FROM battle_logs WHERE battle_id = $1`, battleID)
	if err != nil {
		return 0, fmt.Errorf("failed to count battle logs: %w", err)
	}
	return extractCount(row), nil
}

// Create appends an entry
func (r *BattleLogRepository) Create(ctx context.Context, in *model.BattleLogCreateInput) (*model.BattleLog, error) {
	if !in.LogType.IsValid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidLogType, in.LogType)
	}
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}

	data, err := toJSON(mapOrEmpty(in.LogData))
	if err != nil {
		return nil, fmt.Errorf("failed to encode log data: %w", err)
	}

	q := r.insertSQL([]string{"battle_id", "log_type", "message", "log_data"})
	args := []interface{}{in.BattleID, string(in.LogType), in.Message, data}
	return create(ctx, r.table, q, args, r.FindByID)
}

func (r *BattleLogRepository) log(ctx context.Context, battleID string, t model.BattleLogType, message string, data map[string]interface{}) (*model.BattleLog, error) {
	return r.Create(ctx, &model.BattleLogCreateInput{BattleID: battleID, LogType: t, Message: message, LogData: data})
}

// LogAction appends an action entry
func (r *BattleLogRepository) LogAction(ctx context.Context, battleID, message string, data map[string]interface{}) (*model.BattleLog, error) {
	return r.log(ctx, battleID, model.LogTypeAction, message, data)
}

// LogDamage appends a damage entry
func (r *BattleLogRepository) LogDamage(ctx context.Context, battleID, message string, data map[string]interface{}) (*model.BattleLog, error) {
	return r.log(ctx, battleID, model.LogTypeDamage, message, data)
}

// LogStatus appends a status entry
func (r *BattleLogRepository) LogStatus(ctx context.Context, battleID, message string, data map[string]interface{}) (*model.BattleLog, error) {
	return r.log(ctx, battleID, model.LogTypeStatus, message, data)
}

// LogSystem appends a system entry
func (r *BattleLogRepository) LogSystem(ctx context.Context, battleID, message string, data map[string]interface{}) (*model.BattleLog, error) {
	return r.log(ctx, battleID, model.LogTypeSystem, message, data)
}

// LogMessage appends a chat message entry
func (r *BattleLogRepository) LogMessage(ctx context.Context, battleID, message string, data map[string]interface{}) (*model.BattleLog, error) {
	return r.log(ctx, battleID, model.LogTypeMessage, message, data)
}

// Update returns the stored entry; log entries never change
func (r *BattleLogRepository) Update(ctx context.Context, id int, _ *model.BattleLogUpdateInput) (*model.BattleLog, error) {
	entry, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, notFound("battle log", id)
	}
	return entry, nil
}

// ClearOldLogs keeps the keep most recent entries of a battle and returns
// how many were deleted. A negative keep is treated as zero.
func (r *BattleLogRepository) ClearOldLogs(ctx context.Context, battleID string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	n, err := r.db.Execute(ctx, clearOldLogsSQL, battleID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to clear battle logs: %w", err)
	}
	return n, nil
}

// DeleteByBattleID removes every entry of a battle
func (r *BattleLogRepository) DeleteByBattleID(ctx context.Context, battleID string) (int64, error) {
	n, err := r.db.Execute(ctx, `DELETE FROM battle_logs WHERE battle_id = $1`, battleID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete battle logs: %w", err)
	}
	return n, nil
}

// BattlesOverRetention lists battles holding more than keep entries
func (r *BattleLogRepository) BattlesOverRetention(ctx context.Context, keep int) ([]model.BattleLogCount, error) {
	if keep < 0 {
		keep = 0
	}
	rows, err := r.rows(ctx, `
		SELECT battle_id, COUNT(*) AS count
		FROM battle_logs
		GROUP BY battle_id
		HAVING COUNT(*) > $1
		ORDER BY battle_id ASC`, keep)
	if err != nil {
		return nil, err
	}
	out := make([]model.BattleLogCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.BattleLogCount{
			BattleID: getString(row, "battle_id"),
			Count:    getInt(row, "count"),
		})
	}
	return out, nil
}

func parseBattleLog(raw database.Row) *model.BattleLog {
	row := normalizeRow(raw, battleLogJSON)
	return &model.BattleLog{
		ID:        getInt(row, "id"),
		BattleID:  getString(row, "battle_id"),
		LogType:   model.BattleLogType(getString(row, "log_type")),
		Message:   getString(row, "message"),
		LogData:   getJSONMap(row, "log_data"),
		CreatedAt: getTimeValue(row, "created_at"),
	}
}
