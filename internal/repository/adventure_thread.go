package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

// AdventureThreadRepository links adventures to their Discord threads
type AdventureThreadRepository struct {
	table
}

var _ Repository[model.AdventureThread, model.AdventureThreadCreateInput, model.AdventureThreadUpdateInput] = (*AdventureThreadRepository)(nil)

// NewAdventureThreadRepository creates a new adventure thread repository
func NewAdventureThreadRepository(db database.Querier) *AdventureThreadRepository {
	return &AdventureThreadRepository{table{db: db, name: "adventure_threads"}}
}

// FindByID retrieves a thread link by ID
func (r *AdventureThreadRepository) FindByID(ctx context.Context, id int) (*model.AdventureThread, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseAdventureThread(row), nil
}

// FindByAdventureID retrieves the thread of an adventure
func (r *AdventureThreadRepository) FindByAdventureID(ctx context.Context, adventureID int) (*model.AdventureThread, error) {
	return r.findOne(ctx, `SELECT * FROM adventure_threads WHERE adventure_id = $1 ORDER BY id ASC LIMIT 1`, adventureID)
}

// FindByThreadID retrieves the link for a Discord thread
func (r *AdventureThreadRepository) FindByThreadID(ctx context.Context, discordThreadID string) (*model.AdventureThread, error) {
	return r.findOne(ctx, `SELECT * FROM adventure_threads WHERE discord_thread_id = $1 LIMIT 1`, discordThreadID)
}

func (r *AdventureThreadRepository) findOne(ctx context.Context, q string, args ...interface{}) (*model.AdventureThread, error) {
	row, err := r.db.QueryOne(ctx, q, args...)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get adventure thread: %w", err)
	}
	return parseAdventureThread(row), nil
}

// Create links a thread to an adventure. One thread per adventure is up to
// the caller.
func (r *AdventureThreadRepository) Create(ctx context.Context, in *model.AdventureThreadCreateInput) (*model.AdventureThread, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}
	q := r.insertSQL([]string{"adventure_id", "discord_thread_id", "discord_channel_id", "thread_name"})
	args := []interface{}{in.AdventureID, in.DiscordThreadID, in.DiscordChannelID, in.ThreadName}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update changes the channel or thread name. The table has no updated_at.
func (r *AdventureThreadRepository) Update(ctx context.Context, id int, in *model.AdventureThreadUpdateInput) (*model.AdventureThread, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "discord_channel_id", in.DiscordChannelID)
		query.SetPtr(&p, "thread_name", in.ThreadName)
	}
	return update(ctx, r.table, id, &p, false, r.FindByID)
}

// DeleteByAdventureID removes every thread link of an adventure
func (r *AdventureThreadRepository) DeleteByAdventureID(ctx context.Context, adventureID int) (bool, error) {
	n, err := r.db.Execute(ctx, `DELETE FROM adventure_threads WHERE adventure_id = $1`, adventureID)
	if err != nil {
		return false, fmt.Errorf("failed to delete adventure thread: %w", err)
	}
	return n > 0, nil
}

func parseAdventureThread(row database.Row) *model.AdventureThread {
	return &model.AdventureThread{
		ID:               getInt(row, "id"),
		AdventureID:      getInt(row, "adventure_id"),
		DiscordThreadID:  getString(row, "discord_thread_id"),
		DiscordChannelID: getString(row, "discord_channel_id"),
		ThreadName:       getStringPtr(row, "thread_name"),
		CreatedAt:        getTimeValue(row, "created_at"),
	}
}
