package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

// ===== Chat Rooms =====

// ChatRoomRepository handles chat room data access
type ChatRoomRepository struct {
	table
}

var _ Repository[model.ChatRoom, model.ChatRoomCreateInput, model.ChatRoomUpdateInput] = (*ChatRoomRepository)(nil)

// NewChatRoomRepository creates a new chat room repository
func NewChatRoomRepository(db database.Querier) *ChatRoomRepository {
	return &ChatRoomRepository{table{db: db, name: "chat_rooms"}}
}

// FindByID retrieves a room by ID
func (r *ChatRoomRepository) FindByID(ctx context.Context, id int) (*model.ChatRoom, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseChatRoom(row), nil
}

// FindByTrainerID returns the rooms a trainer belongs to, most recently
// active first, each with its member count and unread flag
func (r *ChatRoomRepository) FindByTrainerID(ctx context.Context, trainerID int) ([]*model.ChatRoomSummary, error) {
	rows, err := r.rows(ctx, `
		SELECT cr.*,
			me.last_read_at,
			(SELECT COUNT(*) FROM chat_room_members x WHERE x.room_id = cr.id) AS member_count,
			CASE
				WHEN cr.last_message_at IS NOT NULL
					AND (me.last_read_at IS NULL OR cr.last_message_at > me.last_read_at)
				THEN 1 ELSE 0
			END AS unread
		FROM chat_rooms cr
		JOIN chat_room_members me ON me.room_id = cr.id AND me.trainer_id = $1
		ORDER BY cr.last_message_at DESC NULLS LAST, cr.id DESC`, trainerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.ChatRoomSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, &model.ChatRoomSummary{
			ChatRoom:    *parseChatRoom(row),
			MemberCount: getInt(row, "member_count"),
			LastReadAt:  getTime(row, "last_read_at"),
			Unread:      getInt(row, "unread"),
		})
	}
	return out, nil
}

// FindDirectRoom returns the direct room shared by two trainers, if any
func (r *ChatRoomRepository) FindDirectRoom(ctx context.Context, a, b int) (*model.ChatRoom, error) {
	row, err := r.db.QueryOne(ctx, `
		SELECT cr.* FROM chat_rooms cr
		WHERE cr.room_type = 'direct'
		AND EXISTS (SELECT 1 FROM chat_room_members m WHERE m.room_id = cr.id AND m.trainer_id = $1)
		AND EXISTS (SELECT 1 FROM chat_room_members m WHERE m.room_id = cr.id AND m.trainer_id = $2)
		ORDER BY cr.id ASC
		LIMIT 1`, a, b)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find direct room: %w", err)
	}
	return parseChatRoom(row), nil
}

// Create creates a room. The room type defaults to group.
func (r *ChatRoomRepository) Create(ctx context.Context, in *model.ChatRoomCreateInput) (*model.ChatRoom, error) {
	if in.RoomType != "" && !in.RoomType.IsValid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidRoomType, in.RoomType)
	}
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}
	roomType := in.RoomType
	if roomType == "" {
		roomType = model.RoomTypeGroup
	}
	q := r.insertSQL([]string{"name", "room_type", "created_by"})
	return create(ctx, r.table, q, []interface{}{in.Name, string(roomType), in.CreatedBy}, r.FindByID)
}

// Update applies the set fields of in
func (r *ChatRoomRepository) Update(ctx context.Context, id int, in *model.ChatRoomUpdateInput) (*model.ChatRoom, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "name", in.Name)
		if in.RoomType != nil {
			if !in.RoomType.IsValid() {
				return nil, fmt.Errorf("%w: %q", model.ErrInvalidRoomType, *in.RoomType)
			}
			p.Set("room_type", string(*in.RoomType))
		}
	}
	return update(ctx, r.table, id, &p, true, r.FindByID)
}

// TouchLastMessage records that a message was just posted to the room
func (r *ChatRoomRepository) TouchLastMessage(ctx context.Context, roomID int) error {
	n, err := r.db.Execute(ctx, `UPDATE chat_rooms SET last_message_at = NOW(), updated_at = NOW() WHERE id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("failed to touch chat room: %w", err)
	}
	if n == 0 {
		return notFound("chat room", roomID)
	}
	return nil
}

// ===== Chat Room Members =====

const memberSelect = `
	SELECT crm.*, t.name AS trainer_name
	FROM chat_room_members crm
	JOIN trainers t ON crm.trainer_id = t.id`

// ChatRoomMemberRepository handles room membership
type ChatRoomMemberRepository struct {
	table
}

var _ Repository[model.ChatRoomMember, model.ChatRoomMemberCreateInput, model.ChatRoomMemberUpdateInput] = (*ChatRoomMemberRepository)(nil)

// NewChatRoomMemberRepository creates a new membership repository
func NewChatRoomMemberRepository(db database.Querier) *ChatRoomMemberRepository {
	return &ChatRoomMemberRepository{table{db: db, name: "chat_room_members"}}
}

// FindByID retrieves a membership by ID
func (r *ChatRoomMemberRepository) FindByID(ctx context.Context, id int) (*model.ChatRoomMember, error) {
	row, err := r.db.QueryOne(ctx, memberSelect+` WHERE crm.id = $1`, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat room member: %w", err)
	}
	return parseChatRoomMember(row), nil
}

// FindByRoomID lists a room's members in join order
func (r *ChatRoomMemberRepository) FindByRoomID(ctx context.Context, roomID int) ([]*model.ChatRoomMember, error) {
	rows, err := r.rows(ctx, memberSelect+` WHERE crm.room_id = $1 ORDER BY crm.joined_at ASC, crm.id ASC`, roomID)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseChatRoomMember), nil
}

// Create adds a member; it is AddMember under the shared contract
func (r *ChatRoomMemberRepository) Create(ctx context.Context, in *model.ChatRoomMemberCreateInput) (*model.ChatRoomMember, error) {
	if in.RoomID <= 0 || in.TrainerID <= 0 {
		return nil, model.NewValidationError([]model.FieldError{{Field: "roomId", Message: "roomId and trainerId are required"}})
	}
	return r.AddMember(ctx, in.RoomID, in.TrainerID, in.Role)
}

// AddMember joins a trainer to a room. Joining twice keeps the first
// membership.
func (r *ChatRoomMemberRepository) AddMember(ctx context.Context, roomID, trainerID int, role model.MemberRole) (*model.ChatRoomMember, error) {
	if role == "" {
		role = model.MemberRoleMember
	}
	_, err := r.db.Execute(ctx, `
		INSERT INTO chat_room_members (room_id, trainer_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id, trainer_id) DO NOTHING`, roomID, trainerID, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to add chat room member: %w", err)
	}

	row, err := r.db.QueryOne(ctx, memberSelect+` WHERE crm.room_id = $1 AND crm.trainer_id = $2`, roomID, trainerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %d of room %d", ErrCreateFailed, trainerID, roomID)
		}
		return nil, fmt.Errorf("failed to get chat room member: %w", err)
	}
	return parseChatRoomMember(row), nil
}

// Update applies the set fields of in
func (r *ChatRoomMemberRepository) Update(ctx context.Context, id int, in *model.ChatRoomMemberUpdateInput) (*model.ChatRoomMember, error) {
	var p query.Patch
	if in != nil {
		if in.Role != nil {
			p.Set("role", string(*in.Role))
		}
		query.SetPtr(&p, "last_read_at", in.LastReadAt)
	}
	return update(ctx, r.table, id, &p, false, r.FindByID)
}

// RemoveMember takes a trainer out of a room
func (r *ChatRoomMemberRepository) RemoveMember(ctx context.Context, roomID, trainerID int) (bool, error) {
	n, err := r.db.Execute(ctx, `DELETE FROM chat_room_members WHERE room_id = $1 AND trainer_id = $2`, roomID, trainerID)
	if err != nil {
		return false, fmt.Errorf("failed to remove chat room member: %w", err)
	}
	return n > 0, nil
}

// IsMember reports whether a trainer belongs to a room
func (r *ChatRoomMemberRepository) IsMember(ctx context.Context, roomID, trainerID int) (bool, error) {
	res, err := r.db.Query(ctx, `SELECT 1 AS present FROM chat_room_members WHERE room_id = $1 AND trainer_id = $2`, roomID, trainerID)
	if err != nil {
		return false, fmt.Errorf("failed to check chat room member: %w", err)
	}
	return len(res.Rows) > 0, nil
}

// MarkRead sets the member's read marker to now
func (r *ChatRoomMemberRepository) MarkRead(ctx context.Context, roomID, trainerID int) error {
	n, err := r.db.Execute(ctx, `UPDATE chat_room_members SET last_read_at = NOW() WHERE room_id = $1 AND trainer_id = $2`, roomID, trainerID)
	if err != nil {
		return fmt.Errorf("failed to mark chat room read: %w", err)
	}
	if n == 0 {
		return notFound("chat room member", fmt.Sprintf("%d/%d", roomID, trainerID))
	}
	return nil
}

// UnreadCount returns 1 when the room has a message newer than the
// member's read marker, otherwise 0
func (r *ChatRoomMemberRepository) UnreadCount(ctx context.Context, roomID, trainerID int) (int, error) {
	row, err := r.db.QueryOne(ctx, `
		SELECT CASE
			WHEN cr.last_message_at IS NOT NULL
				AND (crm.last_read_at IS NULL OR cr.last_message_at > crm.last_read_at)
			THEN 1 ELSE 0
		END AS unread
		FROM chat_room_members crm
		JOIN chat_rooms cr ON cr.id = crm.room_id
		WHERE crm.room_id = $1 AND crm.trainer_id = $2`, roomID, trainerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return getInt(row, "unread"), nil
}

// ===== DM Requests =====

// DmRequestRepository handles direct-message requests
type DmRequestRepository struct {
	table
}

var _ Repository[model.DmRequest, model.DmRequestCreateInput, model.DmRequestUpdateInput] = (*DmRequestRepository)(nil)

// NewDmRequestRepository creates a new DM request repository
func NewDmRequestRepository(db database.Querier) *DmRequestRepository {
	return &DmRequestRepository{table{db: db, name: "chat_dm_requests"}}
}

// FindByID retrieves a request by ID
func (r *DmRequestRepository) FindByID(ctx context.Context, id int) (*model.DmRequest, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseDmRequest(row), nil
}

// FindPendingForTrainer lists the pending requests a trainer received
func (r *DmRequestRepository) FindPendingForTrainer(ctx context.Context, trainerID int) ([]*model.DmRequest, error) {
	rows, err := r.rows(ctx, `
		SELECT * FROM chat_dm_requests
		WHERE to_trainer_id = $1 AND status = 'pending'
		ORDER BY created_at ASC, id ASC`, trainerID)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, parseDmRequest), nil
}

// FindBetween returns the newest request between two trainers in either
// direction
func (r *DmRequestRepository) FindBetween(ctx context.Context, a, b int) (*model.DmRequest, error) {
	row, err := r.db.QueryOne(ctx, `
		SELECT * FROM chat_dm_requests
		WHERE (from_trainer_id = $1 AND to_trainer_id = $2)
		OR (from_trainer_id = $2 AND to_trainer_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, a, b)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find dm request: %w", err)
	}
	return parseDmRequest(row), nil
}

// Create opens a pending request
func (r *DmRequestRepository) Create(ctx context.Context, in *model.DmRequestCreateInput) (*model.DmRequest, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}
	q := r.insertSQL([]string{"from_trainer_id", "to_trainer_id", "status", "message"})
	args := []interface{}{in.FromTrainerID, in.ToTrainerID, string(model.DmRequestPending), in.Message}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update applies the set fields of in. Status changes go through Respond.
func (r *DmRequestRepository) Update(ctx context.Context, id int, in *model.DmRequestUpdateInput) (*model.DmRequest, error) {
	var p query.Patch
	if in != nil {
		query.SetPtr(&p, "message", in.Message)
		query.SetPtr(&p, "room_id", in.RoomID)
	}
	return update(ctx, r.table, id, &p, false, r.FindByID)
}

// Respond accepts or rejects a pending request. Only pending requests
// move; anything else fails with ErrRequestNotPending.
func (r *DmRequestRepository) Respond(ctx context.Context, id int, accept bool) (*model.DmRequest, error) {
	status := model.DmRequestRejected
	if accept {
		status = model.DmRequestAccepted
	}

	res, err := r.db.Query(ctx, `
		UPDATE chat_dm_requests SET status = $1, responded_at = NOW()
		WHERE id = $2 AND status = 'pending'
		RETURNING *`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("failed to respond to dm request: %w", err)
	}
	if row := res.First(); row != nil {
		return parseDmRequest(row), nil
	}

	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, notFound("dm request", id)
	}
	return nil, fmt.Errorf("%w: request %d is %s", ErrRequestNotPending, id, existing.Status)
}

// Parsing helpers

func parseChatRoom(row database.Row) *model.ChatRoom {
	return &model.ChatRoom{
		ID:            getInt(row, "id"),
		Name:          getString(row, "name"),
		RoomType:      model.ChatRoomType(getString(row, "room_type")),
		CreatedBy:     getIntPtr(row, "created_by"),
		LastMessageAt: getTime(row, "last_message_at"),
		CreatedAt:     getTimeValue(row, "created_at"),
		UpdatedAt:     getTimeValue(row, "updated_at"),
	}
}

func parseChatRoomMember(row database.Row) *model.ChatRoomMember {
	return &model.ChatRoomMember{
		ID:          getInt(row, "id"),
		RoomID:      getInt(row, "room_id"),
		TrainerID:   getInt(row, "trainer_id"),
		Role:        model.MemberRole(getString(row, "role")),
		JoinedAt:    getTimeValue(row, "joined_at"),
		LastReadAt:  getTime(row, "last_read_at"),
		TrainerName: getString(row, "trainer_name"),
	}
}

func parseDmRequest(row database.Row) *model.DmRequest {
	return &model.DmRequest{
		ID:            getInt(row, "id"),
		FromTrainerID: getInt(row, "from_trainer_id"),
		ToTrainerID:   getInt(row, "to_trainer_id"),
		Status:        model.DmRequestStatus(getString(row, "status")),
		Message:       getStringPtr(row, "message"),
		RoomID:        getIntPtr(row, "room_id"),
		CreatedAt:     getTimeValue(row, "created_at"),
		RespondedAt:   getTime(row, "responded_at"),
	}
}
