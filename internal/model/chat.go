package model

import (
	"fmt"
	"time"
)

// ChatRoomType classifies a chat room
type ChatRoomType string

const (
	RoomTypeDirect  ChatRoomType = "direct"
	RoomTypeGroup   ChatRoomType = "group"
	RoomTypeFaction ChatRoomType = "faction"
)

// IsValid checks if the room type is known
func (t ChatRoomType) IsValid() bool {
	switch t {
	case RoomTypeDirect, RoomTypeGroup, RoomTypeFaction:
		return true
	}
	return false
}

// MemberRole is a trainer's role inside a room
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// DmRequestStatus is the state of a direct-message request
type DmRequestStatus string

const (
	DmRequestPending  DmRequestStatus = "pending"
	DmRequestAccepted DmRequestStatus = "accepted"
	DmRequestRejected DmRequestStatus = "rejected"
)

// ChatRoom is a conversation between trainers. Message bodies are stored
// elsewhere; only LastMessageAt is tracked here.
type ChatRoom struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	RoomType      ChatRoomType `json:"roomType"`
	CreatedBy     *int         `json:"createdBy,omitempty"`
	LastMessageAt *time.Time   `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// ChatRoomSummary is a room as seen by one member. Unread is 1 when a
// message arrived after the member last read the room, otherwise 0; it is
// not an exact message count.
type ChatRoomSummary struct {
	ChatRoom
	MemberCount int        `json:"memberCount"`
	LastReadAt  *time.Time `json:"lastReadAt,omitempty"`
	Unread      int        `json:"unread"`
}

// ChatRoomCreateInput creates a room
type ChatRoomCreateInput struct {
	Name      string       `json:"name"`
	RoomType  ChatRoomType `json:"roomType"`
	CreatedBy *int         `json:"createdBy,omitempty"`
}

// Validate checks if the create input is valid
func (in *ChatRoomCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if in.RoomType != "" && !in.RoomType.IsValid() {
		errs = append(errs, FieldError{Field: "roomType", Message: fmt.Sprintf("unknown room type %q", in.RoomType)})
	}
	return errs
}

// ChatRoomUpdateInput is a partial room update
type ChatRoomUpdateInput struct {
	Name     *string       `json:"name,omitempty"`
	RoomType *ChatRoomType `json:"roomType,omitempty"`
}

// ChatRoomMember is a trainer's membership in a room
type ChatRoomMember struct {
	ID          int        `json:"id"`
	RoomID      int        `json:"roomId"`
	TrainerID   int        `json:"trainerId"`
	Role        MemberRole `json:"role"`
	JoinedAt    time.Time  `json:"joinedAt"`
	LastReadAt  *time.Time `json:"lastReadAt,omitempty"`
	TrainerName string     `json:"trainerName,omitempty"`
}

// ChatRoomMemberCreateInput adds a member
type ChatRoomMemberCreateInput struct {
	RoomID    int        `json:"roomId"`
	TrainerID int        `json:"trainerId"`
	Role      MemberRole `json:"role,omitempty"`
}

// ChatRoomMemberUpdateInput is a partial membership update
type ChatRoomMemberUpdateInput struct {
	Role       *MemberRole `json:"role,omitempty"`
	LastReadAt *time.Time  `json:"lastReadAt,omitempty"`
}

// DmRequest asks another trainer to open a direct conversation
type DmRequest struct {
	ID            int             `json:"id"`
	FromTrainerID int             `json:"fromTrainerId"`
	ToTrainerID   int             `json:"toTrainerId"`
	Status        DmRequestStatus `json:"status"`
	Message       *string         `json:"message,omitempty"`
	RoomID        *int            `json:"roomId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	RespondedAt   *time.Time      `json:"respondedAt,omitempty"`
}

// DmRequestCreateInput opens a request in the pending state
type DmRequestCreateInput struct {
	FromTrainerID int     `json:"fromTrainerId"`
	ToTrainerID   int     `json:"toTrainerId"`
	Message       *string `json:"message,omitempty"`
}

// Validate checks if the create input is valid
func (in *DmRequestCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.FromTrainerID <= 0 {
		errs = append(errs, FieldError{Field: "fromTrainerId", Message: "fromTrainerId is required"})
	}
	if in.ToTrainerID <= 0 {
		errs = append(errs, FieldError{Field: "toTrainerId", Message: "toTrainerId is required"})
	}
	if in.FromTrainerID > 0 && in.FromTrainerID == in.ToTrainerID {
		errs = append(errs, FieldError{Field: "toTrainerId", Message: "cannot send a request to yourself"})
	}
	return errs
}

// DmRequestUpdateInput is a partial request update
type DmRequestUpdateInput struct {
	Message *string `json:"message,omitempty"`
	RoomID  *int    `json:"roomId,omitempty"`
}
