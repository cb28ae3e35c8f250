package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BattleLogType classifies a battle log entry
type BattleLogType string

const (
	LogTypeAction  BattleLogType = "action"
	LogTypeDamage  BattleLogType = "damage"
	LogTypeStatus  BattleLogType = "status"
	LogTypeSystem  BattleLogType = "system"
	LogTypeMessage BattleLogType = "message"
)

// IsValid checks if the log type is known
func (t BattleLogType) IsValid() bool {
	switch t {
	case LogTypeAction, LogTypeDamage, LogTypeStatus, LogTypeSystem, LogTypeMessage:
		return true
	}
	return false
}

// ParseBattleLogType validates a log type string
func ParseBattleLogType(s string) (BattleLogType, error) {
	t := BattleLogType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLogType, s)
	}
	return t, nil
}

// DefaultBattleLogKeep is how many entries per battle retention keeps when
// not configured
const DefaultBattleLogKeep = 200

// NewBattleID returns a fresh identifier for a battle's log stream
func NewBattleID() string {
	return uuid.NewString()
}

// BattleLog is one append-only entry of a battle's log
type BattleLog struct {
	ID        int                    `json:"id"`
	BattleID  string                 `json:"battleId"`
	LogType   BattleLogType          `json:"logType"`
	Message   string                 `json:"message"`
	LogData   map[string]interface{} `json:"logData"`
	CreatedAt time.Time              `json:"createdAt"`
}

// BattleLogCreateInput appends a log entry
type BattleLogCreateInput struct {
	BattleID string                 `json:"battleId"`
	LogType  BattleLogType          `json:"logType"`
	Message  string                 `json:"message"`
	LogData  map[string]interface{} `json:"logData,omitempty"`
}

// Validate checks if the create input is valid
func (in *BattleLogCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.BattleID == "" {
		errs = append(errs, FieldError{Field: "battleId", Message: "battleId is required"})
	}
	if !in.LogType.IsValid() {
		errs = append(errs, FieldError{Field: "logType", Message: "logType must be one of action, damage, status, system, message"})
	}
	if in.Message == "" {
		errs = append(errs, FieldError{Field: "message", Message: "message is required"})
	}
	return errs
}

// BattleLogUpdateInput exists for the shared repository shape; log entries
// are immutable
type BattleLogUpdateInput struct{}

// BattleLogQuery narrows FindByBattleID
type BattleLogQuery struct {
	LogType BattleLogType
	Limit   int
}

// BattleLogCount is one battle's number of stored entries
type BattleLogCount struct {
	BattleID string `json:"battleId"`
	Count    int    `json:"count"`
}
