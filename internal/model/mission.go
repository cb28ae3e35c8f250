package model

import (
	"fmt"
	"strings"
	"time"
)

// MissionDifficulty grades a mission
type MissionDifficulty string

const (
	DifficultyEasy    MissionDifficulty = "easy"
	DifficultyMedium  MissionDifficulty = "medium"
	DifficultyHard    MissionDifficulty = "hard"
	DifficultyExtreme MissionDifficulty = "extreme"
)

// IsValid checks if the difficulty is known
func (d MissionDifficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme:
		return true
	}
	return false
}

// ParseMissionDifficulty accepts a difficulty in any case
func ParseMissionDifficulty(s string) (MissionDifficulty, error) {
	d := MissionDifficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// Mission is a mission template players can start
type Mission struct {
	ID           int                    `json:"id"`
	Name         string                 `json:"name"`
	Description  *string                `json:"description,omitempty"`
	Difficulty   MissionDifficulty      `json:"difficulty"`
	Duration     int                    `json:"duration"`
	MinLevel     int                    `json:"minLevel"`
	MaxLevel     *int                   `json:"maxLevel,omitempty"`
	MaxMonsters  int                    `json:"maxMonsters"`
	Requirements map[string]interface{} `json:"requirements"`
	RewardConfig map[string]interface{} `json:"rewardConfig"`
	IsActive     bool                   `json:"isActive"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// AllowsLevel reports whether a monster of the given level may join
func (m *Mission) AllowsLevel(level int) bool {
	if level < m.MinLevel {
		return false
	}
	return m.MaxLevel == nil || level <= *m.MaxLevel
}

// MissionCreateInput creates a mission
type MissionCreateInput struct {
	Name         string                 `json:"name"`
	Description  *string                `json:"description,omitempty"`
	Difficulty   MissionDifficulty      `json:"difficulty"`
	Duration     *int                   `json:"duration,omitempty"`
	MinLevel     *int                   `json:"minLevel,omitempty"`
	MaxLevel     *int                   `json:"maxLevel,omitempty"`
	MaxMonsters  *int                   `json:"maxMonsters,omitempty"`
	Requirements map[string]interface{} `json:"requirements,omitempty"`
	RewardConfig map[string]interface{} `json:"rewardConfig,omitempty"`
	IsActive     *bool                  `json:"isActive,omitempty"`
}

// Validate checks if the create input is valid
func (in *MissionCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if in.Difficulty != "" && !in.Difficulty.IsValid() {
		errs = append(errs, FieldError{Field: "difficulty", Message: "difficulty must be easy, medium, hard or extreme"})
	}
	if in.Duration != nil && *in.Duration < 1 {
		errs = append(errs, FieldError{Field: "duration", Message: "duration must be at least 1"})
	}
	if in.MinLevel != nil && in.MaxLevel != nil && *in.MaxLevel < *in.MinLevel {
		errs = append(errs, FieldError{Field: "maxLevel", Message: "maxLevel must not be below minLevel"})
	}
	return errs
}

// MissionUpdateInput is a partial mission update
type MissionUpdateInput struct {
	Name         *string                 `json:"name,omitempty"`
	Description  *string                 `json:"description,omitempty"`
	Difficulty   *MissionDifficulty      `json:"difficulty,omitempty"`
	Duration     *int                    `json:"duration,omitempty"`
	MinLevel     *int                    `json:"minLevel,omitempty"`
	MaxLevel     *int                    `json:"maxLevel,omitempty"`
	MaxMonsters  *int                    `json:"maxMonsters,omitempty"`
	Requirements *map[string]interface{} `json:"requirements,omitempty"`
	RewardConfig *map[string]interface{} `json:"rewardConfig,omitempty"`
	IsActive     *bool                   `json:"isActive,omitempty"`
}

// MissionQuery filters and pages missions. Level keeps only missions a
// monster of that level is eligible for.
type MissionQuery struct {
	Search     string
	Difficulty MissionDifficulty
	Active     *bool
	Level      *int
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// UserMissionStatus is the state of a started mission
type UserMissionStatus string

const (
	UserMissionActive    UserMissionStatus = "active"
	UserMissionCompleted UserMissionStatus = "completed"
	UserMissionAbandoned UserMissionStatus = "abandoned"
)

// UserMission tracks one player's progress through a mission
type UserMission struct {
	ID               int               `json:"id"`
	UserID           string            `json:"userId"`
	MissionID        int               `json:"missionId"`
	Status           UserMissionStatus `json:"status"`
	CurrentProgress  int               `json:"currentProgress"`
	RequiredProgress int               `json:"requiredProgress"`
	MonsterIDs       []int             `json:"monsterIds"`
	RewardClaimed    bool              `json:"rewardClaimed"`
	StartedAt        time.Time         `json:"startedAt"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
	MissionName      string            `json:"missionName,omitempty"`
}

// UserMissionCreateInput starts a mission
type UserMissionCreateInput struct {
	UserID           string `json:"userId"`
	MissionID        int    `json:"missionId"`
	RequiredProgress int    `json:"requiredProgress"`
	MonsterIDs       []int  `json:"monsterIds,omitempty"`
}

// Validate checks if the create input is valid
func (in *UserMissionCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.UserID == "" {
		errs = append(errs, FieldError{Field: "userId", Message: "userId is required"})
	}
	if in.MissionID <= 0 {
		errs = append(errs, FieldError{Field: "missionId", Message: "missionId is required"})
	}
	if in.RequiredProgress < 1 {
		errs = append(errs, FieldError{Field: "requiredProgress", Message: "requiredProgress must be at least 1"})
	}
	return errs
}

// UserMissionUpdateInput is a partial progress update
type UserMissionUpdateInput struct {
	Status          *UserMissionStatus `json:"status,omitempty"`
	CurrentProgress *int               `json:"currentProgress,omitempty"`
	MonsterIDs      *[]int             `json:"monsterIds,omitempty"`
}
