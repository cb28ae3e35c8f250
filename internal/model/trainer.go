package model

import "time"

// Validation constants
const (
	MaxTrainerNameLength = 100
	MaxMonsterLevel      = 100
)

// Trainer is a player-owned character that holds monsters and an inventory
type Trainer struct {
	ID                  int           `json:"id"`
	PlayerUserID        string        `json:"playerUserId"`
	Name                string        `json:"name"`
	Nickname            *string       `json:"nickname,omitempty"`
	Faction             *string       `json:"faction,omitempty"`
	Level               int           `json:"level"`
	CurrencyAmount      int           `json:"currencyAmount"`
	TotalEarnedCurrency int           `json:"totalEarnedCurrency"`
	MainRef             *string       `json:"mainRef,omitempty"`
	Bio                 *string       `json:"bio,omitempty"`
	AdditionalRefs      []interface{} `json:"additionalRefs"`
	MonsterCount        int           `json:"monsterCount"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// TrainerCreateInput creates a trainer
type TrainerCreateInput struct {
	PlayerUserID   string        `json:"playerUserId"`
	Name           string        `json:"name"`
	Nickname       *string       `json:"nickname,omitempty"`
	Faction        *string       `json:"faction,omitempty"`
	Level          *int          `json:"level,omitempty"`
	CurrencyAmount *int          `json:"currencyAmount,omitempty"`
	MainRef        *string       `json:"mainRef,omitempty"`
	Bio            *string       `json:"bio,omitempty"`
	AdditionalRefs []interface{} `json:"additionalRefs,omitempty"`
}

// Validate checks if the create input is valid
func (in *TrainerCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.PlayerUserID == "" {
		errs = append(errs, FieldError{Field: "playerUserId", Message: "playerUserId is required"})
	}
	if in.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(in.Name) > MaxTrainerNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be 100 characters or less"})
	}
	if in.Level != nil && *in.Level < 1 {
		errs = append(errs, FieldError{Field: "level", Message: "level must be at least 1"})
	}
	return errs
}

// TrainerUpdateInput is a partial trainer update; nil fields are unchanged
type TrainerUpdateInput struct {
	Name                *string        `json:"name,omitempty"`
	Nickname            *string        `json:"nickname,omitempty"`
	Faction             *string        `json:"faction,omitempty"`
	Level               *int           `json:"level,omitempty"`
	CurrencyAmount      *int           `json:"currencyAmount,omitempty"`
	TotalEarnedCurrency *int           `json:"totalEarnedCurrency,omitempty"`
	MainRef             *string        `json:"mainRef,omitempty"`
	Bio                 *string        `json:"bio,omitempty"`
	AdditionalRefs      *[]interface{} `json:"additionalRefs,omitempty"`
}

// TrainerQuery filters and pages trainers
type TrainerQuery struct {
	Search       string
	PlayerUserID string
	Faction      string
	SortBy       string
	SortOrder    string
	Page         int
	Limit        int
}

// Monster is a trainer-owned creature. TrainerName is filled by reads that
// join the owning trainer.
type Monster struct {
	ID           int       `json:"id"`
	TrainerID    int       `json:"trainerId"`
	PlayerUserID string    `json:"playerUserId"`
	Name         string    `json:"name"`
	Species1     string    `json:"species1"`
	Species2     *string   `json:"species2,omitempty"`
	Species3     *string   `json:"species3,omitempty"`
	Type1        string    `json:"type1"`
	Type2        *string   `json:"type2,omitempty"`
	Type3        *string   `json:"type3,omitempty"`
	Type4        *string   `json:"type4,omitempty"`
	Type5        *string   `json:"type5,omitempty"`
	Attribute    *string   `json:"attribute,omitempty"`
	Level        int       `json:"level"`
	ImgLink      *string   `json:"imgLink,omitempty"`
	Moveset      []string  `json:"moveset"`
	BoxNumber    *int      `json:"boxNumber,omitempty"`
	TrainerIndex *int      `json:"trainerIndex,omitempty"`
	TrainerName  string    `json:"trainerName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Types returns the monster's non-empty types in slot order
func (m *Monster) Types() []string {
	out := []string{m.Type1}
	for _, t := range []*string{m.Type2, m.Type3, m.Type4, m.Type5} {
		if t != nil && *t != "" {
			out = append(out, *t)
		}
	}
	return out
}

// MonsterCreateInput creates a monster
type MonsterCreateInput struct {
	TrainerID    int      `json:"trainerId"`
	PlayerUserID string   `json:"playerUserId"`
	Name         string   `json:"name"`
	Species1     string   `json:"species1"`
	Species2     *string  `json:"species2,omitempty"`
	Species3     *string  `json:"species3,omitempty"`
	Type1        string   `json:"type1"`
	Type2        *string  `json:"type2,omitempty"`
	Type3        *string  `json:"type3,omitempty"`
	Type4        *string  `json:"type4,omitempty"`
	Type5        *string  `json:"type5,omitempty"`
	Attribute    *string  `json:"attribute,omitempty"`
	Level        *int     `json:"level,omitempty"`
	ImgLink      *string  `json:"imgLink,omitempty"`
	Moveset      []string `json:"moveset,omitempty"`
	BoxNumber    *int     `json:"boxNumber,omitempty"`
	TrainerIndex *int     `json:"trainerIndex,omitempty"`
}

// Validate checks if the create input is valid
func (in *MonsterCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.TrainerID <= 0 {
		errs = append(errs, FieldError{Field: "trainerId", Message: "trainerId is required"})
	}
	if in.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if in.Species1 == "" {
		errs = append(errs, FieldError{Field: "species1", Message: "species1 is required"})
	}
	if in.Type1 == "" {
		errs = append(errs, FieldError{Field: "type1", Message: "type1 is required"})
	}
	if in.Level != nil && (*in.Level < 1 || *in.Level > MaxMonsterLevel) {
		errs = append(errs, FieldError{Field: "level", Message: "level must be between 1 and 100"})
	}
	return errs
}

// MonsterUpdateInput is a partial monster update; nil fields are unchanged
type MonsterUpdateInput struct {
	Name         *string   `json:"name,omitempty"`
	Species1     *string   `json:"species1,omitempty"`
	Species2     *string   `json:"species2,omitempty"`
	Species3     *string   `json:"species3,omitempty"`
	Type1        *string   `json:"type1,omitempty"`
	Type2        *string   `json:"type2,omitempty"`
	Type3        *string   `json:"type3,omitempty"`
	Type4        *string   `json:"type4,omitempty"`
	Type5        *string   `json:"type5,omitempty"`
	Attribute    *string   `json:"attribute,omitempty"`
	Level        *int      `json:"level,omitempty"`
	ImgLink      *string   `json:"imgLink,omitempty"`
	Moveset      *[]string `json:"moveset,omitempty"`
	BoxNumber    *int      `json:"boxNumber,omitempty"`
	TrainerIndex *int      `json:"trainerIndex,omitempty"`
}

// MonsterQuery filters and pages monsters
type MonsterQuery struct {
	Search    string
	TrainerID int
	Type      string
	Species   string
	Attribute string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}
