package model

import "time"

// AntiqueSetting controls how an antique item is appraised. ItemName is the
// natural key; writes are upserts on it.
type AntiqueSetting struct {
	ID                 int                    `json:"id"`
	ItemName           string                 `json:"itemName"`
	Category           string                 `json:"category"`
	Holiday            *string                `json:"holiday,omitempty"`
	RollCount          int                    `json:"rollCount"`
	ForceFusion        bool                   `json:"forceFusion"`
	ForceNoFusion      bool                   `json:"forceNoFusion"`
	AllowFusion        bool                   `json:"allowFusion"`
	ForceMinTypes      *int                   `json:"forceMinTypes,omitempty"`
	OverrideParameters map[string]interface{} `json:"overrideParameters"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// AntiqueSettingInput is the full set of upsertable fields. Nil pointers take
// the column defaults on insert.
type AntiqueSettingInput struct {
	ItemName           string                 `json:"itemName"`
	Category           string                 `json:"category"`
	Holiday            *string                `json:"holiday,omitempty"`
	RollCount          *int                   `json:"rollCount,omitempty"`
	ForceFusion        *bool                  `json:"forceFusion,omitempty"`
	ForceNoFusion      *bool                  `json:"forceNoFusion,omitempty"`
	AllowFusion        *bool                  `json:"allowFusion,omitempty"`
	ForceMinTypes      *int                   `json:"forceMinTypes,omitempty"`
	OverrideParameters map[string]interface{} `json:"overrideParameters,omitempty"`
}

// Validate checks if the input is valid
func (in *AntiqueSettingInput) Validate() []FieldError {
	var errs []FieldError
	if in.ItemName == "" {
		errs = append(errs, FieldError{Field: "itemName", Message: "itemName is required"})
	}
	if in.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "category is required"})
	}
	if in.RollCount != nil && *in.RollCount < 1 {
		errs = append(errs, FieldError{Field: "rollCount", Message: "rollCount must be at least 1"})
	}
	if in.ForceFusion != nil && in.ForceNoFusion != nil && *in.ForceFusion && *in.ForceNoFusion {
		errs = append(errs, FieldError{Field: "forceFusion", Message: "forceFusion and forceNoFusion are mutually exclusive"})
	}
	return errs
}

// AntiqueSettingUpdateInput is a partial update. The item name cannot change
// because it is the upsert key.
type AntiqueSettingUpdateInput struct {
	Category           *string                 `json:"category,omitempty"`
	Holiday            *string                 `json:"holiday,omitempty"`
	ClearHoliday       bool                    `json:"clearHoliday,omitempty"` // resets holiday to NULL; wins over Holiday
	RollCount          *int                    `json:"rollCount,omitempty"`
	ForceFusion        *bool                   `json:"forceFusion,omitempty"`
	ForceNoFusion      *bool                   `json:"forceNoFusion,omitempty"`
	AllowFusion        *bool                   `json:"allowFusion,omitempty"`
	ForceMinTypes      *int                    `json:"forceMinTypes,omitempty"`
	OverrideParameters *map[string]interface{} `json:"overrideParameters,omitempty"`
}

// IsEmpty reports whether no field is set
func (in *AntiqueSettingUpdateInput) IsEmpty() bool {
	return in == nil || (in.Category == nil && in.Holiday == nil && !in.ClearHoliday && in.RollCount == nil &&
		in.ForceFusion == nil && in.ForceNoFusion == nil && in.AllowFusion == nil &&
		in.ForceMinTypes == nil && in.OverrideParameters == nil)
}

// MergeInto applies the set fields on top of an existing setting and returns
// the resulting upsert input
func (in *AntiqueSettingUpdateInput) MergeInto(s *AntiqueSetting) *AntiqueSettingInput {
	out := &AntiqueSettingInput{
		ItemName:           s.ItemName,
		Category:           s.Category,
		Holiday:            s.Holiday,
		RollCount:          &s.RollCount,
		ForceFusion:        &s.ForceFusion,
		ForceNoFusion:      &s.ForceNoFusion,
		AllowFusion:        &s.AllowFusion,
		ForceMinTypes:      s.ForceMinTypes,
		OverrideParameters: s.OverrideParameters,
	}
	if in == nil {
		return out
	}
	if in.Category != nil {
		out.Category = *in.Category
	}
	if in.ClearHoliday {
		out.Holiday = nil
	} else if in.Holiday != nil {
		out.Holiday = in.Holiday
	}
	if in.RollCount != nil {
		out.RollCount = in.RollCount
	}
	if in.ForceFusion != nil {
		out.ForceFusion = in.ForceFusion
	}
	if in.ForceNoFusion != nil {
		out.ForceNoFusion = in.ForceNoFusion
	}
	if in.AllowFusion != nil {
		out.AllowFusion = in.AllowFusion
	}
	if in.ForceMinTypes != nil {
		out.ForceMinTypes = in.ForceMinTypes
	}
	if in.OverrideParameters != nil {
		out.OverrideParameters = *in.OverrideParameters
	}
	return out
}

// AutomatedTrade is an immutable record of a completed trade
type AutomatedTrade struct {
	ID              int                    `json:"id"`
	FromTrainerID   int                    `json:"fromTrainerId"`
	ToTrainerID     int                    `json:"toTrainerId"`
	FromItems       map[string]interface{} `json:"fromItems"`
	ToItems         map[string]interface{} `json:"toItems"`
	FromMonsters    []interface{}          `json:"fromMonsters"`
	ToMonsters      []interface{}          `json:"toMonsters"`
	FromTrainerName string                 `json:"fromTrainerName,omitempty"`
	ToTrainerName   string                 `json:"toTrainerName,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// AutomatedTradeCreateInput records a trade
type AutomatedTradeCreateInput struct {
	FromTrainerID int                    `json:"fromTrainerId"`
	ToTrainerID   int                    `json:"toTrainerId"`
	FromItems     map[string]interface{} `json:"fromItems,omitempty"`
	ToItems       map[string]interface{} `json:"toItems,omitempty"`
	FromMonsters  []interface{}          `json:"fromMonsters,omitempty"`
	ToMonsters    []interface{}          `json:"toMonsters,omitempty"`
}

// Validate checks if the create input is valid
func (in *AutomatedTradeCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.FromTrainerID <= 0 {
		errs = append(errs, FieldError{Field: "fromTrainerId", Message: "fromTrainerId is required"})
	}
	if in.ToTrainerID <= 0 {
		errs = append(errs, FieldError{Field: "toTrainerId", Message: "toTrainerId is required"})
	}
	if in.FromTrainerID > 0 && in.FromTrainerID == in.ToTrainerID {
		errs = append(errs, FieldError{Field: "toTrainerId", Message: "a trainer cannot trade with themselves"})
	}
	return errs
}

// AutomatedTradeUpdateInput exists for the shared repository shape; trades
// are append-only and carry no updatable fields
type AutomatedTradeUpdateInput struct{}
