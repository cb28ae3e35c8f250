package model

import "time"

// MonthlyDistributionItem is one item handed to every trainer for a month
type MonthlyDistributionItem struct {
	ID        int               `json:"id"`
	Year      int               `json:"year"`
	Month     int               `json:"month"`
	ItemName  string            `json:"itemName"`
	Category  InventoryCategory `json:"category"`
	Quantity  int               `json:"quantity"`
	CreatedAt time.Time         `json:"createdAt"`
}

// MonthlyDistributionItemInput creates a distribution item
type MonthlyDistributionItemInput struct {
	Year     int               `json:"year"`
	Month    int               `json:"month"`
	ItemName string            `json:"itemName"`
	Category InventoryCategory `json:"category"`
	Quantity int               `json:"quantity"`
}

// Validate checks if the input is valid
func (in *MonthlyDistributionItemInput) Validate() []FieldError {
	var errs []FieldError
	if in.Year < 2000 {
		errs = append(errs, FieldError{Field: "year", Message: "year is required"})
	}
	if in.Month < 1 || in.Month > 12 {
		errs = append(errs, FieldError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if in.ItemName == "" {
		errs = append(errs, FieldError{Field: "itemName", Message: "itemName is required"})
	}
	if !in.Category.IsValid() {
		errs = append(errs, FieldError{Field: "category", Message: "category is not an inventory category"})
	}
	if in.Quantity < 1 {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must be at least 1"})
	}
	return errs
}

// MonthlyDistributionItemUpdateInput is a partial item update
type MonthlyDistributionItemUpdateInput struct {
	ItemName *string            `json:"itemName,omitempty"`
	Category *InventoryCategory `json:"category,omitempty"`
	Quantity *int               `json:"quantity,omitempty"`
}

// TrainerAchievementClaim records that a trainer collected an achievement's
// reward
type TrainerAchievementClaim struct {
	ID            int       `json:"id"`
	TrainerID     int       `json:"trainerId"`
	AchievementID string    `json:"achievementId"`
	ClaimedAt     time.Time `json:"claimedAt"`
}

// TrainerAchievementClaimInput claims an achievement
type TrainerAchievementClaimInput struct {
	TrainerID     int    `json:"trainerId"`
	AchievementID string `json:"achievementId"`
}

// Validate checks if the input is valid
func (in *TrainerAchievementClaimInput) Validate() []FieldError {
	var errs []FieldError
	if in.TrainerID <= 0 {
		errs = append(errs, FieldError{Field: "trainerId", Message: "trainerId is required"})
	}
	if in.AchievementID == "" {
		errs = append(errs, FieldError{Field: "achievementId", Message: "achievementId is required"})
	}
	return errs
}

// TrainerAchievementClaimUpdateInput is a partial claim update
type TrainerAchievementClaimUpdateInput struct {
	AchievementID *string `json:"achievementId,omitempty"`
}
