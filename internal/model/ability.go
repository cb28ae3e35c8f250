package model

import "time"

// Ability is an entry of the ability catalog
type Ability struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Effect            *string   `json:"effect,omitempty"`
	Description       *string   `json:"description,omitempty"`
	CommonTypes       []string  `json:"commonTypes"`
	SignatureMonsters []string  `json:"signatureMonsters"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// AbilityCreateInput creates an ability
type AbilityCreateInput struct {
	Name              string   `json:"name"`
	Effect            *string  `json:"effect,omitempty"`
	Description       *string  `json:"description,omitempty"`
	CommonTypes       []string `json:"commonTypes,omitempty"`
	SignatureMonsters []string `json:"signatureMonsters,omitempty"`
}

// Validate checks if the create input is valid
func (in *AbilityCreateInput) Validate() []FieldError {
	if in.Name == "" {
		return []FieldError{{Field: "name", Message: "name is required"}}
	}
	return nil
}

// AbilityUpdateInput is a partial ability update; nil fields are unchanged
type AbilityUpdateInput struct {
	Name              *string   `json:"name,omitempty"`
	Effect            *string   `json:"effect,omitempty"`
	Description       *string   `json:"description,omitempty"`
	CommonTypes       *[]string `json:"commonTypes,omitempty"`
	SignatureMonsters *[]string `json:"signatureMonsters,omitempty"`
}

// AbilityQuery filters and pages abilities. TypeLogic ("and"/"or") decides
// whether an ability must list all of Types or any of them.
type AbilityQuery struct {
	Search    string
	Types     []string
	TypeLogic string
	Monster   string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// AdventureThread links a Discord thread to an adventure
type AdventureThread struct {
	ID               int       `json:"id"`
	AdventureID      int       `json:"adventureId"`
	DiscordThreadID  string    `json:"discordThreadId"`
	DiscordChannelID string    `json:"discordChannelId"`
	ThreadName       *string   `json:"threadName,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AdventureThreadCreateInput creates a thread link
type AdventureThreadCreateInput struct {
	AdventureID      int     `json:"adventureId"`
	DiscordThreadID  string  `json:"discordThreadId"`
	DiscordChannelID string  `json:"discordChannelId"`
	ThreadName       *string `json:"threadName,omitempty"`
}

// Validate checks if the create input is valid
func (in *AdventureThreadCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.AdventureID <= 0 {
		errs = append(errs, FieldError{Field: "adventureId", Message: "adventureId is required"})
	}
	if in.DiscordThreadID == "" {
		errs = append(errs, FieldError{Field: "discordThreadId", Message: "discordThreadId is required"})
	}
	if in.DiscordChannelID == "" {
		errs = append(errs, FieldError{Field: "discordChannelId", Message: "discordChannelId is required"})
	}
	return errs
}

// AdventureThreadUpdateInput is a partial thread update
type AdventureThreadUpdateInput struct {
	DiscordChannelID *string `json:"discordChannelId,omitempty"`
	ThreadName       *string `json:"threadName,omitempty"`
}
