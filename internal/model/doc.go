// Package model defines the domain entities and input types for Menagerie.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - Trainer: A player character that owns monsters and an inventory
//   - Monster: A creature owned by a trainer
//   - Inventory: A trainer's items, grouped into fixed categories
//   - Species: One entry of a reference catalog (pokemon, digimon, ...)
//   - BattleLog: An append-only entry of a battle's log
//   - ChatRoom, ChatRoomMember, DmRequest: Trainer messaging metadata
//   - Mission, UserMission: Mission templates and a player's progress
//
// # Inputs
//
// Each entity has a create input with a Validate method returning
// []FieldError and an update input whose nil pointer fields mean
// "unchanged":
//
//	in := &TrainerCreateInput{Name: "Ash", PlayerUserID: "u-1"}
//	if err := NewValidationError(in.Validate()); err != nil {
//	    return err
//	}
//
// # Error Types
//
// Sentinel errors (ErrInvalidCategory, ErrInvalidQuantity, ...) mark bad
// domain values and are checked with errors.Is. ValidationError carries
// every field error of one input and is checked with errors.As.
package model
