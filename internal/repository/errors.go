package repository

import "errors"

// Repository errors. Storage errors from the database package propagate
// wrapped but otherwise unchanged; nothing here is retried.
var (
	// ErrNotFound means an operation required a row that does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrCreateFailed means an insert produced no row, or the new row could
	// not be read back
	ErrCreateFailed = errors.New("entity missing after create")
)

// ===== Species Errors =====
var (
	ErrUnsupportedField = errors.New("field not supported by this catalog")
)

// ===== Chat Errors =====
var (
	ErrRequestNotPending = errors.New("dm request is no longer pending")
)

// ===== Mission Errors =====
var (
	ErrMissionNotActive     = errors.New("user mission is not active")
	ErrMissionNotCompleted  = errors.New("user mission is not completed")
	ErrRewardAlreadyClaimed = errors.New("mission reward already claimed")
)

// ===== Achievement Errors =====
var (
	ErrAlreadyClaimed = errors.New("achievement already claimed")
)
