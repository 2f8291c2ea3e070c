package model

import "time"

// Profile holds the two flags the ledger writes on the identity side's user record
type Profile struct {
	UserID       string    `json:"user_id" db:"user_id"`
	IsAmbassador bool      `json:"is_ambassador" db:"is_ambassador"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
