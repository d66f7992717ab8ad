package models

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Onboarding reports which records a signed-in user has created so far.
type Onboarding struct {
	UserID     string `json:"user_id"`
	HasProfile bool   `json:"has_profile"`
	HasPost    bool   `json:"has_post"`
}
