package dto

import "github.com/noah-isme/dance-class-api/internal/models"

// SwitchUserRequest captures PUT /session/user.
type SwitchUserRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// SwitchRoleRequest captures PUT /session/role.
type SwitchRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

// SettingsRequest captures PUT /settings.
type SettingsRequest struct {
	PreferredView models.ViewMode `json:"preferred_view"`
	Filters       FilterRequest   `json:"filters"`
}

// FilterRequest is the JSON form of a saved filter.
type FilterRequest struct {
	Styles         []string `json:"styles"`
	Choreographers []string `json:"choreographers"`
	Studios        []string `json:"studios"`
	Start          string   `json:"start,omitempty"`
	End            string   `json:"end,omitempty"`
}
