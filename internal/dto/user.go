package dto

import (
	"time"

	"edulift/internal/core"
	"edulift/internal/database/mongodb/model"
)

// 建立用戶
type CreateUserDto struct {
	Roles        []core.Role         `json:"roles" binding:"required,min=1,dive,required"` // 角色，至少一個
	GroupHomeID  string              `json:"groupHomeId,omitempty"`                        // 所屬 group home
	Profile      *model.Profile      `json:"profile,omitempty"`
	ConsentFlags *model.ConsentFlags `json:"consentFlags,omitempty"`
	Preferences  *model.Preferences  `json:"preferences,omitempty"` // 未帶時使用預設值
	RiskFlags    []string            `json:"riskFlags,omitempty"`
	Username     string              `json:"username,omitempty" binding:"omitempty,max=100"`
	Email        string              `json:"email" binding:"required,email"`
	FirstName    string              `json:"firstName,omitempty"`
	LastName     string              `json:"lastName,omitempty"`
}

func (CreateUserDto) GetMessages() map[string]string {
	return map[string]string{
		"Email.required":   "email is required",
		"Email.email":      "email must be a valid email address",
		"Roles.required":   "roles is required",
		"Roles.min":        "roles must contain at least one role",
		"Roles.*.required": "roles must not contain empty values",
		"Username.max":     "username must be at most 100 characters",
	}
}

// 更新用戶：只覆寫舊版平面欄位
type UpdateUserDto struct {
	Username  string `json:"username,omitempty" binding:"omitempty,max=100"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func (UpdateUserDto) GetMessages() map[string]string {
	return map[string]string{
		"Email.required": "email is required",
		"Email.email":    "email must be a valid email address",
		"Username.max":   "username must be at most 100 characters",
	}
}

type UserResponseDto struct {
	ID           string              `json:"id"`
	Roles        []core.Role         `json:"roles"`
	GroupHomeID  string              `json:"groupHomeId,omitempty"`
	Profile      *model.Profile      `json:"profile,omitempty"`
	ConsentFlags *model.ConsentFlags `json:"consentFlags,omitempty"`
	Preferences  *model.Preferences  `json:"preferences"`
	RiskFlags    []string            `json:"riskFlags,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	Username     string              `json:"username,omitempty"`
	Email        string              `json:"email"`
	FirstName    string              `json:"firstName,omitempty"`
	LastName     string              `json:"lastName,omitempty"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// 使用者統計
type UserStatsDto struct {
	Total           int64            `json:"total"`
	ByRole          map[string]int64 `json:"byRole"`
	GroupHomeID     string           `json:"groupHomeId,omitempty"`
	GroupHomeExists *bool            `json:"groupHomeExists,omitempty"`
	GroupHomeCount  *int64           `json:"groupHomeCount,omitempty"`
}

// 列表篩選條件（query string），一次只能使用一組
type UserListQuery struct {
	Roles                 []core.Role
	GroupHomeID           string
	RiskFlags             []string
	DataProcessingConsent *bool
	CommunicationConsent  *bool
	Language              string
	EmailNotifications    bool
}
