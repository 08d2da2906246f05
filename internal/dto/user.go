package dto

import "shift-flow/backend/internal/model"

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求（管理员）
type CreateUserRequest struct {
	Username    string `json:"username"     binding:"required,min=2,max=100"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
	Email       string `json:"email"        binding:"omitempty,email"`
	Password    string `json:"password"     binding:"required,min=8,max=64"`
	Role        string `json:"role"         binding:"omitempty,oneof=admin member"`
	Timezone    string `json:"timezone"`
	Locale      string `json:"locale"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	Role        *string `json:"role"         binding:"omitempty,oneof=admin member"`
	Timezone    *string `json:"timezone"`
	Locale      *string `json:"locale"`
	// DefaultGroupID 指向空字符串表示清除默认组筛选
	DefaultGroupID *string `json:"default_group_id"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	UserID         string  `json:"user_id"`
	Username       string  `json:"username"`
	DisplayName    string  `json:"display_name"`
	Email          string  `json:"email,omitempty"`
	Role           string  `json:"role"`
	Timezone       string  `json:"timezone"`
	Locale         string  `json:"locale"`
	DefaultGroupID *string `json:"default_group_id,omitempty"`
}

// UserBrief 嵌套在其他响应中的用户摘要
type UserBrief struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// NewUserResponse 由模型构造用户响应
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		UserID:         u.UserID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		Email:          u.Email,
		Role:           u.Role,
		Timezone:       u.Timezone,
		Locale:         u.Locale,
		DefaultGroupID: u.DefaultGroupID,
	}
}

// NewUserBrief 由模型构造用户摘要（可空）
func NewUserBrief(u *model.User) *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{
		UserID:      u.UserID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}
