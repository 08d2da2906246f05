package dto

import "shift-flow/backend/internal/model"

// ── 班次类型模块 DTO ──

// CreateShiftTypeRequest 创建班次类型请求
type CreateShiftTypeRequest struct {
	GroupID     string         `json:"group_id"    binding:"required,uuid"`
	Name        string         `json:"name"        binding:"required,min=1,max=100"`
	Description string         `json:"description" binding:"max=500"`
	Color       string         `json:"color"       binding:"max=16"`
	Repetition  map[string]any `json:"repetition"`
	Caldav      map[string]any `json:"caldav"`
}

// UpdateShiftTypeRequest 更新班次类型请求
type UpdateShiftTypeRequest struct {
	Name        *string        `json:"name"        binding:"omitempty,min=1,max=100"`
	Description *string        `json:"description" binding:"omitempty,max=500"`
	Color       *string        `json:"color"       binding:"omitempty,max=16"`
	Active      *bool          `json:"active"`
	Repetition  map[string]any `json:"repetition"`
	Caldav      map[string]any `json:"caldav"`
}

// ShiftTypeResponse 班次类型响应
type ShiftTypeResponse struct {
	ShiftTypeID string         `json:"shift_type_id"`
	GroupID     string         `json:"group_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Color       string         `json:"color,omitempty"`
	Active      bool           `json:"active"`
	WeeklyType  string         `json:"weekly_type"`
	Repetition  map[string]any `json:"repetition"`
	Caldav      map[string]any `json:"caldav"`
}

// NewShiftTypeResponse 由模型构造班次类型响应
func NewShiftTypeResponse(t *model.ShiftType) ShiftTypeResponse {
	return ShiftTypeResponse{
		ShiftTypeID: t.ShiftTypeID,
		GroupID:     t.GroupID,
		Name:        t.Name,
		Description: t.Description,
		Color:       t.Color,
		Active:      t.Active,
		WeeklyType:  t.WeeklyType(),
		Repetition:  t.Repetition,
		Caldav:      t.Caldav,
	}
}
