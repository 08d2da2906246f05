package dto

import "shift-flow/backend/internal/model"

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
//
// Start/End 为本地化时间字符串：带毫秒的 UTC 即时、
// 带时区注解的 RFC 9557 字符串或纯日期。
type CreateShiftRequest struct {
	UserID      string `json:"user_id"       binding:"required,uuid"`
	ShiftTypeID string `json:"shift_type_id" binding:"required,uuid"`
	Start       string `json:"start"         binding:"required"`
	End         string `json:"end"           binding:"required"`
}

// MoveShiftRequest 移交班次请求（管理员直接改归属）
type MoveShiftRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// ListShiftsQuery 班次列表查询参数
//
// CalendarDate 与 WeekDate 互斥：前者按单天过滤，
// 后者按所在整周过滤。
type ListShiftsQuery struct {
	GroupID      string `form:"group_id"      binding:"omitempty,uuid"`
	UserID       string `form:"user_id"       binding:"omitempty,uuid"`
	CalendarDate string `form:"calendar_date"`
	WeekDate     string `form:"week_date"`
}

// ShiftResponse 班次响应（含归属人/类型/组投影）
type ShiftResponse struct {
	ShiftID   string             `json:"shift_id"`
	Start     string             `json:"start"`
	End       string             `json:"end"`
	User      *UserBrief         `json:"user,omitempty"`
	ShiftType *ShiftTypeResponse `json:"shift_type,omitempty"`
	Group     *GroupBrief        `json:"group,omitempty"`
}

// NewShiftResponse 由模型构造班次响应
func NewShiftResponse(s *model.Shift) ShiftResponse {
	resp := ShiftResponse{
		ShiftID: s.ShiftID,
		Start:   s.StartValue,
		End:     s.EndValue,
		User:    NewUserBrief(s.User),
	}
	if s.ShiftType != nil {
		t := NewShiftTypeResponse(s.ShiftType)
		resp.ShiftType = &t
		resp.Group = NewGroupBrief(s.ShiftType.Group)
	}
	return resp
}

// NewShiftResponses 批量构造班次响应
func NewShiftResponses(shifts []model.Shift) []ShiftResponse {
	out := make([]ShiftResponse, 0, len(shifts))
	for i := range shifts {
		out = append(out, NewShiftResponse(&shifts[i]))
	}
	return out
}
