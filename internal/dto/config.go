package dto

// ── 运行时配置模块 DTO ──

// SettingsResponse 运行时配置响应
type SettingsResponse struct {
	ApprovalType           string `json:"approval_type"`
	SyncToPersonal         bool   `json:"sync_to_personal"`
	IgnoreAbsenceForByWeek bool   `json:"ignore_absence_for_by_week"`
	CommonCalendarID       string `json:"common_calendar_id,omitempty"`
	AbsenceCalendarID      string `json:"absence_calendar_id,omitempty"`
}

// UpdateSettingsRequest 更新运行时配置请求（管理员）
type UpdateSettingsRequest struct {
	ApprovalType           *string `json:"approval_type" binding:"omitempty,oneof=all users admin"`
	SyncToPersonal         *bool   `json:"sync_to_personal"`
	IgnoreAbsenceForByWeek *bool   `json:"ignore_absence_for_by_week"`
	CommonCalendarID       *string `json:"common_calendar_id"`
	AbsenceCalendarID      *string `json:"absence_calendar_id"`
}
