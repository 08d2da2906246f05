package dto

// ── 日历同步模块 DTO ──

// SynchronizeRequest 按组同步请求；为空表示同步调用者管辖的所有组
type SynchronizeRequest struct {
	GroupIDs []string `json:"group_ids" binding:"omitempty,dive,uuid"`
}

// SynchronizeResponse 同步结果
type SynchronizeResponse struct {
	Processed int      `json:"processed"`        // 成功消费的变更数
	Failed    int      `json:"failed"`           // 失败并保留待重试的变更数
	Errors    []string `json:"errors,omitempty"` // 人类可读的失败描述
}

// CalendarResponse 日历元信息响应
type CalendarResponse struct {
	ID               string `json:"id"`
	URI              string `json:"uri"`
	DisplayName      string `json:"display_name"`
	OwnerDisplayName string `json:"owner_display_name,omitempty"`
}
