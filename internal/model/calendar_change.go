package model

// CalendarChange 日历变更日志表 — 对应 calendar_changes
//
// 每条记录表示"某班次相对某用户的归属发生了变化"，
// 由同步引擎消费后删除；同步失败时保留以便重试。
type CalendarChange struct {
	ChangeID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_id"`
	GroupID  string `gorm:"type:uuid;not null;index"                       json:"group_id"`
	UserID   string `gorm:"type:uuid;not null"                             json:"user_id"`
	ShiftID  string `gorm:"type:uuid;not null;index"                       json:"shift_id"`
	BaseModel
}

// TableName 指定表名
func (CalendarChange) TableName() string { return "calendar_changes" }
