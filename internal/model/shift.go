package model

// Shift 班次表 — 对应 shifts
//
// StartValue/EndValue 保存归一化后的时间字符串：
// 按天班次为 UTC 即时字符串，按周班次为纯日期（YYYY-MM-DD）。
type Shift struct {
	ShiftID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	UserID      string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	ShiftTypeID string `gorm:"type:uuid;not null;index"                       json:"shift_type_id"`
	StartValue  string `gorm:"type:varchar(64);not null"                      json:"start"`
	EndValue    string `gorm:"type:varchar(64);not null"                      json:"end"`
	BaseModel

	// 关联
	User      *User      `gorm:"foreignKey:UserID;references:UserID"                json:"user,omitempty"`
	ShiftType *ShiftType `gorm:"foreignKey:ShiftTypeID;references:ShiftTypeID"      json:"shift_type,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }
