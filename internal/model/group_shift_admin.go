package model

// GroupShiftAdmin 组内班次管理员表 — 对应 group_shift_admins
// 区别于系统管理员：仅对所辖组的班次与换班有管理权限
type GroupShiftAdmin struct {
	GroupShiftAdminID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_shift_admin_id"`
	GroupID           string `gorm:"type:uuid;not null;uniqueIndex:uq_group_admin"  json:"group_id"`
	UserID            string `gorm:"type:uuid;not null;uniqueIndex:uq_group_admin"  json:"user_id"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (GroupShiftAdmin) TableName() string { return "group_shift_admins" }
