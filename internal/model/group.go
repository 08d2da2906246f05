package model

// Group 排班组表 — 对应 groups
type Group struct {
	GroupID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	DisplayName string `gorm:"type:varchar(100);not null"                     json:"display_name"`
	BaseModel
}

// TableName 指定表名
func (Group) TableName() string { return "groups" }
