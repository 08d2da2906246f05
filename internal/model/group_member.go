package model

// GroupMember 组成员表 — 对应 group_members
type GroupMember struct {
	GroupMemberID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_member_id"`
	GroupID       string `gorm:"type:uuid;not null;uniqueIndex:uq_group_member" json:"group_id"`
	UserID        string `gorm:"type:uuid;not null;uniqueIndex:uq_group_member" json:"user_id"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (GroupMember) TableName() string { return "group_members" }
