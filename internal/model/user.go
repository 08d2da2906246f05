package model

// 系统角色
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"username"`
	DisplayName  string `gorm:"type:varchar(100);not null"                     json:"display_name"`
	Email        string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"     json:"role"`
	Timezone     string `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone"`
	Locale       string `gorm:"type:varchar(16);not null;default:'zh_CN'"      json:"locale"`
	// DefaultGroupID 列表页的默认组筛选偏好，可为空
	DefaultGroupID *string `gorm:"type:uuid" json:"default_group_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 是否为系统管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
