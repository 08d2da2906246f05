package model

// 班次重复方式
const (
	WeeklyTypeByDay  = "by_day"  // 按天班次：有明确起止时刻
	WeeklyTypeByWeek = "by_week" // 按周班次：覆盖整周的全天班次
)

// ShiftType 班次类型表 — 对应 shift_types
type ShiftType struct {
	ShiftTypeID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_type_id"`
	GroupID     string  `gorm:"type:uuid;not null"                             json:"group_id"`
	Name        string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string  `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Color       string  `gorm:"type:varchar(16)"                               json:"color,omitempty"`
	Active      bool    `gorm:"not null;default:true"                          json:"active"`
	Repetition  JSONMap `gorm:"type:jsonb;not null;default:'{}'"               json:"repetition"`
	Caldav      JSONMap `gorm:"type:jsonb;not null;default:'{}'"               json:"caldav"`
	BaseModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
}

// TableName 指定表名
func (ShiftType) TableName() string { return "shift_types" }

// WeeklyType 读取重复方式，缺省视为按天
func (t *ShiftType) WeeklyType() string {
	if t.Repetition.String("weekly_type") == WeeklyTypeByWeek {
		return WeeklyTypeByWeek
	}
	return WeeklyTypeByDay
}

// IsByWeek 是否为按周班次
func (t *ShiftType) IsByWeek() bool { return t.WeeklyType() == WeeklyTypeByWeek }
