package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User           UserRepository
	Group          GroupRepository
	ShiftType      ShiftTypeRepository
	Shift          ShiftRepository
	Exchange       ExchangeRepository
	Approval       ApprovalRepository
	CalendarChange CalendarChangeRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:           NewUserRepo(db),
		Group:          NewGroupRepo(db),
		ShiftType:      NewShiftTypeRepo(db),
		Shift:          NewShiftRepo(db),
		Exchange:       NewExchangeRepo(db),
		Approval:       NewApprovalRepo(db),
		CalendarChange: NewCalendarChangeRepo(db),
	}
}
