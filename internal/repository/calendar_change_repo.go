package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-flow/backend/internal/model"
)

// CalendarChangeRepository 日历变更日志数据访问接口
type CalendarChangeRepository interface {
	Create(ctx context.Context, change *model.CalendarChange) error
	ListByGroups(ctx context.Context, groupIDs []string) ([]model.CalendarChange, error)
	ListByShift(ctx context.Context, shiftID string) ([]model.CalendarChange, error)
	Delete(ctx context.Context, id string) error
}

// calendarChangeRepo CalendarChangeRepository 的 GORM 实现
type calendarChangeRepo struct {
	db *gorm.DB
}

// NewCalendarChangeRepo 创建 CalendarChangeRepository 实例
func NewCalendarChangeRepo(db *gorm.DB) CalendarChangeRepository {
	return &calendarChangeRepo{db: db}
}

func (r *calendarChangeRepo) Create(ctx context.Context, change *model.CalendarChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *calendarChangeRepo) ListByGroups(ctx context.Context, groupIDs []string) ([]model.CalendarChange, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var changes []model.CalendarChange
	err := r.db.WithContext(ctx).
		Where("group_id IN ?", groupIDs).
		Order("created_at ASC").
		Find(&changes).Error
	return changes, err
}

func (r *calendarChangeRepo) ListByShift(ctx context.Context, shiftID string) ([]model.CalendarChange, error) {
	var changes []model.CalendarChange
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&changes).Error
	return changes, err
}

func (r *calendarChangeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("change_id = ?", id).
		Delete(&model.CalendarChange{}).Error
}
