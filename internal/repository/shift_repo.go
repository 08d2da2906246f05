package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-flow/backend/internal/model"
)

// ShiftFilter 班次查询条件（零值字段不过滤）
type ShiftFilter struct {
	GroupIDs  []string // 限定班次类型所属组
	UserID    string   // 限定班次归属人
	StartFrom string   // start_value >= StartFrom（字符串序即时间序）
	StartTo   string   // start_value < StartTo
}

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	List(ctx context.Context, filter ShiftFilter) ([]model.Shift, error)
	UpdateOwner(ctx context.Context, shiftID, userID string) error
	// SwapOwners 在单个事务内交换两个班次的归属人
	SwapOwners(ctx context.Context, shiftAID, shiftBID string) error
	Delete(ctx context.Context, id string) error
}

// shiftRepo ShiftRepository 的 GORM 实现
type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("ShiftType").
		Preload("ShiftType.Group").
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) List(ctx context.Context, filter ShiftFilter) ([]model.Shift, error) {
	db := r.db.WithContext(ctx).Model(&model.Shift{}).
		Preload("User").
		Preload("ShiftType").
		Preload("ShiftType.Group")

	if len(filter.GroupIDs) > 0 {
		db = db.Joins("JOIN shift_types st ON st.shift_type_id = shifts.shift_type_id").
			Where("st.group_id IN ?", filter.GroupIDs)
	}
	if filter.UserID != "" {
		db = db.Where("shifts.user_id = ?", filter.UserID)
	}
	if filter.StartFrom != "" {
		db = db.Where("shifts.start_value >= ?", filter.StartFrom)
	}
	if filter.StartTo != "" {
		db = db.Where("shifts.start_value < ?", filter.StartTo)
	}

	var shifts []model.Shift
	err := db.Order("shifts.start_value ASC").Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) UpdateOwner(ctx context.Context, shiftID, userID string) error {
	return r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("shift_id = ?", shiftID).
		Update("user_id", userID).Error
}

// SwapOwners 互换归属必须原子完成，任何一步失败都整体回滚
func (r *shiftRepo) SwapOwners(ctx context.Context, shiftAID, shiftBID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a, b model.Shift
		if err := tx.Where("shift_id = ?", shiftAID).First(&a).Error; err != nil {
			return err
		}
		if err := tx.Where("shift_id = ?", shiftBID).First(&b).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Shift{}).
			Where("shift_id = ?", shiftAID).
			Update("user_id", b.UserID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Shift{}).
			Where("shift_id = ?", shiftBID).
			Update("user_id", a.UserID).Error
	})
}

func (r *shiftRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		Delete(&model.Shift{}).Error
}
