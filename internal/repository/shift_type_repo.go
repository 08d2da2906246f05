package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-flow/backend/internal/model"
)

// ShiftTypeRepository 班次类型数据访问接口
type ShiftTypeRepository interface {
	Create(ctx context.Context, shiftType *model.ShiftType) error
	GetByID(ctx context.Context, id string) (*model.ShiftType, error)
	Update(ctx context.Context, shiftType *model.ShiftType) error
	ListByGroup(ctx context.Context, groupID string) ([]model.ShiftType, error)
	Delete(ctx context.Context, id string) error
}

// shiftTypeRepo ShiftTypeRepository 的 GORM 实现
type shiftTypeRepo struct {
	db *gorm.DB
}

// NewShiftTypeRepo 创建 ShiftTypeRepository 实例
func NewShiftTypeRepo(db *gorm.DB) ShiftTypeRepository {
	return &shiftTypeRepo{db: db}
}

func (r *shiftTypeRepo) Create(ctx context.Context, shiftType *model.ShiftType) error {
	return r.db.WithContext(ctx).Create(shiftType).Error
}

func (r *shiftTypeRepo) GetByID(ctx context.Context, id string) (*model.ShiftType, error) {
	var shiftType model.ShiftType
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("shift_type_id = ?", id).
		First(&shiftType).Error
	if err != nil {
		return nil, err
	}
	return &shiftType, nil
}

func (r *shiftTypeRepo) Update(ctx context.Context, shiftType *model.ShiftType) error {
	return r.db.WithContext(ctx).Save(shiftType).Error
}

func (r *shiftTypeRepo) ListByGroup(ctx context.Context, groupID string) ([]model.ShiftType, error) {
	var types []model.ShiftType
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *shiftTypeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("shift_type_id = ?", id).
		Delete(&model.ShiftType{}).Error
}
