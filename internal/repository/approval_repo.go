package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-flow/backend/internal/model"
)

// ApprovalRepository 审批记录数据访问接口
//
// 一条审批记录是独立实体，由换班申请通过外键引用；
// 新建申请时以全空参数分配三条记录。
type ApprovalRepository interface {
	Create(ctx context.Context, userID *string, approved *bool) (*model.ShiftExchangeApproval, error)
	GetByID(ctx context.Context, id string) (*model.ShiftExchangeApproval, error)
	Update(ctx context.Context, approval *model.ShiftExchangeApproval) error
	Delete(ctx context.Context, id string) error
}

// approvalRepo ApprovalRepository 的 GORM 实现
type approvalRepo struct {
	db *gorm.DB
}

// NewApprovalRepo 创建 ApprovalRepository 实例
func NewApprovalRepo(db *gorm.DB) ApprovalRepository {
	return &approvalRepo{db: db}
}

func (r *approvalRepo) Create(ctx context.Context, userID *string, approved *bool) (*model.ShiftExchangeApproval, error) {
	approval := &model.ShiftExchangeApproval{
		UserID:   userID,
		Approved: approved,
	}
	if err := r.db.WithContext(ctx).Create(approval).Error; err != nil {
		return nil, err
	}
	return approval, nil
}

func (r *approvalRepo) GetByID(ctx context.Context, id string) (*model.ShiftExchangeApproval, error) {
	var approval model.ShiftExchangeApproval
	err := r.db.WithContext(ctx).
		Where("approval_id = ?", id).
		First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepo) Update(ctx context.Context, approval *model.ShiftExchangeApproval) error {
	return r.db.WithContext(ctx).Save(approval).Error
}

func (r *approvalRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("approval_id = ?", id).
		Delete(&model.ShiftExchangeApproval{}).Error
}
