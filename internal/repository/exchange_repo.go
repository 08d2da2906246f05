package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-flow/backend/internal/model"
)

// exchangePreloads 换班记录的标准关联加载
func exchangePreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("ShiftA").
		Preload("ShiftA.User").
		Preload("ShiftA.ShiftType").
		Preload("ShiftA.ShiftType.Group").
		Preload("ShiftB").
		Preload("ShiftB.User").
		Preload("ShiftB.ShiftType").
		Preload("ShiftB.ShiftType.Group").
		Preload("TransferToUser").
		Preload("UserAApproval").
		Preload("UserBApproval").
		Preload("AdminApproval")
}

// ExchangeRepository 换班申请数据访问接口
type ExchangeRepository interface {
	Create(ctx context.Context, exchange *model.ShiftExchange) error
	GetByID(ctx context.Context, id string) (*model.ShiftExchange, error)
	List(ctx context.Context, done *bool) ([]model.ShiftExchange, error)
	// FindOpenByShift 查找引用该班次（任一侧）的未决换班
	FindOpenByShift(ctx context.Context, shiftID string) ([]model.ShiftExchange, error)
	// FindByShift 查找引用该班次（任一侧）的全部换班，含已终结的
	FindByShift(ctx context.Context, shiftID string) ([]model.ShiftExchange, error)
	Update(ctx context.Context, exchange *model.ShiftExchange) error
	Delete(ctx context.Context, id string) error
}

// exchangeRepo ExchangeRepository 的 GORM 实现
type exchangeRepo struct {
	db *gorm.DB
}

// NewExchangeRepo 创建 ExchangeRepository 实例
func NewExchangeRepo(db *gorm.DB) ExchangeRepository {
	return &exchangeRepo{db: db}
}

func (r *exchangeRepo) Create(ctx context.Context, exchange *model.ShiftExchange) error {
	return r.db.WithContext(ctx).Create(exchange).Error
}

func (r *exchangeRepo) GetByID(ctx context.Context, id string) (*model.ShiftExchange, error) {
	var exchange model.ShiftExchange
	err := exchangePreloads(r.db.WithContext(ctx)).
		Where("exchange_id = ?", id).
		First(&exchange).Error
	if err != nil {
		return nil, err
	}
	return &exchange, nil
}

func (r *exchangeRepo) List(ctx context.Context, done *bool) ([]model.ShiftExchange, error) {
	db := exchangePreloads(r.db.WithContext(ctx))
	if done != nil {
		db = db.Where("done = ?", *done)
	}
	var exchanges []model.ShiftExchange
	err := db.Order("created_at DESC").Find(&exchanges).Error
	return exchanges, err
}

func (r *exchangeRepo) FindOpenByShift(ctx context.Context, shiftID string) ([]model.ShiftExchange, error) {
	var exchanges []model.ShiftExchange
	err := r.db.WithContext(ctx).
		Where("done = FALSE AND (shift_a_id = ? OR shift_b_id = ?)", shiftID, shiftID).
		Find(&exchanges).Error
	return exchanges, err
}

func (r *exchangeRepo) FindByShift(ctx context.Context, shiftID string) ([]model.ShiftExchange, error) {
	var exchanges []model.ShiftExchange
	err := r.db.WithContext(ctx).
		Where("shift_a_id = ? OR shift_b_id = ?", shiftID, shiftID).
		Find(&exchanges).Error
	return exchanges, err
}

func (r *exchangeRepo) Update(ctx context.Context, exchange *model.ShiftExchange) error {
	return r.db.WithContext(ctx).Save(exchange).Error
}

func (r *exchangeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("exchange_id = ?", id).
		Delete(&model.ShiftExchange{}).Error
}
