package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-flow/backend/internal/model"
)

// GroupRepository 排班组与组关系数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	Update(ctx context.Context, group *model.Group) error
	List(ctx context.Context) ([]model.Group, error)
	Delete(ctx context.Context, id string) error

	// ── 组成员 ──
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListMembers(ctx context.Context, groupID string) ([]model.GroupMember, error)
	ListMemberGroupIDs(ctx context.Context, userID string) ([]string, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error

	// ── 组内班次管理员 ──
	IsShiftAdmin(ctx context.Context, groupID, userID string) (bool, error)
	ListShiftAdmins(ctx context.Context, groupID string) ([]model.GroupShiftAdmin, error)
	ListAdminGroupIDs(ctx context.Context, userID string) ([]string, error)
	AddShiftAdmin(ctx context.Context, groupID, userID string) error
	RemoveShiftAdmin(ctx context.Context, groupID, userID string) error
}

// groupRepo GroupRepository 的 GORM 实现
type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) Update(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepo) List(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ?", id).
		Delete(&model.Group{}).Error
}

func (r *groupRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *groupRepo) ListMembers(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Find(&members).Error
	return members, err
}

func (r *groupRepo) ListMemberGroupIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (r *groupRepo) AddMember(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).Create(&model.GroupMember{
		GroupID: groupID,
		UserID:  userID,
	}).Error
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{}).Error
}

func (r *groupRepo) IsShiftAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GroupShiftAdmin{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *groupRepo) ListShiftAdmins(ctx context.Context, groupID string) ([]model.GroupShiftAdmin, error) {
	var admins []model.GroupShiftAdmin
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Find(&admins).Error
	return admins, err
}

func (r *groupRepo) ListAdminGroupIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.GroupShiftAdmin{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (r *groupRepo) AddShiftAdmin(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).Create(&model.GroupShiftAdmin{
		GroupID: groupID,
		UserID:  userID,
	}).Error
}

func (r *groupRepo) RemoveShiftAdmin(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupShiftAdmin{}).Error
}
