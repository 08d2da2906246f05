package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/model"
	"shift-flow/backend/internal/repository"
	"shift-flow/backend/pkg/apperr"
)

// GroupService 排班组与组关系业务接口
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	GetByID(ctx context.Context, id string) (*dto.GroupResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error)
	List(ctx context.Context) ([]dto.GroupResponse, error)
	Delete(ctx context.Context, id string) error

	ListMembers(ctx context.Context, groupID string) ([]dto.UserBrief, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error

	ListShiftAdmins(ctx context.Context, groupID string) ([]dto.UserBrief, error)
	AddShiftAdmin(ctx context.Context, groupID, userID string) error
	RemoveShiftAdmin(ctx context.Context, groupID, userID string) error

	// AdminGroupIDs 返回用户担任班次管理员的全部组 ID
	AdminGroupIDs(ctx context.Context, userID string) ([]string, error)
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	group := &model.Group{
		Name:        req.Name,
		DisplayName: req.DisplayName,
	}
	if err := s.repo.Group.Create(ctx, group); err != nil {
		return nil, err
	}
	resp := dto.NewGroupResponse(group)
	return &resp, nil
}

func (s *groupService) GetByID(ctx context.Context, id string) (*dto.GroupResponse, error) {
	group, err := s.getGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewGroupResponse(group)
	return &resp, nil
}

func (s *groupService) Update(ctx context.Context, id string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.getGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		group.DisplayName = *req.DisplayName
	}
	if err := s.repo.Group.Update(ctx, group); err != nil {
		return nil, err
	}
	resp := dto.NewGroupResponse(group)
	return &resp, nil
}

func (s *groupService) List(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, dto.NewGroupResponse(&groups[i]))
	}
	return out, nil
}

func (s *groupService) Delete(ctx context.Context, id string) error {
	if _, err := s.getGroup(ctx, id); err != nil {
		return err
	}
	return s.repo.Group.Delete(ctx, id)
}

func (s *groupService) ListMembers(ctx context.Context, groupID string) ([]dto.UserBrief, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.repo.Group.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserBrief, 0, len(members))
	for i := range members {
		if brief := dto.NewUserBrief(members[i].User); brief != nil {
			out = append(out, *brief)
		}
	}
	return out, nil
}

func (s *groupService) AddMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	isMember, err := s.repo.Group.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if isMember {
		return apperr.Unprocessable(
			fmt.Sprintf("用户 %s 已是组 %s 的成员", userID, groupID),
			"该用户已在组内")
	}
	return s.repo.Group.AddMember(ctx, groupID, userID)
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	return s.repo.Group.RemoveMember(ctx, groupID, userID)
}

func (s *groupService) ListShiftAdmins(ctx context.Context, groupID string) ([]dto.UserBrief, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	admins, err := s.repo.Group.ListShiftAdmins(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserBrief, 0, len(admins))
	for i := range admins {
		if brief := dto.NewUserBrief(admins[i].User); brief != nil {
			out = append(out, *brief)
		}
	}
	return out, nil
}

func (s *groupService) AddShiftAdmin(ctx context.Context, groupID, userID string) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	isAdmin, err := s.repo.Group.IsShiftAdmin(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if isAdmin {
		return apperr.Unprocessable(
			fmt.Sprintf("用户 %s 已是组 %s 的班次管理员", userID, groupID),
			"该用户已是组内班次管理员")
	}
	return s.repo.Group.AddShiftAdmin(ctx, groupID, userID)
}

func (s *groupService) RemoveShiftAdmin(ctx context.Context, groupID, userID string) error {
	return s.repo.Group.RemoveShiftAdmin(ctx, groupID, userID)
}

func (s *groupService) AdminGroupIDs(ctx context.Context, userID string) ([]string, error) {
	return s.repo.Group.ListAdminGroupIDs(ctx, userID)
}

func (s *groupService) getGroup(ctx context.Context, id string) (*model.Group, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(
				fmt.Sprintf("组 %s 不存在", id), "排班组不存在")
		}
		return nil, err
	}
	return group, nil
}
