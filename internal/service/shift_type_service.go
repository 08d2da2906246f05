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

// ShiftTypeService 班次类型业务接口
type ShiftTypeService interface {
	Create(ctx context.Context, actorID string, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftTypeResponse, error)
	Update(ctx context.Context, actorID, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	ListByGroup(ctx context.Context, groupID string) ([]dto.ShiftTypeResponse, error)
	Delete(ctx context.Context, actorID, id string) error
}

type shiftTypeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftTypeService 创建 ShiftTypeService 实例
func NewShiftTypeService(repo *repository.Repository, logger *zap.Logger) ShiftTypeService {
	return &shiftTypeService{repo: repo, logger: logger}
}

func (s *shiftTypeService) Create(ctx context.Context, actorID string, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	if _, err := s.repo.Group.GetByID(ctx, req.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(
				fmt.Sprintf("组 %s 不存在", req.GroupID), "排班组不存在")
		}
		return nil, err
	}
	if err := s.requireShiftAdmin(ctx, actorID, req.GroupID); err != nil {
		return nil, err
	}

	shiftType := &model.ShiftType{
		GroupID:     req.GroupID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Active:      true,
		Repetition:  model.JSONMap(req.Repetition),
		Caldav:      model.JSONMap(req.Caldav),
	}
	if shiftType.Repetition == nil {
		shiftType.Repetition = model.JSONMap{}
	}
	if shiftType.Caldav == nil {
		shiftType.Caldav = model.JSONMap{}
	}

	if err := s.repo.ShiftType.Create(ctx, shiftType); err != nil {
		return nil, err
	}
	resp := dto.NewShiftTypeResponse(shiftType)
	return &resp, nil
}

func (s *shiftTypeService) GetByID(ctx context.Context, id string) (*dto.ShiftTypeResponse, error) {
	shiftType, err := s.getShiftType(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewShiftTypeResponse(shiftType)
	return &resp, nil
}

func (s *shiftTypeService) Update(ctx context.Context, actorID, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	shiftType, err := s.getShiftType(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireShiftAdmin(ctx, actorID, shiftType.GroupID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		shiftType.Name = *req.Name
	}
	if req.Description != nil {
		shiftType.Description = *req.Description
	}
	if req.Color != nil {
		shiftType.Color = *req.Color
	}
	if req.Active != nil {
		shiftType.Active = *req.Active
	}
	if req.Repetition != nil {
		shiftType.Repetition = model.JSONMap(req.Repetition)
	}
	if req.Caldav != nil {
		shiftType.Caldav = model.JSONMap(req.Caldav)
	}

	if err := s.repo.ShiftType.Update(ctx, shiftType); err != nil {
		return nil, err
	}
	resp := dto.NewShiftTypeResponse(shiftType)
	return &resp, nil
}

func (s *shiftTypeService) ListByGroup(ctx context.Context, groupID string) ([]dto.ShiftTypeResponse, error) {
	types, err := s.repo.ShiftType.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShiftTypeResponse, 0, len(types))
	for i := range types {
		out = append(out, dto.NewShiftTypeResponse(&types[i]))
	}
	return out, nil
}

func (s *shiftTypeService) Delete(ctx context.Context, actorID, id string) error {
	shiftType, err := s.getShiftType(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireShiftAdmin(ctx, actorID, shiftType.GroupID); err != nil {
		return err
	}
	return s.repo.ShiftType.Delete(ctx, id)
}

func (s *shiftTypeService) getShiftType(ctx context.Context, id string) (*model.ShiftType, error) {
	shiftType, err := s.repo.ShiftType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(
				fmt.Sprintf("班次类型 %s 不存在", id), "班次类型不存在")
		}
		return nil, err
	}
	return shiftType, nil
}

func (s *shiftTypeService) requireShiftAdmin(ctx context.Context, actorID, groupID string) error {
	ok, err := s.repo.Group.IsShiftAdmin(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(
			fmt.Sprintf("用户 %s 不是组 %s 的班次管理员", actorID, groupID),
			"你没有管理该组班次类型的权限")
	}
	return nil
}
