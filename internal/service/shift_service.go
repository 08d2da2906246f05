package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/model"
	"shift-flow/backend/internal/repository"
	"shift-flow/backend/pkg/apperr"
	"shift-flow/backend/pkg/ecma"
)

// ShiftService 班次业务接口
type ShiftService interface {
	Create(ctx context.Context, actorID string, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error)
	List(ctx context.Context, query *dto.ListShiftsQuery) ([]dto.ShiftResponse, error)
	// Move 管理员把班次直接移交给另一名成员
	Move(ctx context.Context, actorID, shiftID string, req *dto.MoveShiftRequest) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, actorID, shiftID string) (*dto.ShiftResponse, error)
}

type shiftService struct {
	repo     *repository.Repository
	settings SettingsService
	calendar CalendarService
	logger   *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(
	repo *repository.Repository,
	settings SettingsService,
	calendar CalendarService,
	logger *zap.Logger,
) ShiftService {
	return &shiftService{
		repo:     repo,
		settings: settings,
		calendar: calendar,
		logger:   logger,
	}
}

func (s *shiftService) Create(ctx context.Context, actorID string, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	shiftType, err := s.repo.ShiftType.GetByID(ctx, req.ShiftTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unprocessable(
				fmt.Sprintf("班次类型 %s 不存在", req.ShiftTypeID),
				"指定的班次类型不存在")
		}
		return nil, err
	}

	if err := s.requireShiftAdmin(ctx, actorID, shiftType.GroupID); err != nil {
		return nil, err
	}

	isMember, err := s.repo.Group.IsMember(ctx, shiftType.GroupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.Unprocessable(
			fmt.Sprintf("用户 %s 不是组 %s 的成员", req.UserID, shiftType.GroupID),
			"该用户不是班次所属组的成员")
	}

	if !shiftType.Active {
		return nil, apperr.Unprocessable(
			fmt.Sprintf("班次类型 %s 已停用", req.ShiftTypeID),
			fmt.Sprintf("班次类型 %s 已停用，无法创建班次", shiftType.Name))
	}

	// 本地化时间归一到 UTC 后再落库
	start, startTime, err := ecma.Unlocalize(req.Start)
	if err != nil {
		return nil, malformedTemporal(err)
	}
	end, endTime, err := ecma.Unlocalize(req.End)
	if err != nil {
		return nil, malformedTemporal(err)
	}

	if err := s.requireNotAbsent(ctx, req.UserID, shiftType, startTime, endTime); err != nil {
		return nil, err
	}

	shift := &model.Shift{
		UserID:      req.UserID,
		ShiftTypeID: req.ShiftTypeID,
		StartValue:  start,
		EndValue:    end,
	}
	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		return nil, err
	}

	created, err := s.repo.Shift.GetByID(ctx, shift.ShiftID)
	if err != nil {
		return nil, err
	}
	s.calendar.SafeEnqueue(ctx, created)

	resp := dto.NewShiftResponse(created)
	return &resp, nil
}

func (s *shiftService) GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewShiftResponse(shift)
	return &resp, nil
}

func (s *shiftService) List(ctx context.Context, query *dto.ListShiftsQuery) ([]dto.ShiftResponse, error) {
	if query.CalendarDate != "" && query.WeekDate != "" {
		return nil, apperr.Unprocessable(
			"calendar_date 与 week_date 互斥",
			"不能同时按日期和按周过滤")
	}

	filter := repository.ShiftFilter{UserID: query.UserID}
	if query.GroupID != "" {
		filter.GroupIDs = []string{query.GroupID}
	}

	// 归一化后的 start_value 以日期前缀开头，字符串序即时间序
	if query.CalendarDate != "" {
		day, _, err := ecma.Parse(query.CalendarDate, time.UTC)
		if err != nil {
			return nil, malformedTemporal(err)
		}
		filter.StartFrom = day.Format("2006-01-02")
		filter.StartTo = day.AddDate(0, 0, 1).Format("2006-01-02")
	}
	if query.WeekDate != "" {
		day, _, err := ecma.Parse(query.WeekDate, time.UTC)
		if err != nil {
			return nil, malformedTemporal(err)
		}
		monday := startOfWeek(day)
		filter.StartFrom = monday.Format("2006-01-02")
		filter.StartTo = monday.AddDate(0, 0, 7).Format("2006-01-02")
	}

	shifts, err := s.repo.Shift.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewShiftResponses(shifts), nil
}

func (s *shiftService) Move(ctx context.Context, actorID, shiftID string, req *dto.MoveShiftRequest) (*dto.ShiftResponse, error) {
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	shiftType := shift.ShiftType

	if err := s.requireShiftAdmin(ctx, actorID, shiftType.GroupID); err != nil {
		return nil, err
	}

	isMember, err := s.repo.Group.IsMember(ctx, shiftType.GroupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.Unprocessable(
			fmt.Sprintf("用户 %s 不是组 %s 的成员", req.UserID, shiftType.GroupID),
			"该用户不是班次所属组的成员")
	}

	startTime, _, err := ecma.Parse(shift.StartValue, time.UTC)
	if err != nil {
		return nil, malformedTemporal(err)
	}
	endTime, _, err := ecma.Parse(shift.EndValue, time.UTC)
	if err != nil {
		return nil, malformedTemporal(err)
	}
	if err := s.requireNotAbsent(ctx, req.UserID, shiftType, startTime, endTime); err != nil {
		return nil, err
	}

	open, err := s.repo.Exchange.FindOpenByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, apperr.Unprocessable(
			fmt.Sprintf("班次 %s 存在未决换班，不能移交", shiftID),
			"该班次有未处理的换班申请，处理完毕前不能移交")
	}

	// 先记录旧归属的变更，移交后再记录新归属的变更
	s.calendar.SafeEnqueue(ctx, shift)
	if err := s.repo.Shift.UpdateOwner(ctx, shiftID, req.UserID); err != nil {
		return nil, err
	}
	moved, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	s.calendar.SafeEnqueue(ctx, moved)

	resp := dto.NewShiftResponse(moved)
	return &resp, nil
}

func (s *shiftService) Delete(ctx context.Context, actorID, shiftID string) (*dto.ShiftResponse, error) {
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	if err := s.requireShiftAdmin(ctx, actorID, shift.ShiftType.GroupID); err != nil {
		return nil, err
	}

	resp := dto.NewShiftResponse(shift)

	// 引用该班次的换班（含已终结的历史记录）随班次一并删除，
	// 其审批记录同生共死
	exchanges, err := s.repo.Exchange.FindByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	for i := range exchanges {
		exchange := &exchanges[i]
		if err := s.repo.Exchange.Delete(ctx, exchange.ExchangeID); err != nil {
			return nil, err
		}
		for _, approvalID := range []string{
			exchange.UserAApprovalID,
			exchange.UserBApprovalID,
			exchange.AdminApprovalID,
		} {
			if err := s.repo.Approval.Delete(ctx, approvalID); err != nil {
				s.logger.Error("级联删除审批记录失败",
					zap.String("approval_id", approvalID), zap.Error(err))
			}
		}
	}

	if err := s.repo.Shift.Delete(ctx, shiftID); err != nil {
		return nil, err
	}
	// 变更引用已删除的班次，同步引擎据此移除日历对象
	s.calendar.SafeEnqueue(ctx, shift)

	return &resp, nil
}

// ── 内部辅助 ──

func (s *shiftService) getShift(ctx context.Context, id string) (*model.Shift, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(
				fmt.Sprintf("班次 %s 不存在", id), "班次不存在")
		}
		return nil, err
	}
	if shift.ShiftType == nil {
		return nil, fmt.Errorf("班次 %s 的类型外键无法解析", id)
	}
	return shift, nil
}

func (s *shiftService) requireShiftAdmin(ctx context.Context, actorID, groupID string) error {
	ok, err := s.repo.Group.IsShiftAdmin(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(
			fmt.Sprintf("用户 %s 不是组 %s 的班次管理员", actorID, groupID),
			"你没有管理该组班次的权限")
	}
	return nil
}

func (s *shiftService) requireNotAbsent(ctx context.Context, userID string, shiftType *model.ShiftType, start, end time.Time) error {
	if shiftType.IsByWeek() && s.settings.IgnoreAbsenceForByWeek() {
		return nil
	}
	absent, err := s.calendar.IsUserAbsent(ctx, userID, start, end)
	if err != nil {
		return err
	}
	if absent {
		return apperr.Unprocessable(
			fmt.Sprintf("用户 %s 在班次时段缺勤", userID),
			"该用户在班次时段内处于缺勤状态")
	}
	return nil
}

func malformedTemporal(err error) error {
	return apperr.Wrap(http.StatusUnprocessableEntity,
		"时间字符串格式不受支持", "时间格式错误，请检查输入", err)
}

// startOfWeek 返回 t 所在周的周一（UTC 零点）
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 { // 周日
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}
