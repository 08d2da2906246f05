package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/model"
	"shift-flow/backend/internal/repository"
	"shift-flow/backend/pkg/apperr"
	"shift-flow/backend/pkg/caldav"
	"shift-flow/backend/pkg/ecma"
)

// 日历对象键的命名空间。绝对不要修改：
// 修改会使所有已同步班次的对象键失效，外部日历中的事件将全部重复。
const calendarNamespaceUUID = "d3a8945c-b6ce-4d49-915f-9f7be87c866b"

// ObjectURIs 由班次 ID 派生日历对象的 URI 与软删除 URI。
// 仅依赖班次身份，不依赖任何可变字段，保证重试幂等。
func ObjectURIs(shiftID string) (normal, deleted string) {
	ns := uuid.MustParse(calendarNamespaceUUID)
	u := uuid.NewSHA1(ns, []byte(shiftID)).String()
	return u + ".ics", u + "-deleted.ics"
}

// CalendarService 日历同步引擎
//
// 变更日志的消费者：逐条把 (组, 用户, 班次) 变更调和到公共日历与
// 个人日历，任何单日历失败都不阻塞其他日历，失败的变更保留重试。
type CalendarService interface {
	// ApplyChange 调和单条变更，返回失败的日历列表
	ApplyChange(ctx context.Context, change *model.CalendarChange) []caldav.Calendar
	// ApplyChanges 逐条调和；全部成功的变更从日志删除，返回人类可读的失败描述
	ApplyChanges(ctx context.Context, changes []model.CalendarChange) []string
	// SynchronizeGroups 调和指定组的所有待决变更
	SynchronizeGroups(ctx context.Context, groupIDs []string) (*dto.SynchronizeResponse, []string, error)
	// SynchronizeShift 调和指定班次的所有待决变更
	SynchronizeShift(ctx context.Context, shiftID string) (*dto.SynchronizeResponse, []string, error)
	// SafeEnqueue 尽力而为地记录变更；任何失败都被吞掉，绝不让触发它的班次变更回滚
	SafeEnqueue(ctx context.Context, shift *model.Shift)
	// IsUserAbsent 查询缺勤日历中该用户在时间窗内是否有缺勤事件
	IsUserAbsent(ctx context.Context, userID string, start, end time.Time) (bool, error)
	// ListCalendars 列出所有用户的日历元信息
	ListCalendars(ctx context.Context) ([]caldav.Calendar, error)
}

type calendarService struct {
	backend  caldav.Backend
	settings SettingsService
	repo     *repository.Repository
	logger   *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(
	backend caldav.Backend,
	settings SettingsService,
	repo *repository.Repository,
	logger *zap.Logger,
) CalendarService {
	return &calendarService{
		backend:  backend,
		settings: settings,
		repo:     repo,
		logger:   logger,
	}
}

func (s *calendarService) ApplyChange(ctx context.Context, change *model.CalendarChange) []caldav.Calendar {
	// 班次不存在是预期情况：该变更退化为删除
	shift, err := s.repo.Shift.GetByID(ctx, change.ShiftID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("解析变更引用的班次失败，按删除处理",
				zap.String("shift_id", change.ShiftID), zap.Error(err))
		}
		shift = nil
	}

	objectURI, deletedURI := ObjectURIs(change.ShiftID)

	// 目标日历集合：公共日历（若配置）+ 变更主体的个人日历（若启用）。
	// 找不到某个目标日历不是错误，跳过即可。
	var calendars []caldav.Calendar
	if id := s.settings.CommonCalendarID(); id != "" {
		if cal, err := s.backend.GetCalendarByID(ctx, id); err == nil {
			calendars = append(calendars, *cal)
		}
	}
	if s.settings.SyncToPersonal() {
		if user, err := s.repo.User.GetByID(ctx, change.UserID); err == nil {
			if cal, err := s.backend.GetPersonalCalendar(ctx, user.Username); err == nil {
				calendars = append(calendars, *cal)
			}
		}
	}

	var failed []caldav.Calendar
	for _, cal := range calendars {
		if err := s.applyToCalendar(ctx, cal, change, shift, objectURI, deletedURI); err != nil {
			s.logger.Warn("变更应用到日历失败",
				zap.String("calendar", cal.ID),
				zap.String("shift_id", change.ShiftID),
				zap.Error(err))
			failed = append(failed, cal)
		}
	}
	return failed
}

// applyToCalendar 对单个日历独立调和；返回的错误只影响该日历
func (s *calendarService) applyToCalendar(
	ctx context.Context,
	cal caldav.Calendar,
	change *model.CalendarChange,
	shift *model.Shift,
	objectURI, deletedURI string,
) error {
	// 先恢复再覆盖：对象可能已被外部日历移入回收站，
	// 直接重建会产生可见的闪烁/丢失窗口
	deletedObject, err := s.backend.GetObject(ctx, cal.ID, deletedURI)
	if err != nil {
		return err
	}
	if deletedObject != nil {
		if err := s.backend.RestoreObject(ctx, cal.ID, deletedURI); err != nil {
			return err
		}
	}

	object, err := s.backend.GetObject(ctx, cal.ID, objectURI)
	if err != nil {
		return err
	}

	if shift != nil && shift.UserID == change.UserID {
		isPersonal := cal.URI == caldav.PersonalCalendarURI
		data, err := s.buildEvent(shift, isPersonal)
		if err != nil {
			return err
		}
		if object != nil {
			return s.backend.UpdateObject(ctx, cal.ID, objectURI, data)
		}
		return s.backend.CreateObject(ctx, cal.ID, objectURI, data)
	}

	// 班次已删除或已移交他人：永久移除遗留对象
	if object != nil {
		return s.backend.DeleteObject(ctx, cal.ID, objectURI)
	}
	return nil
}

// buildEvent 由班次生成 iCalendar 文本
//
// 标题为 "<组> <班次类型> (<归属人>)"；个人日历不带归属人。
// 按周班次生成全天事件（DTEND 按 iCal 约定为排他日期，加一天）。
func (s *calendarService) buildEvent(shift *model.Shift, isPersonal bool) (string, error) {
	if shift.ShiftType == nil || shift.ShiftType.Group == nil || shift.User == nil {
		return "", fmt.Errorf("班次 %s 的关联未完整加载", shift.ShiftID)
	}

	summary := shift.ShiftType.Group.DisplayName + " " + shift.ShiftType.Name
	if !isPersonal {
		summary += " (" + shift.User.DisplayName + ")"
	}

	start, _, err := ecma.Parse(shift.StartValue, time.UTC)
	if err != nil {
		return "", err
	}
	end, _, err := ecma.Parse(shift.EndValue, time.UTC)
	if err != nil {
		return "", err
	}

	objectURI, _ := ObjectURIs(shift.ShiftID)
	uid := strings.TrimSuffix(objectURI, ".ics")

	cal := ics.NewCalendar()
	event := cal.AddEvent(uid)
	event.SetProperty(ics.ComponentPropertySummary, summary)
	event.SetProperty(ics.ComponentProperty("TRANSP"), "TRANSPARENT")
	event.SetDtStampTime(time.Now().UTC())

	if shift.ShiftType.IsByWeek() {
		event.SetAllDayStartAt(start)
		// 全天事件 DTEND 排他
		event.SetAllDayEndAt(end.AddDate(0, 0, 1))
	} else {
		event.SetStartAt(start)
		event.SetEndAt(end)
	}

	if v := shift.ShiftType.Caldav.String("description"); v != "" {
		event.SetProperty(ics.ComponentPropertyDescription, v)
	}
	if v := shift.ShiftType.Caldav.String("location"); v != "" {
		event.SetProperty(ics.ComponentPropertyLocation, v)
	}
	if v := shift.ShiftType.Caldav.String("categories"); v != "" {
		event.SetProperty(ics.ComponentPropertyCategories, v)
	}

	return cal.Serialize(), nil
}

func (s *calendarService) ApplyChanges(ctx context.Context, changes []model.CalendarChange) []string {
	_, errs := s.applyAll(ctx, changes)
	return errs
}

// applyAll 逐条调和并按变更（而非出错的日历）计数失败
func (s *calendarService) applyAll(ctx context.Context, changes []model.CalendarChange) (int, []string) {
	var errs []string
	failedChanges := 0

	for i := range changes {
		change := &changes[i]
		failed := s.ApplyChange(ctx, change)

		for _, cal := range failed {
			errs = append(errs, fmt.Sprintf(
				"变更应用到日历 %q（%s）失败", cal.DisplayName, cal.OwnerDisplayName))
		}
		if len(failed) > 0 {
			// 保留日志记录，下一次排空时重试
			failedChanges++
			continue
		}

		if err := s.repo.CalendarChange.Delete(ctx, change.ChangeID); err != nil {
			failedChanges++
			errs = append(errs, fmt.Sprintf("删除变更记录 %s 失败", change.ChangeID))
		}
	}

	return failedChanges, errs
}

func (s *calendarService) SynchronizeGroups(ctx context.Context, groupIDs []string) (*dto.SynchronizeResponse, []string, error) {
	changes, err := s.repo.CalendarChange.ListByGroups(ctx, groupIDs)
	if err != nil {
		return nil, nil, err
	}
	return s.drain(ctx, changes)
}

func (s *calendarService) SynchronizeShift(ctx context.Context, shiftID string) (*dto.SynchronizeResponse, []string, error) {
	changes, err := s.repo.CalendarChange.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, nil, err
	}
	return s.drain(ctx, changes)
}

func (s *calendarService) drain(ctx context.Context, changes []model.CalendarChange) (*dto.SynchronizeResponse, []string, error) {
	failed, errs := s.applyAll(ctx, changes)
	return &dto.SynchronizeResponse{
		Processed: len(changes) - failed,
		Failed:    failed,
	}, errs, nil
}

func (s *calendarService) SafeEnqueue(ctx context.Context, shift *model.Shift) {
	groupID, err := s.resolveGroupID(ctx, shift)
	if err != nil {
		s.logger.Warn("记录日历变更失败（忽略）",
			zap.String("shift_id", shift.ShiftID), zap.Error(err))
		return
	}
	change := &model.CalendarChange{
		GroupID: groupID,
		UserID:  shift.UserID,
		ShiftID: shift.ShiftID,
	}
	if err := s.repo.CalendarChange.Create(ctx, change); err != nil {
		s.logger.Warn("记录日历变更失败（忽略）",
			zap.String("shift_id", shift.ShiftID), zap.Error(err))
	}
}

func (s *calendarService) resolveGroupID(ctx context.Context, shift *model.Shift) (string, error) {
	if shift.ShiftType != nil {
		return shift.ShiftType.GroupID, nil
	}
	shiftType, err := s.repo.ShiftType.GetByID(ctx, shift.ShiftTypeID)
	if err != nil {
		return "", err
	}
	return shiftType.GroupID, nil
}

func (s *calendarService) IsUserAbsent(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	absenceCalendarID := s.settings.AbsenceCalendarID()
	if absenceCalendarID == "" {
		// 未配置缺勤日历时不做缺勤拦截
		return false, nil
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.NotFound(
				fmt.Sprintf("用户 %s 不存在", userID), "用户不存在")
		}
		return false, err
	}

	events, err := s.backend.Search(ctx, absenceCalendarID, start, end, 25)
	if err != nil {
		return false, err
	}

	// 已知局限：按事件标题做大小写不敏感的字符串匹配，
	// 显示名变更会产生漏判。结构化的参与人匹配待后端支持。
	displayName := strings.ToLower(strings.TrimSpace(user.DisplayName))
	username := strings.ToLower(strings.TrimSpace(user.Username))
	for _, evt := range events {
		title := strings.ToLower(strings.TrimSpace(evt.Summary))
		if title == displayName || title == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *calendarService) ListCalendars(ctx context.Context) ([]caldav.Calendar, error) {
	users, _, err := s.repo.User.List(ctx, 0, 1000)
	if err != nil {
		return nil, err
	}
	var calendars []caldav.Calendar
	for i := range users {
		userCalendars, err := s.backend.ListCalendars(ctx, users[i].Username)
		if err != nil {
			s.logger.Warn("列出用户日历失败",
				zap.String("username", users[i].Username), zap.Error(err))
			continue
		}
		calendars = append(calendars, userCalendars...)
	}
	return calendars, nil
}
