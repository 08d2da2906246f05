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

// ExchangeService 换班审批引擎
//
// 状态机：Pending →（所需审批席位全部表态）→ Done-Approved / Done-Rejected。
// Done 为终态：不可再更新，只能删除。
type ExchangeService interface {
	Create(ctx context.Context, actorID string, req *dto.CreateExchangeRequest) (*dto.ExchangeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ExchangeResponse, error)
	List(ctx context.Context, done *bool) ([]dto.ExchangeResponse, error)
	// UpdateParticipantApproval 参与者表态（A 或 B，按操作者身份匹配）
	UpdateParticipantApproval(ctx context.Context, actorID, exchangeID string, approved *bool, comment *string) (*dto.ExchangeResponse, error)
	// UpdateAdminApproval 管理员表态
	UpdateAdminApproval(ctx context.Context, actorID, exchangeID string, approved *bool, comment *string) (*dto.ExchangeResponse, error)
	Destroy(ctx context.Context, actorID, exchangeID string) (*dto.ExchangeResponse, error)
}

type exchangeService struct {
	repo     *repository.Repository
	settings SettingsService
	calendar CalendarService
	logger   *zap.Logger
}

// NewExchangeService 创建 ExchangeService 实例
func NewExchangeService(
	repo *repository.Repository,
	settings SettingsService,
	calendar CalendarService,
	logger *zap.Logger,
) ExchangeService {
	return &exchangeService{
		repo:     repo,
		settings: settings,
		calendar: calendar,
		logger:   logger,
	}
}

func (s *exchangeService) Create(ctx context.Context, actorID string, req *dto.CreateExchangeRequest) (*dto.ExchangeResponse, error) {
	// 1. 互换与转让互斥，且必须指定其一
	if req.ShiftBID != nil && req.TransferToUserID != nil {
		return nil, apperr.BadRequest(
			"shift_b_id 与 transfer_to_user_id 互斥",
			"只能在互换班次与转让班次中二选一")
	}
	if req.ShiftBID == nil && req.TransferToUserID == nil {
		return nil, apperr.BadRequest(
			"shift_b_id 与 transfer_to_user_id 必须指定其一",
			"请指定要互换的班次或要转让给的用户")
	}

	// 2. 解析双方
	shiftA, err := s.getShift(ctx, req.ShiftAID)
	if err != nil {
		return nil, err
	}
	userAID := shiftA.UserID
	groupIDs := []string{shiftA.ShiftType.GroupID}

	var shiftB *model.Shift
	var userBID string
	if req.ShiftBID != nil {
		shiftB, err = s.getShift(ctx, *req.ShiftBID)
		if err != nil {
			return nil, err
		}
		userBID = shiftB.UserID
		groupIDs = append(groupIDs, shiftB.ShiftType.GroupID)
	} else {
		if _, err := s.repo.User.GetByID(ctx, *req.TransferToUserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound(
					fmt.Sprintf("转让目标用户 %s 不存在", *req.TransferToUserID),
					"转让目标用户不存在")
			}
			return nil, err
		}
		userBID = *req.TransferToUserID
	}

	// 3. 授权：操作者是班次 A 的归属人，或所有涉及组的班次管理员
	isShiftAdmin, err := s.isShiftAdminAll(ctx, actorID, groupIDs)
	if err != nil {
		return nil, err
	}
	if userAID != actorID && !isShiftAdmin {
		return nil, apperr.Forbidden(
			"为他人发起换班需要对应的班次管理员权限",
			"你没有为指定班次发起换班的权限")
	}

	ignoreAbsenceForByWeek := s.settings.IgnoreAbsenceForByWeek()

	if shiftB != nil { // ── 互换 ──
		if userAID == userBID {
			return nil, apperr.Unprocessable(
				"不能与自己互换班次", "无法与自己互换班次")
		}
		if shiftA.ShiftType.GroupID != shiftB.ShiftType.GroupID {
			return nil, apperr.Unprocessable(
				"只能互换同一组内的班次", "班次互换只能在同一组内进行")
		}

		if err := s.requireNoOpenExchange(ctx, shiftB); err != nil {
			return nil, err
		}

		// 检查 A 在班次 B 时段是否缺勤
		if err := s.requireNotAbsent(ctx, userAID, shiftB, ignoreAbsenceForByWeek,
			"参与者 A 在班次 B 时段缺勤"); err != nil {
			return nil, err
		}
	} else { // ── 转让 ──
		if userAID == userBID {
			return nil, apperr.Unprocessable(
				"不能把班次转让给自己", "无法把班次转让给自己")
		}
		isMember, err := s.repo.Group.IsMember(ctx, shiftA.ShiftType.GroupID, userBID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, apperr.Unprocessable(
				"转让目标用户不是班次所属组的成员",
				"班次只能转让给所属组的成员")
		}
	}

	if err := s.requireNoOpenExchange(ctx, shiftA); err != nil {
		return nil, err
	}

	// 检查 B 在班次 A 时段是否缺勤
	if err := s.requireNotAbsent(ctx, userBID, shiftA, ignoreAbsenceForByWeek,
		"参与者 B 在班次 A 时段缺勤"); err != nil {
		return nil, err
	}

	// 4. 分配三条审批记录；操作者所在席位视为创建即同意，
	//    管理员席位仅当操作者本身就是全部涉及组的班次管理员时预置同意
	userAApproval, err := s.repo.Approval.Create(ctx, &userAID, preApproved(actorID == userAID))
	if err != nil {
		return nil, err
	}
	userBApproval, err := s.repo.Approval.Create(ctx, &userBID, preApproved(actorID == userBID))
	if err != nil {
		return nil, err
	}
	var adminUserID *string
	if isShiftAdmin {
		adminUserID = &actorID
	}
	adminApproval, err := s.repo.Approval.Create(ctx, adminUserID, preApproved(isShiftAdmin))
	if err != nil {
		return nil, err
	}

	// 5. 按当前策略评估；创建即满足时立刻终结
	done, approved := s.evaluate(userAApproval, userBApproval, adminApproval)

	exchange := &model.ShiftExchange{
		ShiftAID:         req.ShiftAID,
		ShiftBID:         req.ShiftBID,
		TransferToUserID: req.TransferToUserID,
		Comment:          req.Comment,
		Done:             done,
		Approved:         approved,
		UserAApprovalID:  userAApproval.ApprovalID,
		UserBApprovalID:  userBApproval.ApprovalID,
		AdminApprovalID:  adminApproval.ApprovalID,
	}
	if err := s.repo.Exchange.Create(ctx, exchange); err != nil {
		return nil, err
	}

	if approved != nil && *approved {
		if err := s.performTransfer(ctx, shiftA, shiftB, userAID, userBID); err != nil {
			return nil, err
		}
	}

	return s.resolved(ctx, exchange.ExchangeID)
}

func (s *exchangeService) GetByID(ctx context.Context, id string) (*dto.ExchangeResponse, error) {
	return s.resolved(ctx, id)
}

func (s *exchangeService) List(ctx context.Context, done *bool) ([]dto.ExchangeResponse, error) {
	exchanges, err := s.repo.Exchange.List(ctx, done)
	if err != nil {
		return nil, err
	}
	return dto.NewExchangeResponses(exchanges), nil
}

func (s *exchangeService) UpdateParticipantApproval(ctx context.Context, actorID, exchangeID string, approved *bool, comment *string) (*dto.ExchangeResponse, error) {
	return s.updateApproval(ctx, actorID, exchangeID, approved, comment, false)
}

func (s *exchangeService) UpdateAdminApproval(ctx context.Context, actorID, exchangeID string, approved *bool, comment *string) (*dto.ExchangeResponse, error) {
	return s.updateApproval(ctx, actorID, exchangeID, approved, comment, true)
}

func (s *exchangeService) updateApproval(ctx context.Context, actorID, exchangeID string, approved *bool, comment *string, isAdminUpdate bool) (*dto.ExchangeResponse, error) {
	exchange, err := s.getExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if exchange.Done {
		return nil, apperr.Unprocessable(
			"已终结的换班不可再更新", "该换班已处理完毕，无法再更新")
	}

	shiftA := exchange.ShiftA
	userAID := shiftA.UserID
	groupIDs := []string{shiftA.ShiftType.GroupID}

	var userBID string
	if exchange.ShiftB != nil {
		userBID = exchange.ShiftB.UserID
		groupIDs = append(groupIDs, exchange.ShiftB.ShiftType.GroupID)
	} else if exchange.TransferToUserID != nil {
		userBID = *exchange.TransferToUserID
	}

	userAApproval := exchange.UserAApproval
	userBApproval := exchange.UserBApproval
	adminApproval := exchange.AdminApproval

	if isAdminUpdate {
		isShiftAdmin, err := s.isShiftAdminAll(ctx, actorID, groupIDs)
		if err != nil {
			return nil, err
		}
		if !isShiftAdmin {
			return nil, apperr.Forbidden(
				"管理员审批只能由对应组的班次管理员更新",
				"只有对应组的班次管理员才能更新管理员审批")
		}
		adminApproval.UserID = &actorID
		adminApproval.Approved = approved
		if err := s.repo.Approval.Update(ctx, adminApproval); err != nil {
			return nil, err
		}
	} else {
		switch actorID {
		case userAID:
			userAApproval.Approved = approved
			if err := s.repo.Approval.Update(ctx, userAApproval); err != nil {
				return nil, err
			}
		case userBID:
			userBApproval.Approved = approved
			if err := s.repo.Approval.Update(ctx, userBApproval); err != nil {
				return nil, err
			}
		default:
			return nil, apperr.Forbidden(
				"参与者审批只能由换班参与者本人更新",
				"只有换班参与者本人才能更新参与者审批")
		}
	}

	// 表态后按当前策略重新评估
	done, overall := s.evaluate(userAApproval, userBApproval, adminApproval)

	exchange.Done = done
	exchange.Approved = overall
	if comment != nil {
		exchange.Comment = *comment
	}
	if err := s.repo.Exchange.Update(ctx, exchange); err != nil {
		return nil, err
	}

	if overall != nil && *overall {
		if err := s.performTransfer(ctx, shiftA, exchange.ShiftB, userAID, userBID); err != nil {
			return nil, err
		}
	}

	return s.resolved(ctx, exchange.ExchangeID)
}

func (s *exchangeService) Destroy(ctx context.Context, actorID, exchangeID string) (*dto.ExchangeResponse, error) {
	exchange, err := s.getExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	groupIDs := []string{exchange.ShiftA.ShiftType.GroupID}
	if exchange.ShiftB != nil {
		groupIDs = append(groupIDs, exchange.ShiftB.ShiftType.GroupID)
	}

	isShiftAdmin, err := s.isShiftAdminAll(ctx, actorID, groupIDs)
	if err != nil {
		return nil, err
	}

	if exchange.Done && !isShiftAdmin {
		return nil, apperr.Unprocessable(
			"已终结的换班只能由对应组的班次管理员删除",
			"已处理完毕的换班只能由对应组的班次管理员删除")
	}

	userAID := exchange.ShiftA.UserID
	var userBID string
	if exchange.ShiftB != nil {
		userBID = exchange.ShiftB.UserID
	} else if exchange.TransferToUserID != nil {
		userBID = *exchange.TransferToUserID
	}

	isParticipant := actorID == userAID || (userBID != "" && actorID == userBID)
	if !isParticipant && !isShiftAdmin {
		return nil, apperr.Forbidden(
			"换班只能由参与者或对应组的班次管理员删除",
			"只有换班参与者或对应组的班次管理员才能删除换班")
	}

	// 快照响应后级联删除：换班与三条审批记录同生共死
	resp := dto.NewExchangeResponse(exchange)

	if err := s.repo.Exchange.Delete(ctx, exchangeID); err != nil {
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

	return &resp, nil
}

// ── 内部辅助 ──

// evaluate 按当前配置的策略评估三条审批记录。
// done：所需席位中不再有未表态；approved：done 且所需席位中没有拒绝。
func (s *exchangeService) evaluate(userA, userB, admin *model.ShiftExchangeApproval) (bool, *bool) {
	var required []*bool
	switch s.settings.ApprovalType() {
	case ApprovalTypeUsers:
		required = []*bool{userA.Approved, userB.Approved}
	case ApprovalTypeAdmin:
		required = []*bool{admin.Approved}
	default: // all
		required = []*bool{userA.Approved, userB.Approved, admin.Approved}
	}

	for _, v := range required {
		if v == nil {
			return false, nil
		}
	}
	approved := true
	for _, v := range required {
		if !*v {
			approved = false
			break
		}
	}
	return true, &approved
}

// performTransfer 执行归属转移，每个班次各记录一条旧归属与一条新归属的日历变更。
// 互换的两次归属更新在一个数据库事务内完成，不可能出现只换了一半的状态。
func (s *exchangeService) performTransfer(ctx context.Context, shiftA, shiftB *model.Shift, userAID, userBID string) error {
	s.calendar.SafeEnqueue(ctx, shiftA)
	if shiftB != nil {
		s.calendar.SafeEnqueue(ctx, shiftB)
		if err := s.repo.Shift.SwapOwners(ctx, shiftA.ShiftID, shiftB.ShiftID); err != nil {
			return err
		}
		updatedB := *shiftB
		updatedB.UserID = userAID
		updatedB.User = nil
		s.calendar.SafeEnqueue(ctx, &updatedB)
	} else {
		if err := s.repo.Shift.UpdateOwner(ctx, shiftA.ShiftID, userBID); err != nil {
			return err
		}
	}
	updatedA := *shiftA
	updatedA.UserID = userBID
	updatedA.User = nil
	s.calendar.SafeEnqueue(ctx, &updatedA)
	return nil
}

// requireNoOpenExchange 同一班次同一时刻至多一条未决换班
func (s *exchangeService) requireNoOpenExchange(ctx context.Context, shift *model.Shift) error {
	open, err := s.repo.Exchange.FindOpenByShift(ctx, shift.ShiftID)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return apperr.Unprocessable(
			fmt.Sprintf("班次 %s 已存在未决换班", shift.ShiftID),
			fmt.Sprintf("%s %s 已有未处理的换班申请，处理完毕前不能再发起",
				groupDisplayName(shift), shiftTypeName(shift)))
	}
	return nil
}

// requireNotAbsent 检查 userID 在 shift 时段是否缺勤；
// 按周班次可按配置跳过检查
func (s *exchangeService) requireNotAbsent(ctx context.Context, userID string, shift *model.Shift, ignoreForByWeek bool, message string) error {
	if shift.ShiftType.IsByWeek() && ignoreForByWeek {
		return nil
	}
	start, _, err := ecma.Parse(shift.StartValue, time.UTC)
	if err != nil {
		return apperr.Wrap(http.StatusUnprocessableEntity, "班次起始时间不可解析", "班次时间格式错误", err)
	}
	end, _, err := ecma.Parse(shift.EndValue, time.UTC)
	if err != nil {
		return apperr.Wrap(http.StatusUnprocessableEntity, "班次结束时间不可解析", "班次时间格式错误", err)
	}
	absent, err := s.calendar.IsUserAbsent(ctx, userID, start, end)
	if err != nil {
		return err
	}
	if absent {
		return apperr.Unprocessable(message, "对方在该班次时段内处于缺勤状态，无法换班")
	}
	return nil
}

func (s *exchangeService) getShift(ctx context.Context, id string) (*model.Shift, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(
				fmt.Sprintf("班次 %s 不存在", id), "引用的班次不存在")
		}
		return nil, err
	}
	if shift.ShiftType == nil {
		return nil, fmt.Errorf("班次 %s 的类型外键无法解析", id)
	}
	return shift, nil
}

func (s *exchangeService) getExchange(ctx context.Context, id string) (*model.ShiftExchange, error) {
	exchange, err := s.repo.Exchange.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(
				fmt.Sprintf("换班 %s 不存在", id), "换班申请不存在")
		}
		return nil, err
	}
	if exchange.ShiftA == nil || exchange.ShiftA.ShiftType == nil {
		return nil, fmt.Errorf("换班 %s 的班次外键无法解析", id)
	}
	if exchange.UserAApproval == nil || exchange.UserBApproval == nil || exchange.AdminApproval == nil {
		return nil, fmt.Errorf("换班 %s 的审批外键无法解析", id)
	}
	return exchange, nil
}

func (s *exchangeService) isShiftAdminAll(ctx context.Context, userID string, groupIDs []string) (bool, error) {
	for _, groupID := range groupIDs {
		ok, err := s.repo.Group.IsShiftAdmin(ctx, groupID, userID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *exchangeService) resolved(ctx context.Context, id string) (*dto.ExchangeResponse, error) {
	exchange, err := s.repo.Exchange.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewExchangeResponse(exchange)
	return &resp, nil
}

func preApproved(yes bool) *bool {
	if !yes {
		return nil
	}
	v := true
	return &v
}

func groupDisplayName(shift *model.Shift) string {
	if shift.ShiftType != nil && shift.ShiftType.Group != nil {
		return shift.ShiftType.Group.DisplayName
	}
	return ""
}

func shiftTypeName(shift *model.Shift) string {
	if shift.ShiftType != nil {
		return shift.ShiftType.Name
	}
	return ""
}
