package service

import (
	"sync"

	"shift-flow/backend/config"
	"shift-flow/backend/internal/dto"
)

// 换班审批策略
const (
	ApprovalTypeUsers = "users" // 仅双方参与者
	ApprovalTypeAdmin = "admin" // 仅组内班次管理员
	ApprovalTypeAll   = "all"   // 双方 + 管理员
)

// SettingsService 运行时可调配置
//
// 审批策略在每次评估时读取当前值，而非在发起换班时快照；
// 管理员中途切换策略会直接作用于未决换班（有意为之的简化）。
type SettingsService interface {
	ApprovalType() string
	SyncToPersonal() bool
	IgnoreAbsenceForByWeek() bool
	CommonCalendarID() string
	AbsenceCalendarID() string
	Snapshot() dto.SettingsResponse
	Update(req *dto.UpdateSettingsRequest) dto.SettingsResponse
}

type settingsService struct {
	mu sync.RWMutex

	approvalType           string
	syncToPersonal         bool
	ignoreAbsenceForByWeek bool
	commonCalendarID       string
	absenceCalendarID      string
}

// NewSettingsService 以启动配置为初值创建运行时配置服务
func NewSettingsService(cfg *config.Config) SettingsService {
	return &settingsService{
		approvalType:           cfg.Exchange.ApprovalType,
		syncToPersonal:         cfg.Calendar.SyncToPersonal,
		ignoreAbsenceForByWeek: cfg.Calendar.IgnoreAbsenceForByWeek,
		commonCalendarID:       cfg.Calendar.CommonCalendarID,
		absenceCalendarID:      cfg.Calendar.AbsenceCalendarID,
	}
}

func (s *settingsService) ApprovalType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvalType
}

func (s *settingsService) SyncToPersonal() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncToPersonal
}

func (s *settingsService) IgnoreAbsenceForByWeek() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ignoreAbsenceForByWeek
}

func (s *settingsService) CommonCalendarID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commonCalendarID
}

func (s *settingsService) AbsenceCalendarID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.absenceCalendarID
}

func (s *settingsService) Snapshot() dto.SettingsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dto.SettingsResponse{
		ApprovalType:           s.approvalType,
		SyncToPersonal:         s.syncToPersonal,
		IgnoreAbsenceForByWeek: s.ignoreAbsenceForByWeek,
		CommonCalendarID:       s.commonCalendarID,
		AbsenceCalendarID:      s.absenceCalendarID,
	}
}

func (s *settingsService) Update(req *dto.UpdateSettingsRequest) dto.SettingsResponse {
	s.mu.Lock()
	if req.ApprovalType != nil {
		s.approvalType = *req.ApprovalType
	}
	if req.SyncToPersonal != nil {
		s.syncToPersonal = *req.SyncToPersonal
	}
	if req.IgnoreAbsenceForByWeek != nil {
		s.ignoreAbsenceForByWeek = *req.IgnoreAbsenceForByWeek
	}
	if req.CommonCalendarID != nil {
		s.commonCalendarID = *req.CommonCalendarID
	}
	if req.AbsenceCalendarID != nil {
		s.absenceCalendarID = *req.AbsenceCalendarID
	}
	s.mu.Unlock()
	return s.Snapshot()
}
