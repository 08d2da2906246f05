package service

import (
	"go.uber.org/zap"

	"shift-flow/backend/config"
	"shift-flow/backend/internal/repository"
	"shift-flow/backend/pkg/caldav"
	"shift-flow/backend/pkg/jwt"
	"shift-flow/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	User      UserService
	Group     GroupService
	ShiftType ShiftTypeService
	Shift     ShiftService
	Exchange  ExchangeService
	Calendar  CalendarService
	Settings  SettingsService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	backend caldav.Backend,
	logger *zap.Logger,
) *Service {
	settings := NewSettingsService(cfg)
	calendar := NewCalendarService(backend, settings, repo, logger)

	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:      NewUserService(repo, logger),
		Group:     NewGroupService(repo, logger),
		ShiftType: NewShiftTypeService(repo, logger),
		Shift:     NewShiftService(repo, settings, calendar, logger),
		Exchange:  NewExchangeService(repo, settings, calendar, logger),
		Calendar:  calendar,
		Settings:  settings,
		Export:    NewExportService(repo, logger),
	}
}
