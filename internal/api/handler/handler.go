package handler

import "shift-flow/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Group     *GroupHandler
	ShiftType *ShiftTypeHandler
	Shift     *ShiftHandler
	Exchange  *ExchangeHandler
	Calendar  *CalendarHandler
	Settings  *SettingsHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth, svc.User),
		User:      NewUserHandler(svc.User),
		Group:     NewGroupHandler(svc.Group),
		ShiftType: NewShiftTypeHandler(svc.ShiftType),
		Shift:     NewShiftHandler(svc.Shift),
		Exchange:  NewExchangeHandler(svc.Exchange),
		Calendar:  NewCalendarHandler(svc.Calendar, svc.Group),
		Settings:  NewSettingsHandler(svc.Settings),
		Export:    NewExportHandler(svc.Export, svc.Group),
	}
}
