package handler

import (
	"github.com/gin-gonic/gin"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/service"
	"shift-flow/backend/pkg/response"
)

// CalendarHandler 日历同步模块 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
	groupSvc    service.GroupService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService, groupSvc service.GroupService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc, groupSvc: groupSvc}
}

// Synchronize 按组排空待决的日历变更（组内班次管理员）
// 请求的组集合与调用者管辖的组取交集；为空表示全部管辖组。
// POST /api/v1/calendar/synchronize
func (h *CalendarHandler) Synchronize(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SynchronizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adminGroupIDs, err := h.groupSvc.AdminGroupIDs(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if len(adminGroupIDs) == 0 {
		response.Forbidden(c, 10003, "你不是任何组的班次管理员")
		return
	}

	groupIDs := adminGroupIDs
	if len(req.GroupIDs) > 0 {
		adminSet := make(map[string]bool, len(adminGroupIDs))
		for _, id := range adminGroupIDs {
			adminSet[id] = true
		}
		groupIDs = make([]string, 0, len(req.GroupIDs))
		for _, id := range req.GroupIDs {
			if adminSet[id] {
				groupIDs = append(groupIDs, id)
			}
		}
		if len(groupIDs) == 0 {
			response.Forbidden(c, 10003, "你不是所请求组的班次管理员")
			return
		}
	}

	result, errs, err := h.calendarSvc.SynchronizeGroups(c.Request.Context(), groupIDs)
	if err != nil {
		response.Fail(c, err)
		return
	}
	result.Errors = errs
	response.OK(c, result)
}

// SynchronizeShift 排空单个班次的待决变更（组内班次管理员）
// POST /api/v1/shifts/:id/synchronize
func (h *CalendarHandler) SynchronizeShift(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	adminGroupIDs, err := h.groupSvc.AdminGroupIDs(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if len(adminGroupIDs) == 0 {
		response.Forbidden(c, 10003, "你不是任何组的班次管理员")
		return
	}

	result, errs, err := h.calendarSvc.SynchronizeShift(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	result.Errors = errs
	response.OK(c, result)
}

// ListCalendars 列出所有用户的日历元信息（管理员）
// GET /api/v1/calendars
func (h *CalendarHandler) ListCalendars(c *gin.Context) {
	calendars, err := h.calendarSvc.ListCalendars(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	out := make([]dto.CalendarResponse, 0, len(calendars))
	for _, cal := range calendars {
		out = append(out, dto.CalendarResponse{
			ID:               cal.ID,
			URI:              cal.URI,
			DisplayName:      cal.DisplayName,
			OwnerDisplayName: cal.OwnerDisplayName,
		})
	}
	response.OK(c, out)
}
