package handler

import (
	"github.com/gin-gonic/gin"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/service"
	"shift-flow/backend/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// CreateShift 创建班次（组内班次管理员）
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, shift)
}

// GetShift 获取班次详情
// GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	shift, err := h.shiftSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, shift)
}

// ListShifts 班次列表
// GET /api/v1/shifts?group_id=&user_id=&calendar_date=&week_date=
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var query dto.ListShiftsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shifts, err := h.shiftSvc.List(c.Request.Context(), &query)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, shifts)
}

// MoveShift 移交班次给另一名成员（组内班次管理员）
// PUT /api/v1/shifts/:id/owner
func (h *ShiftHandler) MoveShift(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MoveShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shift, err := h.shiftSvc.Move(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, shift)
}

// DeleteShift 删除班次（组内班次管理员）
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, shift)
}
