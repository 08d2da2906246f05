package handler

import (
	"github.com/gin-gonic/gin"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/service"
	"shift-flow/backend/pkg/response"
)

// ShiftTypeHandler 班次类型模块 HTTP 处理器
type ShiftTypeHandler struct {
	shiftTypeSvc service.ShiftTypeService
}

// NewShiftTypeHandler 创建 ShiftTypeHandler
func NewShiftTypeHandler(shiftTypeSvc service.ShiftTypeService) *ShiftTypeHandler {
	return &ShiftTypeHandler{shiftTypeSvc: shiftTypeSvc}
}

// CreateShiftType 创建班次类型（组内班次管理员）
// POST /api/v1/shift-types
func (h *ShiftTypeHandler) CreateShiftType(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shiftType, err := h.shiftTypeSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, shiftType)
}

// GetShiftType 获取班次类型详情
// GET /api/v1/shift-types/:id
func (h *ShiftTypeHandler) GetShiftType(c *gin.Context) {
	shiftType, err := h.shiftTypeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, shiftType)
}

// UpdateShiftType 更新班次类型（组内班次管理员）
// PUT /api/v1/shift-types/:id
func (h *ShiftTypeHandler) UpdateShiftType(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shiftType, err := h.shiftTypeSvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, shiftType)
}

// ListShiftTypes 按组列出班次类型
// GET /api/v1/shift-types?group_id=xxx
func (h *ShiftTypeHandler) ListShiftTypes(c *gin.Context) {
	groupID := c.Query("group_id")
	if groupID == "" {
		response.BadRequest(c, 10001, "group_id 不能为空")
		return
	}

	types, err := h.shiftTypeSvc.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, types)
}

// DeleteShiftType 删除班次类型（组内班次管理员）
// DELETE /api/v1/shift-types/:id
func (h *ShiftTypeHandler) DeleteShiftType(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.shiftTypeSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}
