package handler

import (
	"github.com/gin-gonic/gin"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/service"
	"shift-flow/backend/pkg/response"
)

// GroupHandler 排班组模块 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// CreateGroup 创建排班组（管理员）
// POST /api/v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, group)
}

// GetGroup 获取排班组详情
// GET /api/v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, group)
}

// UpdateGroup 更新排班组（管理员）
// PUT /api/v1/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	group, err := h.groupSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, group)
}

// ListGroups 排班组列表
// GET /api/v1/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupSvc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, groups)
}

// DeleteGroup 删除排班组（管理员）
// DELETE /api/v1/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	if err := h.groupSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 组成员 ──

// ListMembers 组成员列表
// GET /api/v1/groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	members, err := h.groupSvc.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, members)
}

// AddMember 添加组成员（管理员）
// POST /api/v1/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req dto.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.groupSvc.AddMember(c.Request.Context(), c.Param("id"), req.UserID); err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, nil)
}

// RemoveMember 移除组成员（管理员）
// DELETE /api/v1/groups/:id/members/:user_id
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	if err := h.groupSvc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("user_id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 组内班次管理员 ──

// ListShiftAdmins 组内班次管理员列表
// GET /api/v1/groups/:id/shift-admins
func (h *GroupHandler) ListShiftAdmins(c *gin.Context) {
	admins, err := h.groupSvc.ListShiftAdmins(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, admins)
}

// AddShiftAdmin 授予组内班次管理员（管理员）
// POST /api/v1/groups/:id/shift-admins
func (h *GroupHandler) AddShiftAdmin(c *gin.Context) {
	var req dto.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.groupSvc.AddShiftAdmin(c.Request.Context(), c.Param("id"), req.UserID); err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, nil)
}

// RemoveShiftAdmin 撤销组内班次管理员（管理员）
// DELETE /api/v1/groups/:id/shift-admins/:user_id
func (h *GroupHandler) RemoveShiftAdmin(c *gin.Context) {
	if err := h.groupSvc.RemoveShiftAdmin(c.Request.Context(), c.Param("id"), c.Param("user_id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}
