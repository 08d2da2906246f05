package dto

import "shift-flow/backend/internal/model"

// ── 排班组模块 DTO ──

// CreateGroupRequest 创建排班组请求
type CreateGroupRequest struct {
	Name        string `json:"name"         binding:"required,min=1,max=100"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
}

// UpdateGroupRequest 更新排班组请求
type UpdateGroupRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=1,max=100"`
}

// GroupMemberRequest 添加/移除组成员或班次管理员请求
type GroupMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// GroupResponse 排班组响应
type GroupResponse struct {
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// GroupBrief 嵌套在其他响应中的组摘要
type GroupBrief struct {
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// NewGroupResponse 由模型构造组响应
func NewGroupResponse(g *model.Group) GroupResponse {
	return GroupResponse{
		GroupID:     g.GroupID,
		Name:        g.Name,
		DisplayName: g.DisplayName,
	}
}

// NewGroupBrief 由模型构造组摘要（可空）
func NewGroupBrief(g *model.Group) *GroupBrief {
	if g == nil {
		return nil
	}
	return &GroupBrief{
		GroupID:     g.GroupID,
		Name:        g.Name,
		DisplayName: g.DisplayName,
	}
}
