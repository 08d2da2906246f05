package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/service"
	"shift-flow/backend/pkg/response"
)

// ExchangeHandler 换班模块 HTTP 处理器
type ExchangeHandler struct {
	exchangeSvc service.ExchangeService
}

// NewExchangeHandler 创建 ExchangeHandler
func NewExchangeHandler(exchangeSvc service.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchangeSvc: exchangeSvc}
}

// CreateExchange 发起换班/转让
// POST /api/v1/exchanges
func (h *ExchangeHandler) CreateExchange(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	exchange, err := h.exchangeSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, exchange)
}

// GetExchange 获取换班详情
// GET /api/v1/exchanges/:id
func (h *ExchangeHandler) GetExchange(c *gin.Context) {
	exchange, err := h.exchangeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, exchange)
}

// ListExchanges 换班列表
// GET /api/v1/exchanges?done=false
func (h *ExchangeHandler) ListExchanges(c *gin.Context) {
	var done *bool
	if v := c.Query("done"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, 10001, "done 必须为布尔值")
			return
		}
		done = &b
	}

	exchanges, err := h.exchangeSvc.List(c.Request.Context(), done)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, exchanges)
}

// UpdateParticipantApproval 参与者表态
// PUT /api/v1/exchanges/:id/approval
func (h *ExchangeHandler) UpdateParticipantApproval(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	exchange, err := h.exchangeSvc.UpdateParticipantApproval(
		c.Request.Context(), userID, c.Param("id"), req.Approved, req.Comment)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, exchange)
}

// UpdateAdminApproval 管理员表态（组内班次管理员）
// PUT /api/v1/exchanges/:id/admin-approval
func (h *ExchangeHandler) UpdateAdminApproval(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	exchange, err := h.exchangeSvc.UpdateAdminApproval(
		c.Request.Context(), userID, c.Param("id"), req.Approved, req.Comment)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, exchange)
}

// DeleteExchange 删除换班（参与者或组内班次管理员）
// DELETE /api/v1/exchanges/:id
func (h *ExchangeHandler) DeleteExchange(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	exchange, err := h.exchangeSvc.Destroy(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, exchange)
}
