package handler

import (
	"github.com/gin-gonic/gin"

	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/service"
	"shift-flow/backend/pkg/response"
)

// SettingsHandler 运行时配置模块 HTTP 处理器
type SettingsHandler struct {
	settingsSvc service.SettingsService
}

// NewSettingsHandler 创建 SettingsHandler
func NewSettingsHandler(settingsSvc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// GetSettings 读取当前运行时配置
// GET /api/v1/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	response.OK(c, h.settingsSvc.Snapshot())
}

// UpdateSettings 更新运行时配置（管理员）
// 策略在每次审批评估时读取当前值，切换会立即作用于未决换班。
// PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	response.OK(c, h.settingsSvc.Update(&req))
}
