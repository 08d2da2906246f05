package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shift-flow/backend/internal/service"
	"shift-flow/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	groupSvc  service.GroupService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, groupSvc service.GroupService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, groupSvc: groupSvc}
}

// ExportShifts 导出组班次表（组内班次管理员）
// GET /api/v1/export/shifts?group_id=xxx&from=2024-05-01&to=2024-05-31
func (h *ExportHandler) ExportShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	groupID := c.Query("group_id")
	if groupID == "" {
		response.BadRequest(c, 10001, "group_id 不能为空")
		return
	}

	adminGroupIDs, err := h.groupSvc.AdminGroupIDs(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	isAdmin := false
	for _, id := range adminGroupIDs {
		if id == groupID {
			isAdmin = true
			break
		}
	}
	if !isAdmin {
		response.Forbidden(c, 10003, "你不是该组的班次管理员")
		return
	}

	buf, filename, err := h.exportSvc.ExportGroupShifts(
		c.Request.Context(), groupID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoShifts):
		response.NotFound(c, 16101, "该时间范围内没有班次")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.Fail(c, err)
	}
}
