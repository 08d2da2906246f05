package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shift-flow/backend/pkg/apperr"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// Fail 按业务错误映射响应：Hint 给用户，Message 进 details。
// 非业务错误兜底为 500，不向外泄露内部信息。
func Fail(c *gin.Context, err error) {
	if e := apperr.As(err); e != nil {
		ErrorWithDetails(c, e.Status, codeForStatus(e.Status), e.Hint, e.Message)
		return
	}
	InternalError(c)
}

func codeForStatus(status int) int {
	switch status {
	case http.StatusBadRequest:
		return 10001
	case http.StatusUnauthorized:
		return 10002
	case http.StatusForbidden:
		return 10003
	case http.StatusNotFound:
		return 10004
	case http.StatusUnprocessableEntity:
		return 10005
	default:
		return 50000
	}
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
