package apperr

import (
	"errors"
	"net/http"
)

// ── 业务错误 ────────────────────────────────────────────────
//
// 服务层所有可预期、可恢复的失败都以 *Error 返回：
// Status 决定 HTTP 状态码，Message 是面向日志的诊断信息，
// Hint 是面向最终用户的提示文案。
// 非 *Error 的错误一律视为内部错误，由响应层兜底为 500。
// ─────────────────────────────────────────────────────────────

// Error 携带状态码与用户提示的业务错误
type Error struct {
	Status  int    // HTTP 状态码
	Message string // 诊断信息（日志）
	Hint    string // 用户提示
	Err     error  // 底层错误
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建业务错误
func New(status int, message, hint string) *Error {
	return &Error{Status: status, Message: message, Hint: hint}
}

// Wrap 包装底层错误为业务错误
func Wrap(status int, message, hint string, err error) *Error {
	return &Error{Status: status, Message: message, Hint: hint, Err: err}
}

// NotFound 404：引用的实体不存在
func NotFound(message, hint string) *Error {
	return New(http.StatusNotFound, message, hint)
}

// Forbidden 403：权限不足
func Forbidden(message, hint string) *Error {
	return New(http.StatusForbidden, message, hint)
}

// Unprocessable 422：业务规则冲突（自我换班、跨组换班、重复未决换班、
// 缺勤冲突、已完成换班的更新、时间字符串格式错误等）
func Unprocessable(message, hint string) *Error {
	return New(http.StatusUnprocessableEntity, message, hint)
}

// BadRequest 400：互斥参数组合等请求格式错误
func BadRequest(message, hint string) *Error {
	return New(http.StatusBadRequest, message, hint)
}

// As 提取业务错误；err 不是 *Error 时返回 nil
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
