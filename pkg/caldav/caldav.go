package caldav

import (
	"context"
	"errors"
	"time"
)

// ── 日历后端访问接口 ────────────────────────────────────────
//
// 同步引擎只依赖该接口；HTTP CalDAV 实现见 client.go，
// 测试中以内存实现替代。
// ─────────────────────────────────────────────────────────────

// ErrCalendarNotFound 日历不存在
var ErrCalendarNotFound = errors.New("日历不存在")

// PersonalCalendarURI 个人默认日历的 URI
const PersonalCalendarURI = "personal"

// Calendar 日历元信息
type Calendar struct {
	ID               string `json:"id"` // 相对路径形式 "<owner>/<uri>"
	URI              string `json:"uri"`
	OwnerUserID      string `json:"owner_user_id"`
	DisplayName      string `json:"display_name"`
	OwnerDisplayName string `json:"owner_display_name"`
}

// Object 日历对象（一个 VEVENT 的 iCalendar 原文）
type Object struct {
	URI  string
	Data string
}

// EventSummary 搜索结果中的事件摘要
type EventSummary struct {
	Summary string
	Start   time.Time
	End     time.Time
}

// Backend 日历后端
//
// GetObject 在对象不存在时返回 (nil, nil) 而非错误；
// DeleteObject 为永久删除（不进回收站）。
type Backend interface {
	GetCalendarByID(ctx context.Context, id string) (*Calendar, error)
	GetPersonalCalendar(ctx context.Context, userID string) (*Calendar, error)
	ListCalendars(ctx context.Context, userID string) ([]Calendar, error)

	GetObject(ctx context.Context, calendarID, objectURI string) (*Object, error)
	CreateObject(ctx context.Context, calendarID, objectURI, data string) error
	UpdateObject(ctx context.Context, calendarID, objectURI, data string) error
	DeleteObject(ctx context.Context, calendarID, objectURI string) error
	// RestoreObject 把处于已删除状态的对象恢复到其原始 URI
	RestoreObject(ctx context.Context, calendarID, deletedURI string) error

	// Search 返回时间窗口内的事件摘要
	Search(ctx context.Context, calendarID string, start, end time.Time, limit int) ([]EventSummary, error)
}
