package caldav

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"shift-flow/backend/config"
)

// Client 基于 HTTP 的 CalDAV 后端实现（Basic Auth）
//
// 日历 ID 为相对路径 "<owner>/<uri>"，拼接在
// {base_url}/calendars/ 之下，兼容 Nextcloud/sabre 风格的服务端。
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

var _ Backend = (*Client)(nil)

// NewClient 创建 CalDAV 客户端
func NewClient(cfg *config.CalDAVConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) calendarURL(calendarID string) string {
	return c.baseURL + "/calendars/" + strings.Trim(calendarID, "/") + "/"
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body string) (*http.Response, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.http.Do(req)
}

// ── PROPFIND 响应结构 ──

type multistatus struct {
	XMLName   xml.Name   `xml:"DAV: multistatus"`
	Responses []propstat `xml:"response"`
}

type propstat struct {
	Href  string `xml:"href"`
	Props []struct {
		Prop struct {
			DisplayName          string   `xml:"displayname"`
			OwnerDisplayName     string   `xml:"owner-display-name"`
			CalendarData         string   `xml:"calendar-data"`
			ResourceType         resource `xml:"resourcetype"`
			SupportedComponentRE struct{} `xml:"supported-calendar-component-set"`
		} `xml:"prop"`
		Status string `xml:"status"`
	} `xml:"propstat"`
}

type resource struct {
	Calendar *struct{} `xml:"calendar"`
}

const propfindCalendarBody = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:" xmlns:oc="http://owncloud.org/ns">
  <d:prop>
    <d:displayname/>
    <d:resourcetype/>
    <oc:owner-display-name/>
  </d:prop>
</d:propfind>`

// GetCalendarByID PROPFIND Depth:0 获取日历元信息
func (c *Client) GetCalendarByID(ctx context.Context, id string) (*Calendar, error) {
	if id == "" {
		return nil, ErrCalendarNotFound
	}
	resp, err := c.do(ctx, "PROPFIND", c.calendarURL(id), map[string]string{
		"Depth":        "0",
		"Content-Type": "application/xml; charset=utf-8",
	}, propfindCalendarBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCalendarNotFound
	}
	if resp.StatusCode != http.StatusMultiStatus {
		return nil, fmt.Errorf("PROPFIND 日历失败: HTTP %d", resp.StatusCode)
	}

	var ms multistatus
	if err := xml.NewDecoder(resp.Body).Decode(&ms); err != nil {
		return nil, fmt.Errorf("解析 PROPFIND 响应失败: %w", err)
	}
	if len(ms.Responses) == 0 {
		return nil, ErrCalendarNotFound
	}

	owner, uri := splitCalendarID(id)
	cal := &Calendar{ID: strings.Trim(id, "/"), URI: uri, OwnerUserID: owner}
	for _, ps := range ms.Responses[0].Props {
		if ps.Prop.DisplayName != "" {
			cal.DisplayName = ps.Prop.DisplayName
		}
		if ps.Prop.OwnerDisplayName != "" {
			cal.OwnerDisplayName = ps.Prop.OwnerDisplayName
		}
	}
	return cal, nil
}

// GetPersonalCalendar 获取用户的个人默认日历
func (c *Client) GetPersonalCalendar(ctx context.Context, userID string) (*Calendar, error) {
	return c.GetCalendarByID(ctx, userID+"/"+PersonalCalendarURI)
}

// ListCalendars PROPFIND Depth:1 列出用户名下所有日历
func (c *Client) ListCalendars(ctx context.Context, userID string) ([]Calendar, error) {
	url := c.baseURL + "/calendars/" + userID + "/"
	resp, err := c.do(ctx, "PROPFIND", url, map[string]string{
		"Depth":        "1",
		"Content-Type": "application/xml; charset=utf-8",
	}, propfindCalendarBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusMultiStatus {
		return nil, fmt.Errorf("PROPFIND 日历列表失败: HTTP %d", resp.StatusCode)
	}

	var ms multistatus
	if err := xml.NewDecoder(resp.Body).Decode(&ms); err != nil {
		return nil, fmt.Errorf("解析 PROPFIND 响应失败: %w", err)
	}

	var calendars []Calendar
	for _, r := range ms.Responses {
		uri := strings.Trim(strings.TrimPrefix(r.Href, "/calendars/"+userID), "/")
		if uri == "" { // 集合自身
			continue
		}
		cal := Calendar{ID: userID + "/" + uri, URI: uri, OwnerUserID: userID}
		isCalendar := false
		for _, ps := range r.Props {
			if ps.Prop.ResourceType.Calendar != nil {
				isCalendar = true
			}
			if ps.Prop.DisplayName != "" {
				cal.DisplayName = ps.Prop.DisplayName
			}
			if ps.Prop.OwnerDisplayName != "" {
				cal.OwnerDisplayName = ps.Prop.OwnerDisplayName
			}
		}
		if isCalendar {
			calendars = append(calendars, cal)
		}
	}
	return calendars, nil
}

// GetObject GET 日历对象；404 时返回 (nil, nil)
func (c *Client) GetObject(ctx context.Context, calendarID, objectURI string) (*Object, error) {
	resp, err := c.do(ctx, http.MethodGet, c.calendarURL(calendarID)+objectURI, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("获取日历对象失败: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return &Object{URI: objectURI, Data: string(data)}, nil
}

// CreateObject PUT 新建对象（If-None-Match 防止覆盖已有对象）
func (c *Client) CreateObject(ctx context.Context, calendarID, objectURI, data string) error {
	return c.put(ctx, calendarID, objectURI, data, map[string]string{"If-None-Match": "*"})
}

// UpdateObject PUT 覆盖已有对象
func (c *Client) UpdateObject(ctx context.Context, calendarID, objectURI, data string) error {
	return c.put(ctx, calendarID, objectURI, data, nil)
}

func (c *Client) put(ctx context.Context, calendarID, objectURI, data string, extra map[string]string) error {
	headers := map[string]string{"Content-Type": "text/calendar; charset=utf-8"}
	for k, v := range extra {
		headers[k] = v
	}
	resp, err := c.do(ctx, http.MethodPut, c.calendarURL(calendarID)+objectURI, headers, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("写入日历对象失败: HTTP %d", resp.StatusCode)
	}
	return nil
}

// DeleteObject 永久删除对象（跳过服务端回收站）
func (c *Client) DeleteObject(ctx context.Context, calendarID, objectURI string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.calendarURL(calendarID)+objectURI, map[string]string{
		"X-No-Trashbin": "1",
	}, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("删除日历对象失败: HTTP %d", resp.StatusCode)
	}
	return nil
}

// RestoreObject MOVE 已删除对象回其原始 URI
// 已删除对象的 URI 带 "-deleted" 后缀，恢复即去掉后缀
func (c *Client) RestoreObject(ctx context.Context, calendarID, deletedURI string) error {
	restored := strings.Replace(deletedURI, "-deleted.ics", ".ics", 1)
	resp, err := c.do(ctx, "MOVE", c.calendarURL(calendarID)+deletedURI, map[string]string{
		"Destination": c.calendarURL(calendarID) + restored,
		"Overwrite":   "T",
	}, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("恢复日历对象失败: HTTP %d", resp.StatusCode)
	}
	return nil
}

const calendarQueryBody = `<?xml version="1.0" encoding="utf-8"?>
<c:calendar-query xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:prop><c:calendar-data/></d:prop>
  <c:filter>
    <c:comp-filter name="VCALENDAR">
      <c:comp-filter name="VEVENT">
        <c:time-range start="%s" end="%s"/>
      </c:comp-filter>
    </c:comp-filter>
  </c:filter>
</c:calendar-query>`

// Search REPORT calendar-query 搜索时间窗口内的事件
func (c *Client) Search(ctx context.Context, calendarID string, start, end time.Time, limit int) ([]EventSummary, error) {
	body := fmt.Sprintf(calendarQueryBody,
		start.UTC().Format("20060102T150405Z"),
		end.UTC().Format("20060102T150405Z"),
	)
	resp, err := c.do(ctx, "REPORT", c.calendarURL(calendarID), map[string]string{
		"Depth":        "1",
		"Content-Type": "application/xml; charset=utf-8",
	}, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMultiStatus {
		return nil, fmt.Errorf("REPORT 搜索失败: HTTP %d", resp.StatusCode)
	}

	var ms multistatus
	if err := xml.NewDecoder(resp.Body).Decode(&ms); err != nil {
		return nil, fmt.Errorf("解析 REPORT 响应失败: %w", err)
	}

	var events []EventSummary
	for _, r := range ms.Responses {
		for _, ps := range r.Props {
			if ps.Prop.CalendarData == "" {
				continue
			}
			events = append(events, parseEventSummaries(ps.Prop.CalendarData)...)
			if limit > 0 && len(events) >= limit {
				return events[:limit], nil
			}
		}
	}
	return events, nil
}

// parseEventSummaries 从 iCalendar 原文提取 VEVENT 摘要
func parseEventSummaries(data string) []EventSummary {
	cal, err := ics.ParseCalendar(bytes.NewReader([]byte(data)))
	if err != nil {
		return nil
	}
	var events []EventSummary
	for _, evt := range cal.Events() {
		e := EventSummary{}
		if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
			e.Summary = p.Value
		}
		if start, err := evt.GetStartAt(); err == nil {
			e.Start = start
		}
		if end, err := evt.GetEndAt(); err == nil {
			e.End = end
		}
		events = append(events, e)
	}
	return events
}

func splitCalendarID(id string) (owner, uri string) {
	parts := strings.SplitN(strings.Trim(id, "/"), "/", 2)
	owner = parts[0]
	if len(parts) == 2 {
		uri = parts[1]
	}
	return owner, uri
}
