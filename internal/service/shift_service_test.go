package service

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"shift-flow/backend/config"
	"shift-flow/backend/internal/dto"
	"shift-flow/backend/internal/model"
)

// ── 测试脚手架 ──

type shiftFixture struct {
	store  *memStore
	shifts ShiftService
	export ExportService
}

func newShiftFixture() *shiftFixture {
	store := newMemStore()
	backend := newMemBackend()

	store.addGroup("group-ops", "ops", "运维组")
	store.addUser("user-alice", "alice", "Alice Wang")
	store.addUser("user-bob", "bob", "Bob Li")
	store.addUser("user-carol", "carol", "Carol Zhao")
	store.addUser("user-dave", "dave", "Dave Chen")
	store.addMember("group-ops", "user-alice")
	store.addMember("group-ops", "user-bob")
	store.addShiftAdmin("group-ops", "user-carol")

	store.addShiftType("type-day", "group-ops", "白班", "by_day")
	inactive := store.addShiftType("type-off", "group-ops", "停用班", "by_day")
	inactive.Active = false

	settings := NewSettingsService(&config.Config{
		Exchange: config.ExchangeConfig{ApprovalType: ApprovalTypeAll},
		Calendar: config.CalendarConfig{IgnoreAbsenceForByWeek: true},
	})
	logger := zap.NewNop()
	repo := store.repo()
	calendar := NewCalendarService(backend, settings, repo, logger)

	return &shiftFixture{
		store:  store,
		shifts: NewShiftService(repo, settings, calendar, logger),
		export: NewExportService(repo, logger),
	}
}

// ── 用例 ──

func TestShiftCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		actor  string
		req    dto.CreateShiftRequest
		status int
	}{
		{
			name:  "班次类型不存在",
			actor: "user-carol",
			req: dto.CreateShiftRequest{
				UserID: "user-alice", ShiftTypeID: "type-nope",
				Start: "2024-05-06T08:00:00.000Z", End: "2024-05-06T16:00:00.000Z",
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:  "操作者不是班次管理员",
			actor: "user-alice",
			req: dto.CreateShiftRequest{
				UserID: "user-alice", ShiftTypeID: "type-day",
				Start: "2024-05-06T08:00:00.000Z", End: "2024-05-06T16:00:00.000Z",
			},
			status: http.StatusForbidden,
		},
		{
			name:  "归属人不是组成员",
			actor: "user-carol",
			req: dto.CreateShiftRequest{
				UserID: "user-dave", ShiftTypeID: "type-day",
				Start: "2024-05-06T08:00:00.000Z", End: "2024-05-06T16:00:00.000Z",
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:  "班次类型已停用",
			actor: "user-carol",
			req: dto.CreateShiftRequest{
				UserID: "user-alice", ShiftTypeID: "type-off",
				Start: "2024-05-06T08:00:00.000Z", End: "2024-05-06T16:00:00.000Z",
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:  "时间格式错误",
			actor: "user-carol",
			req: dto.CreateShiftRequest{
				UserID: "user-alice", ShiftTypeID: "type-day",
				Start: "2024/05/06 08:00", End: "2024-05-06T16:00:00.000Z",
			},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newShiftFixture()
			req := tc.req
			_, err := f.shifts.Create(context.Background(), tc.actor, &req)
			assertAppStatus(t, err, tc.status)
		})
	}
}

func TestShiftCreateNormalizesTime(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()

	resp, err := f.shifts.Create(ctx, "user-carol", &dto.CreateShiftRequest{
		UserID:      "user-alice",
		ShiftTypeID: "type-day",
		Start:       "2024-05-06T10:00:00+02:00[Europe/Berlin]",
		End:         "2024-05-06T18:00:00+02:00[Europe/Berlin]",
	})
	if err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}

	// 本地化时区归一为 UTC 后落库
	if resp.Start != "2024-05-06T08:00:00+00:00[UTC]" {
		t.Errorf("起始时间应归一为 UTC，得到 %s", resp.Start)
	}
	if resp.End != "2024-05-06T16:00:00+00:00[UTC]" {
		t.Errorf("结束时间应归一为 UTC，得到 %s", resp.End)
	}
	if got := len(f.store.changes); got != 1 {
		t.Errorf("新建班次应记录 1 条日历变更，得到 %d", got)
	}
}

func TestShiftListDateFilters(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()

	f.store.addShift("shift-1", "user-alice", "type-day",
		"2024-05-06T08:00:00.000Z", "2024-05-06T16:00:00.000Z")
	f.store.addShift("shift-2", "user-bob", "type-day",
		"2024-05-07T08:00:00.000Z", "2024-05-07T16:00:00.000Z")
	f.store.addShift("shift-3", "user-alice", "type-day",
		"2024-05-13T08:00:00.000Z", "2024-05-13T16:00:00.000Z")

	_, err := f.shifts.List(ctx, &dto.ListShiftsQuery{
		CalendarDate: "2024-05-06",
		WeekDate:     "2024-05-06",
	})
	assertAppStatus(t, err, http.StatusUnprocessableEntity)

	out, err := f.shifts.List(ctx, &dto.ListShiftsQuery{CalendarDate: "2024-05-06"})
	if err != nil {
		t.Fatalf("按日查询失败: %v", err)
	}
	if len(out) != 1 || out[0].ShiftID != "shift-1" {
		t.Errorf("按日过滤应只命中当天班次，得到 %+v", out)
	}

	// week_date 为周三，所在周为 5 月 6 日（周一）至 12 日
	out, err = f.shifts.List(ctx, &dto.ListShiftsQuery{WeekDate: "2024-05-08"})
	if err != nil {
		t.Fatalf("按周查询失败: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("按周过滤应命中 2 个班次，得到 %d", len(out))
	}
	for _, s := range out {
		if s.ShiftID == "shift-3" {
			t.Error("下一周的班次不应被命中")
		}
	}

	out, err = f.shifts.List(ctx, &dto.ListShiftsQuery{UserID: "user-bob"})
	if err != nil {
		t.Fatalf("按归属人查询失败: %v", err)
	}
	if len(out) != 1 || out[0].ShiftID != "shift-2" {
		t.Errorf("按归属人过滤应只命中 bob 的班次，得到 %+v", out)
	}
}

func TestShiftMove(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()
	f.store.addShift("shift-1", "user-alice", "type-day",
		"2024-05-06T08:00:00.000Z", "2024-05-06T16:00:00.000Z")

	// 非管理员不能移交
	_, err := f.shifts.Move(ctx, "user-alice", "shift-1", &dto.MoveShiftRequest{UserID: "user-bob"})
	assertAppStatus(t, err, http.StatusForbidden)

	resp, err := f.shifts.Move(ctx, "user-carol", "shift-1", &dto.MoveShiftRequest{UserID: "user-bob"})
	if err != nil {
		t.Fatalf("移交失败: %v", err)
	}
	if resp.User == nil || resp.User.UserID != "user-bob" {
		t.Errorf("移交后归属应为 bob，得到 %+v", resp.User)
	}
	// 旧归属 + 新归属各一条
	if got := len(f.store.changes); got != 2 {
		t.Errorf("移交应记录 2 条日历变更，得到 %d", got)
	}
}

func TestShiftMoveBlockedByOpenExchange(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()
	f.store.addShift("shift-1", "user-alice", "type-day",
		"2024-05-06T08:00:00.000Z", "2024-05-06T16:00:00.000Z")
	f.store.exchanges["x1"] = &model.ShiftExchange{
		ExchangeID: "x1",
		ShiftAID:   "shift-1",
	}

	_, err := f.shifts.Move(ctx, "user-carol", "shift-1", &dto.MoveShiftRequest{UserID: "user-bob"})
	assertAppStatus(t, err, http.StatusUnprocessableEntity)
}

func TestShiftDelete(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()
	f.store.addShift("shift-1", "user-alice", "type-day",
		"2024-05-06T08:00:00.000Z", "2024-05-06T16:00:00.000Z")

	_, err := f.shifts.Delete(ctx, "user-alice", "shift-1")
	assertAppStatus(t, err, http.StatusForbidden)

	resp, err := f.shifts.Delete(ctx, "user-carol", "shift-1")
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if resp.ShiftID != "shift-1" {
		t.Errorf("响应应为被删除班次的快照，得到 %s", resp.ShiftID)
	}
	if _, ok := f.store.shifts["shift-1"]; ok {
		t.Error("班次应已删除")
	}
	// 变更引用已删除的班次，供同步引擎移除日历对象
	if got := len(f.store.changes); got != 1 {
		t.Errorf("删除应记录 1 条日历变更，得到 %d", got)
	}
}

func TestShiftDeleteCascadesExchanges(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()
	f.store.addShift("shift-1", "user-alice", "type-day",
		"2024-05-06T08:00:00.000Z", "2024-05-06T16:00:00.000Z")
	f.store.addShift("shift-2", "user-bob", "type-day",
		"2024-05-07T08:00:00.000Z", "2024-05-07T16:00:00.000Z")

	// 历史换班：已终结，shift-1 在 B 侧被引用
	for _, id := range []string{"a1", "a2", "a3"} {
		f.store.approvals[id] = &model.ShiftExchangeApproval{ApprovalID: id}
	}
	f.store.exchanges["x-done"] = &model.ShiftExchange{
		ExchangeID:      "x-done",
		ShiftAID:        "shift-2",
		ShiftBID:        strPtr("shift-1"),
		Done:            true,
		Approved:        boolPtr(true),
		UserAApprovalID: "a1",
		UserBApprovalID: "a2",
		AdminApprovalID: "a3",
	}

	if _, err := f.shifts.Delete(ctx, "user-carol", "shift-1"); err != nil {
		t.Fatalf("删除被历史换班引用的班次应成功: %v", err)
	}
	if _, ok := f.store.shifts["shift-1"]; ok {
		t.Error("班次应已删除")
	}
	if _, ok := f.store.exchanges["x-done"]; ok {
		t.Error("引用该班次的换班应随之删除")
	}
	for _, id := range []string{"a1", "a2", "a3"} {
		if _, ok := f.store.approvals[id]; ok {
			t.Errorf("审批记录 %s 应随换班级联删除", id)
		}
	}
	if _, ok := f.store.shifts["shift-2"]; !ok {
		t.Error("换班另一侧的班次不应被删除")
	}
}

func TestExportGroupShifts(t *testing.T) {
	f := newShiftFixture()
	ctx := context.Background()

	_, _, err := f.export.ExportGroupShifts(ctx, "group-ops", "", "")
	if err != ErrExportNoShifts {
		t.Fatalf("空结果应返回 ErrExportNoShifts，得到 %v", err)
	}

	f.store.addShift("shift-1", "user-alice", "type-day",
		"2024-05-06T08:00:00.000Z", "2024-05-06T16:00:00.000Z")

	buf, filename, err := f.export.ExportGroupShifts(ctx, "group-ops", "2024-05-01", "2024-05-31")
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("导出内容不应为空")
	}
	if filename != "班次表_ops.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	_, _, err = f.export.ExportGroupShifts(ctx, "group-nope", "", "")
	assertAppStatus(t, err, http.StatusNotFound)
}
