package service

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"shift-flow/backend/config"
	"shift-flow/backend/internal/dto"
	"shift-flow/backend/pkg/apperr"
)

// ── 测试脚手架 ──

type exchangeFixture struct {
	store    *memStore
	backend  *memBackend
	settings SettingsService
	exchange ExchangeService
}

// newExchangeFixture 构造换班测试环境：
// 运维组内 alice、bob 为普通成员，carol 为班次管理员；
// dave 不在任何组内；shift-a/shift-a2 归 alice，shift-b 归 bob；
// group-2 内另有一个归 bob 的 shift-x 用于跨组用例。
func newExchangeFixture(approvalType string) *exchangeFixture {
	store := newMemStore()
	backend := newMemBackend()

	store.addGroup("group-ops", "ops", "运维组")
	store.addGroup("group-2", "dev", "研发组")
	store.addUser("user-alice", "alice", "Alice Wang")
	store.addUser("user-bob", "bob", "Bob Li")
	store.addUser("user-carol", "carol", "Carol Zhao")
	store.addUser("user-dave", "dave", "Dave Chen")
	store.addMember("group-ops", "user-alice")
	store.addMember("group-ops", "user-bob")
	store.addMember("group-ops", "user-carol")
	store.addMember("group-2", "user-bob")
	store.addShiftAdmin("group-ops", "user-carol")
	store.addShiftAdmin("group-2", "user-carol")

	store.addShiftType("type-day", "group-ops", "白班", "by_day")
	store.addShiftType("type-day2", "group-2", "白班", "by_day")
	store.addShift("shift-a", "user-alice", "type-day",
		"2024-05-06T08:00:00.000Z", "2024-05-06T16:00:00.000Z")
	store.addShift("shift-a2", "user-alice", "type-day",
		"2024-05-08T08:00:00.000Z", "2024-05-08T16:00:00.000Z")
	store.addShift("shift-b", "user-bob", "type-day",
		"2024-05-07T08:00:00.000Z", "2024-05-07T16:00:00.000Z")
	store.addShift("shift-x", "user-bob", "type-day2",
		"2024-05-09T08:00:00.000Z", "2024-05-09T16:00:00.000Z")

	settings := NewSettingsService(&config.Config{
		Exchange: config.ExchangeConfig{ApprovalType: approvalType},
		Calendar: config.CalendarConfig{IgnoreAbsenceForByWeek: true},
	})
	logger := zap.NewNop()
	repo := store.repo()
	calendar := NewCalendarService(backend, settings, repo, logger)

	return &exchangeFixture{
		store:    store,
		backend:  backend,
		settings: settings,
		exchange: NewExchangeService(repo, settings, calendar, logger),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func assertAppStatus(t *testing.T, err error, want int) {
	t.Helper()
	e := apperr.As(err)
	if e == nil {
		t.Fatalf("期望状态码 %d 的业务错误，得到 %v", want, err)
	}
	if e.Status != want {
		t.Fatalf("期望状态码 %d，得到 %d（%s）", want, e.Status, e.Message)
	}
}

// ── 用例 ──

func TestExchangeSwapUsersPolicy(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeUsers)
	ctx := context.Background()

	resp, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
		ShiftAID: "shift-a",
		ShiftBID: strPtr("shift-b"),
	})
	if err != nil {
		t.Fatalf("发起互换失败: %v", err)
	}

	// 发起者席位视为创建即同意，另一侧未决
	if resp.Done {
		t.Fatal("仅单方表态不应终结")
	}
	if resp.Approved != nil {
		t.Fatalf("未终结时 approved 必须为 nil，得到 %v", *resp.Approved)
	}
	if resp.UserAApproval.Approved == nil || !*resp.UserAApproval.Approved {
		t.Fatal("发起者席位应预置为同意")
	}
	if resp.UserBApproval.Approved != nil {
		t.Fatal("对方席位不应被预置")
	}

	resp, err = f.exchange.UpdateParticipantApproval(ctx, "user-bob", resp.ExchangeID, boolPtr(true), nil)
	if err != nil {
		t.Fatalf("bob 表态失败: %v", err)
	}
	if !resp.Done || resp.Approved == nil || !*resp.Approved {
		t.Fatalf("双方同意后应终结为通过，得到 done=%v approved=%v", resp.Done, resp.Approved)
	}

	if got := f.store.shifts["shift-a"].UserID; got != "user-bob" {
		t.Errorf("shift-a 应归 bob，得到 %s", got)
	}
	if got := f.store.shifts["shift-b"].UserID; got != "user-alice" {
		t.Errorf("shift-b 应归 alice，得到 %s", got)
	}

	// 每个班次各两条变更：旧归属 + 新归属
	if got := len(f.store.changes); got != 4 {
		t.Errorf("互换应记录 4 条日历变更，得到 %d", got)
	}
}

func TestExchangeCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		actor  string
		req    dto.CreateExchangeRequest
		status int
	}{
		{
			name:  "互换与转让同时指定",
			actor: "user-alice",
			req: dto.CreateExchangeRequest{
				ShiftAID:         "shift-a",
				ShiftBID:         strPtr("shift-b"),
				TransferToUserID: strPtr("user-bob"),
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "互换与转让都未指定",
			actor:  "user-alice",
			req:    dto.CreateExchangeRequest{ShiftAID: "shift-a"},
			status: http.StatusBadRequest,
		},
		{
			name:   "班次不存在",
			actor:  "user-alice",
			req:    dto.CreateExchangeRequest{ShiftAID: "shift-nope", ShiftBID: strPtr("shift-b")},
			status: http.StatusNotFound,
		},
		{
			name:   "转让目标用户不存在",
			actor:  "user-alice",
			req:    dto.CreateExchangeRequest{ShiftAID: "shift-a", TransferToUserID: strPtr("user-nope")},
			status: http.StatusNotFound,
		},
		{
			name:   "既非归属人也非管理员",
			actor:  "user-bob",
			req:    dto.CreateExchangeRequest{ShiftAID: "shift-a", TransferToUserID: strPtr("user-carol")},
			status: http.StatusForbidden,
		},
		{
			name:   "与自己互换",
			actor:  "user-alice",
			req:    dto.CreateExchangeRequest{ShiftAID: "shift-a", ShiftBID: strPtr("shift-a2")},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "跨组互换",
			actor:  "user-alice",
			req:    dto.CreateExchangeRequest{ShiftAID: "shift-a", ShiftBID: strPtr("shift-x")},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "转让给自己",
			actor:  "user-alice",
			req:    dto.CreateExchangeRequest{ShiftAID: "shift-a", TransferToUserID: strPtr("user-alice")},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "转让给组外用户",
			actor:  "user-alice",
			req:    dto.CreateExchangeRequest{ShiftAID: "shift-a", TransferToUserID: strPtr("user-dave")},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newExchangeFixture(ApprovalTypeAll)
			req := tc.req
			_, err := f.exchange.Create(context.Background(), tc.actor, &req)
			assertAppStatus(t, err, tc.status)
		})
	}
}

func TestExchangeDuplicateOpenRejected(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeAll)
	ctx := context.Background()

	if _, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
		ShiftAID: "shift-a",
		ShiftBID: strPtr("shift-b"),
	}); err != nil {
		t.Fatalf("发起互换失败: %v", err)
	}

	// 同一班次（A 侧）再发起转让
	_, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
		ShiftAID:         "shift-a",
		TransferToUserID: strPtr("user-carol"),
	})
	assertAppStatus(t, err, http.StatusUnprocessableEntity)

	// 同一班次（B 侧）作为新互换的发起方
	_, err = f.exchange.Create(ctx, "user-bob", &dto.CreateExchangeRequest{
		ShiftAID: "shift-b",
		ShiftBID: strPtr("shift-a2"),
	})
	assertAppStatus(t, err, http.StatusUnprocessableEntity)
}

func TestExchangeAdminPolicyInstantDone(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeAdmin)
	ctx := context.Background()

	// carol 是两个组的班次管理员，admin 席位创建即同意，
	// admin 策略下这就是全部所需席位
	resp, err := f.exchange.Create(ctx, "user-carol", &dto.CreateExchangeRequest{
		ShiftAID: "shift-a",
		ShiftBID: strPtr("shift-b"),
	})
	if err != nil {
		t.Fatalf("管理员发起互换失败: %v", err)
	}
	if !resp.Done || resp.Approved == nil || !*resp.Approved {
		t.Fatalf("admin 策略下管理员发起应立即终结为通过，得到 done=%v approved=%v",
			resp.Done, resp.Approved)
	}
	if resp.AdminApproval.UserID == nil || *resp.AdminApproval.UserID != "user-carol" {
		t.Error("admin 席位应记录表态人 carol")
	}
	if resp.UserAApproval.Approved != nil || resp.UserBApproval.Approved != nil {
		t.Error("参与者席位不应被预置")
	}

	if got := f.store.shifts["shift-a"].UserID; got != "user-bob" {
		t.Errorf("shift-a 应归 bob，得到 %s", got)
	}
	if got := len(f.store.changes); got != 4 {
		t.Errorf("互换应记录 4 条日历变更，得到 %d", got)
	}
}

func TestExchangeTransferApproved(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeUsers)
	ctx := context.Background()

	resp, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
		ShiftAID:         "shift-a",
		TransferToUserID: strPtr("user-bob"),
	})
	if err != nil {
		t.Fatalf("发起转让失败: %v", err)
	}

	resp, err = f.exchange.UpdateParticipantApproval(ctx, "user-bob", resp.ExchangeID, boolPtr(true), nil)
	if err != nil {
		t.Fatalf("bob 表态失败: %v", err)
	}
	if !resp.Done || resp.Approved == nil || !*resp.Approved {
		t.Fatalf("转让应终结为通过，得到 done=%v approved=%v", resp.Done, resp.Approved)
	}
	if got := f.store.shifts["shift-a"].UserID; got != "user-bob" {
		t.Errorf("shift-a 应归 bob，得到 %s", got)
	}
	// 单个班次的转让：旧归属 + 新归属各一条
	if got := len(f.store.changes); got != 2 {
		t.Errorf("转让应记录 2 条日历变更，得到 %d", got)
	}
}

func TestExchangeTransferRejected(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeUsers)
	ctx := context.Background()

	resp, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
		ShiftAID:         "shift-a",
		TransferToUserID: strPtr("user-bob"),
	})
	if err != nil {
		t.Fatalf("发起转让失败: %v", err)
	}

	resp, err = f.exchange.UpdateParticipantApproval(ctx, "user-bob", resp.ExchangeID, boolPtr(false), nil)
	if err != nil {
		t.Fatalf("bob 表态失败: %v", err)
	}
	if !resp.Done {
		t.Fatal("任一所需席位拒绝即应终结")
	}
	if resp.Approved == nil || *resp.Approved {
		t.Fatal("被拒绝的换班 approved 应为 false")
	}
	if got := f.store.shifts["shift-a"].UserID; got != "user-alice" {
		t.Errorf("被拒绝后归属不应变化，得到 %s", got)
	}
	if got := len(f.store.changes); got != 0 {
		t.Errorf("被拒绝的换班不应记录日历变更，得到 %d", got)
	}
}

func TestExchangeUpdateAfterDoneRejected(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeAdmin)
	ctx := context.Background()

	resp, err := f.exchange.Create(ctx, "user-carol", &dto.CreateExchangeRequest{
		ShiftAID: "shift-a",
		ShiftBID: strPtr("shift-b"),
	})
	if err != nil {
		t.Fatalf("发起互换失败: %v", err)
	}

	_, err = f.exchange.UpdateAdminApproval(ctx, "user-carol", resp.ExchangeID, boolPtr(false), nil)
	assertAppStatus(t, err, http.StatusUnprocessableEntity)
}

func TestExchangeApprovalAuthorization(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeAll)
	ctx := context.Background()

	resp, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
		ShiftAID: "shift-a",
		ShiftBID: strPtr("shift-b"),
	})
	if err != nil {
		t.Fatalf("发起互换失败: %v", err)
	}

	// 局外人既不能以参与者身份也不能以管理员身份表态
	_, err = f.exchange.UpdateParticipantApproval(ctx, "user-dave", resp.ExchangeID, boolPtr(true), nil)
	assertAppStatus(t, err, http.StatusForbidden)
	_, err = f.exchange.UpdateAdminApproval(ctx, "user-dave", resp.ExchangeID, boolPtr(true), nil)
	assertAppStatus(t, err, http.StatusForbidden)

	// 管理员表态记录表态人，但其余席位未决时不终结
	resp, err = f.exchange.UpdateAdminApproval(ctx, "user-carol", resp.ExchangeID, boolPtr(true), nil)
	if err != nil {
		t.Fatalf("carol 管理员表态失败: %v", err)
	}
	if resp.Done {
		t.Fatal("bob 未表态时不应终结")
	}
	if resp.AdminApproval.UserID == nil || *resp.AdminApproval.UserID != "user-carol" {
		t.Error("admin 席位应记录表态人 carol")
	}

	resp, err = f.exchange.UpdateParticipantApproval(ctx, "user-bob", resp.ExchangeID, boolPtr(true), nil)
	if err != nil {
		t.Fatalf("bob 表态失败: %v", err)
	}
	if !resp.Done || resp.Approved == nil || !*resp.Approved {
		t.Fatalf("全部席位同意后应终结为通过，得到 done=%v approved=%v", resp.Done, resp.Approved)
	}
}

// 审批策略在每次评估时读取当前值：未决换班在策略切换后按新策略终结。
func TestExchangeApprovalResetToPending(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeAll)
	ctx := context.Background()

	resp, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
		ShiftAID: "shift-a",
		ShiftBID: strPtr("shift-b"),
	})
	if err != nil {
		t.Fatalf("发起互换失败: %v", err)
	}

	resp, err = f.exchange.UpdateParticipantApproval(ctx, "user-bob", resp.ExchangeID, boolPtr(true), nil)
	if err != nil {
		t.Fatalf("bob 表态失败: %v", err)
	}
	if resp.Done {
		t.Fatal("管理员未表态前不应终结")
	}
	if resp.UserBApproval.Approved == nil || !*resp.UserBApproval.Approved {
		t.Fatal("bob 席位应为同意")
	}

	// approved 为 nil 把席位重置回未表态
	resp, err = f.exchange.UpdateParticipantApproval(ctx, "user-bob", resp.ExchangeID, nil, nil)
	if err != nil {
		t.Fatalf("撤回表态失败: %v", err)
	}
	if resp.UserBApproval.Approved != nil {
		t.Fatal("撤回后席位应回到未表态")
	}
	if resp.Done || resp.Approved != nil {
		t.Fatalf("撤回后换班不应终结，得到 done=%v approved=%v", resp.Done, resp.Approved)
	}

	// 撤回生效：其余席位全部同意也不能终结
	resp, err = f.exchange.UpdateAdminApproval(ctx, "user-carol", resp.ExchangeID, boolPtr(true), nil)
	if err != nil {
		t.Fatalf("管理员表态失败: %v", err)
	}
	if resp.Done {
		t.Fatal("bob 撤回后仅凭其余席位不应终结")
	}
}

func TestExchangePolicySwitchMidExchange(t *testing.T) {
	f := newExchangeFixture(ApprovalTypeAll)
	ctx := context.Background()

	resp, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
		ShiftAID: "shift-a",
		ShiftBID: strPtr("shift-b"),
	})
	if err != nil {
		t.Fatalf("发起互换失败: %v", err)
	}
	if resp.Done {
		t.Fatal("all 策略下单方表态不应终结")
	}

	f.settings.Update(&dto.UpdateSettingsRequest{ApprovalType: strPtr(ApprovalTypeUsers)})

	resp, err = f.exchange.UpdateParticipantApproval(ctx, "user-bob", resp.ExchangeID, boolPtr(true), nil)
	if err != nil {
		t.Fatalf("bob 表态失败: %v", err)
	}
	if !resp.Done || resp.Approved == nil || !*resp.Approved {
		t.Fatal("切换为 users 策略后双方同意即应终结，管理员席位不再参与")
	}
}

func TestExchangeDestroy(t *testing.T) {
	t.Run("参与者删除未决换班并级联审批", func(t *testing.T) {
		f := newExchangeFixture(ApprovalTypeAll)
		ctx := context.Background()

		resp, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
			ShiftAID: "shift-a",
			ShiftBID: strPtr("shift-b"),
		})
		if err != nil {
			t.Fatalf("发起互换失败: %v", err)
		}
		if got := len(f.store.approvals); got != 3 {
			t.Fatalf("应分配 3 条审批记录，得到 %d", got)
		}

		if _, err := f.exchange.Destroy(ctx, "user-bob", resp.ExchangeID); err != nil {
			t.Fatalf("参与者删除失败: %v", err)
		}
		if len(f.store.exchanges) != 0 {
			t.Error("换班记录应被删除")
		}
		if got := len(f.store.approvals); got != 0 {
			t.Errorf("审批记录应级联删除，剩余 %d", got)
		}
	})

	t.Run("局外人不能删除", func(t *testing.T) {
		f := newExchangeFixture(ApprovalTypeAll)
		ctx := context.Background()

		resp, err := f.exchange.Create(ctx, "user-alice", &dto.CreateExchangeRequest{
			ShiftAID: "shift-a",
			ShiftBID: strPtr("shift-b"),
		})
		if err != nil {
			t.Fatalf("发起互换失败: %v", err)
		}
		_, err = f.exchange.Destroy(ctx, "user-dave", resp.ExchangeID)
		assertAppStatus(t, err, http.StatusForbidden)
	})

	t.Run("已终结换班只能由管理员删除", func(t *testing.T) {
		f := newExchangeFixture(ApprovalTypeAdmin)
		ctx := context.Background()

		resp, err := f.exchange.Create(ctx, "user-carol", &dto.CreateExchangeRequest{
			ShiftAID: "shift-a",
			ShiftBID: strPtr("shift-b"),
		})
		if err != nil {
			t.Fatalf("发起互换失败: %v", err)
		}

		_, err = f.exchange.Destroy(ctx, "user-alice", resp.ExchangeID)
		assertAppStatus(t, err, http.StatusUnprocessableEntity)

		if _, err := f.exchange.Destroy(ctx, "user-carol", resp.ExchangeID); err != nil {
			t.Fatalf("管理员删除已终结换班失败: %v", err)
		}
	})
}
