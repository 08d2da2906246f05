package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"shift-flow/backend/internal/model"
	"shift-flow/backend/internal/repository"
	"shift-flow/backend/pkg/caldav"
)

// ── 内存版 Repository ──
//
// 服务层单测不依赖 PostgreSQL：以共享 memStore 为底座，
// 各 Repository 在读取时按外键就地解析关联（等价于 Preload）。

type memStore struct {
	users      map[string]*model.User
	groups     map[string]*model.Group
	members    map[string]map[string]bool
	admins     map[string]map[string]bool
	shiftTypes map[string]*model.ShiftType
	shifts     map[string]*model.Shift
	exchanges  map[string]*model.ShiftExchange
	approvals  map[string]*model.ShiftExchangeApproval
	changes    map[string]*model.CalendarChange
	changeIDs  []string // 保持插入顺序
	seq        int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*model.User{},
		groups:     map[string]*model.Group{},
		members:    map[string]map[string]bool{},
		admins:     map[string]map[string]bool{},
		shiftTypes: map[string]*model.ShiftType{},
		shifts:     map[string]*model.Shift{},
		exchanges:  map[string]*model.ShiftExchange{},
		approvals:  map[string]*model.ShiftExchangeApproval{},
		changes:    map[string]*model.CalendarChange{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) repo() *repository.Repository {
	return &repository.Repository{
		User:           &memUserRepo{s},
		Group:          &memGroupRepo{s},
		ShiftType:      &memShiftTypeRepo{s},
		Shift:          &memShiftRepo{s},
		Exchange:       &memExchangeRepo{s},
		Approval:       &memApprovalRepo{s},
		CalendarChange: &memCalendarChangeRepo{s},
	}
}

// ── 种子数据辅助 ──

func (s *memStore) addUser(id, username, displayName string) *model.User {
	u := &model.User{UserID: id, Username: username, DisplayName: displayName, Role: model.RoleMember}
	s.users[id] = u
	return u
}

func (s *memStore) addGroup(id, name, displayName string) *model.Group {
	g := &model.Group{GroupID: id, Name: name, DisplayName: displayName}
	s.groups[id] = g
	s.members[id] = map[string]bool{}
	s.admins[id] = map[string]bool{}
	return g
}

func (s *memStore) addMember(groupID, userID string)     { s.members[groupID][userID] = true }
func (s *memStore) addShiftAdmin(groupID, userID string) { s.admins[groupID][userID] = true }

func (s *memStore) addShiftType(id, groupID, name, weeklyType string) *model.ShiftType {
	t := &model.ShiftType{
		ShiftTypeID: id,
		GroupID:     groupID,
		Name:        name,
		Active:      true,
		Repetition:  model.JSONMap{"weekly_type": weeklyType},
		Caldav:      model.JSONMap{},
	}
	s.shiftTypes[id] = t
	return t
}

func (s *memStore) addShift(id, userID, shiftTypeID, start, end string) *model.Shift {
	sh := &model.Shift{
		ShiftID:     id,
		UserID:      userID,
		ShiftTypeID: shiftTypeID,
		StartValue:  start,
		EndValue:    end,
	}
	s.shifts[id] = sh
	return sh
}

// ── 关联解析 ──

func (s *memStore) resolveShift(id string) *model.Shift {
	src, ok := s.shifts[id]
	if !ok {
		return nil
	}
	shift := *src
	if u, ok := s.users[shift.UserID]; ok {
		uc := *u
		shift.User = &uc
	}
	if t, ok := s.shiftTypes[shift.ShiftTypeID]; ok {
		tc := *t
		if g, ok := s.groups[tc.GroupID]; ok {
			gc := *g
			tc.Group = &gc
		}
		shift.ShiftType = &tc
	}
	return &shift
}

func (s *memStore) resolveExchange(id string) *model.ShiftExchange {
	src, ok := s.exchanges[id]
	if !ok {
		return nil
	}
	e := *src
	e.ShiftA = s.resolveShift(e.ShiftAID)
	if e.ShiftBID != nil {
		e.ShiftB = s.resolveShift(*e.ShiftBID)
	}
	if e.TransferToUserID != nil {
		if u, ok := s.users[*e.TransferToUserID]; ok {
			uc := *u
			e.TransferToUser = &uc
		}
	}
	e.UserAApproval = s.copyApproval(e.UserAApprovalID)
	e.UserBApproval = s.copyApproval(e.UserBApprovalID)
	e.AdminApproval = s.copyApproval(e.AdminApprovalID)
	return &e
}

func (s *memStore) copyApproval(id string) *model.ShiftExchangeApproval {
	a, ok := s.approvals[id]
	if !ok {
		return nil
	}
	c := *a
	return &c
}

// ── UserRepository ──

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = r.s.nextID("user")
	}
	c := *user
	r.s.users[user.UserID] = &c
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	c := *user
	r.s.users[user.UserID] = &c
	return nil
}

func (r *memUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	delete(r.s.users, id)
	return nil
}

// ── GroupRepository ──

type memGroupRepo struct{ s *memStore }

func (r *memGroupRepo) Create(_ context.Context, group *model.Group) error {
	if group.GroupID == "" {
		group.GroupID = r.s.nextID("group")
	}
	c := *group
	r.s.groups[group.GroupID] = &c
	r.s.members[group.GroupID] = map[string]bool{}
	r.s.admins[group.GroupID] = map[string]bool{}
	return nil
}

func (r *memGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	g, ok := r.s.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *g
	return &c, nil
}

func (r *memGroupRepo) Update(_ context.Context, group *model.Group) error {
	c := *group
	r.s.groups[group.GroupID] = &c
	return nil
}

func (r *memGroupRepo) List(_ context.Context) ([]model.Group, error) {
	out := make([]model.Group, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (r *memGroupRepo) Delete(_ context.Context, id string) error {
	delete(r.s.groups, id)
	return nil
}

func (r *memGroupRepo) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	return r.s.members[groupID][userID], nil
}

func (r *memGroupRepo) ListMembers(_ context.Context, groupID string) ([]model.GroupMember, error) {
	var out []model.GroupMember
	for userID := range r.s.members[groupID] {
		m := model.GroupMember{GroupID: groupID, UserID: userID}
		if u, ok := r.s.users[userID]; ok {
			c := *u
			m.User = &c
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memGroupRepo) ListMemberGroupIDs(_ context.Context, userID string) ([]string, error) {
	var out []string
	for groupID, set := range r.s.members {
		if set[userID] {
			out = append(out, groupID)
		}
	}
	return out, nil
}

func (r *memGroupRepo) AddMember(_ context.Context, groupID, userID string) error {
	r.s.members[groupID][userID] = true
	return nil
}

func (r *memGroupRepo) RemoveMember(_ context.Context, groupID, userID string) error {
	delete(r.s.members[groupID], userID)
	return nil
}

func (r *memGroupRepo) IsShiftAdmin(_ context.Context, groupID, userID string) (bool, error) {
	return r.s.admins[groupID][userID], nil
}

func (r *memGroupRepo) ListShiftAdmins(_ context.Context, groupID string) ([]model.GroupShiftAdmin, error) {
	var out []model.GroupShiftAdmin
	for userID := range r.s.admins[groupID] {
		a := model.GroupShiftAdmin{GroupID: groupID, UserID: userID}
		if u, ok := r.s.users[userID]; ok {
			c := *u
			a.User = &c
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *memGroupRepo) ListAdminGroupIDs(_ context.Context, userID string) ([]string, error) {
	var out []string
	for groupID, set := range r.s.admins {
		if set[userID] {
			out = append(out, groupID)
		}
	}
	return out, nil
}

func (r *memGroupRepo) AddShiftAdmin(_ context.Context, groupID, userID string) error {
	r.s.admins[groupID][userID] = true
	return nil
}

func (r *memGroupRepo) RemoveShiftAdmin(_ context.Context, groupID, userID string) error {
	delete(r.s.admins[groupID], userID)
	return nil
}

// ── ShiftTypeRepository ──

type memShiftTypeRepo struct{ s *memStore }

func (r *memShiftTypeRepo) Create(_ context.Context, shiftType *model.ShiftType) error {
	if shiftType.ShiftTypeID == "" {
		shiftType.ShiftTypeID = r.s.nextID("type")
	}
	c := *shiftType
	r.s.shiftTypes[shiftType.ShiftTypeID] = &c
	return nil
}

func (r *memShiftTypeRepo) GetByID(_ context.Context, id string) (*model.ShiftType, error) {
	t, ok := r.s.shiftTypes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *t
	if g, ok := r.s.groups[c.GroupID]; ok {
		gc := *g
		c.Group = &gc
	}
	return &c, nil
}

func (r *memShiftTypeRepo) Update(_ context.Context, shiftType *model.ShiftType) error {
	c := *shiftType
	c.Group = nil
	r.s.shiftTypes[shiftType.ShiftTypeID] = &c
	return nil
}

func (r *memShiftTypeRepo) ListByGroup(_ context.Context, groupID string) ([]model.ShiftType, error) {
	var out []model.ShiftType
	for _, t := range r.s.shiftTypes {
		if t.GroupID == groupID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memShiftTypeRepo) Delete(_ context.Context, id string) error {
	delete(r.s.shiftTypes, id)
	return nil
}

// ── ShiftRepository ──

type memShiftRepo struct{ s *memStore }

func (r *memShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = r.s.nextID("shift")
	}
	c := *shift
	c.User = nil
	c.ShiftType = nil
	r.s.shifts[shift.ShiftID] = &c
	return nil
}

func (r *memShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	shift := r.s.resolveShift(id)
	if shift == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return shift, nil
}

func (r *memShiftRepo) List(_ context.Context, filter repository.ShiftFilter) ([]model.Shift, error) {
	var out []model.Shift
	for id := range r.s.shifts {
		shift := r.s.resolveShift(id)
		if len(filter.GroupIDs) > 0 {
			match := false
			for _, g := range filter.GroupIDs {
				if shift.ShiftType != nil && shift.ShiftType.GroupID == g {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.UserID != "" && shift.UserID != filter.UserID {
			continue
		}
		if filter.StartFrom != "" && shift.StartValue < filter.StartFrom {
			continue
		}
		if filter.StartTo != "" && shift.StartValue >= filter.StartTo {
			continue
		}
		out = append(out, *shift)
	}
	return out, nil
}

func (r *memShiftRepo) UpdateOwner(_ context.Context, shiftID, userID string) error {
	shift, ok := r.s.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	shift.UserID = userID
	return nil
}

func (r *memShiftRepo) SwapOwners(_ context.Context, shiftAID, shiftBID string) error {
	a, ok := r.s.shifts[shiftAID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b, ok := r.s.shifts[shiftBID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.UserID, b.UserID = b.UserID, a.UserID
	return nil
}

func (r *memShiftRepo) Delete(_ context.Context, id string) error {
	delete(r.s.shifts, id)
	return nil
}

// ── ExchangeRepository ──

type memExchangeRepo struct{ s *memStore }

func (r *memExchangeRepo) Create(_ context.Context, exchange *model.ShiftExchange) error {
	if exchange.ExchangeID == "" {
		exchange.ExchangeID = r.s.nextID("exchange")
	}
	c := *exchange
	c.ShiftA, c.ShiftB, c.TransferToUser = nil, nil, nil
	c.UserAApproval, c.UserBApproval, c.AdminApproval = nil, nil, nil
	r.s.exchanges[exchange.ExchangeID] = &c
	return nil
}

func (r *memExchangeRepo) GetByID(_ context.Context, id string) (*model.ShiftExchange, error) {
	e := r.s.resolveExchange(id)
	if e == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *memExchangeRepo) List(_ context.Context, done *bool) ([]model.ShiftExchange, error) {
	var out []model.ShiftExchange
	for id, e := range r.s.exchanges {
		if done != nil && e.Done != *done {
			continue
		}
		out = append(out, *r.s.resolveExchange(id))
	}
	return out, nil
}

func (r *memExchangeRepo) FindOpenByShift(_ context.Context, shiftID string) ([]model.ShiftExchange, error) {
	var out []model.ShiftExchange
	for _, e := range r.s.exchanges {
		if e.Done {
			continue
		}
		if e.ShiftAID == shiftID || (e.ShiftBID != nil && *e.ShiftBID == shiftID) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memExchangeRepo) FindByShift(_ context.Context, shiftID string) ([]model.ShiftExchange, error) {
	var out []model.ShiftExchange
	for _, e := range r.s.exchanges {
		if e.ShiftAID == shiftID || (e.ShiftBID != nil && *e.ShiftBID == shiftID) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memExchangeRepo) Update(_ context.Context, exchange *model.ShiftExchange) error {
	c := *exchange
	c.ShiftA, c.ShiftB, c.TransferToUser = nil, nil, nil
	c.UserAApproval, c.UserBApproval, c.AdminApproval = nil, nil, nil
	r.s.exchanges[exchange.ExchangeID] = &c
	return nil
}

func (r *memExchangeRepo) Delete(_ context.Context, id string) error {
	delete(r.s.exchanges, id)
	return nil
}

// ── ApprovalRepository ──

type memApprovalRepo struct{ s *memStore }

func (r *memApprovalRepo) Create(_ context.Context, userID *string, approved *bool) (*model.ShiftExchangeApproval, error) {
	a := &model.ShiftExchangeApproval{ApprovalID: r.s.nextID("approval")}
	if userID != nil {
		v := *userID
		a.UserID = &v
	}
	if approved != nil {
		v := *approved
		a.Approved = &v
	}
	r.s.approvals[a.ApprovalID] = a
	c := *a
	return &c, nil
}

func (r *memApprovalRepo) GetByID(_ context.Context, id string) (*model.ShiftExchangeApproval, error) {
	a := r.s.copyApproval(id)
	if a == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *memApprovalRepo) Update(_ context.Context, approval *model.ShiftExchangeApproval) error {
	c := *approval
	r.s.approvals[approval.ApprovalID] = &c
	return nil
}

func (r *memApprovalRepo) Delete(_ context.Context, id string) error {
	delete(r.s.approvals, id)
	return nil
}

// ── CalendarChangeRepository ──

type memCalendarChangeRepo struct{ s *memStore }

func (r *memCalendarChangeRepo) Create(_ context.Context, change *model.CalendarChange) error {
	if change.ChangeID == "" {
		change.ChangeID = r.s.nextID("change")
	}
	c := *change
	r.s.changes[change.ChangeID] = &c
	r.s.changeIDs = append(r.s.changeIDs, change.ChangeID)
	return nil
}

func (r *memCalendarChangeRepo) ListByGroups(_ context.Context, groupIDs []string) ([]model.CalendarChange, error) {
	var out []model.CalendarChange
	for _, id := range r.s.changeIDs {
		c, ok := r.s.changes[id]
		if !ok {
			continue
		}
		for _, g := range groupIDs {
			if c.GroupID == g {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

func (r *memCalendarChangeRepo) ListByShift(_ context.Context, shiftID string) ([]model.CalendarChange, error) {
	var out []model.CalendarChange
	for _, id := range r.s.changeIDs {
		c, ok := r.s.changes[id]
		if !ok {
			continue
		}
		if c.ShiftID == shiftID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCalendarChangeRepo) Delete(_ context.Context, id string) error {
	delete(r.s.changes, id)
	return nil
}

// ── 内存版日历后端 ──

type memBackend struct {
	calendars map[string]caldav.Calendar
	personal  map[string]string // username -> calendarID
	objects   map[string]map[string]string
	events    map[string][]caldav.EventSummary
	failing   map[string]bool // 对象操作一律失败的日历
}

func newMemBackend() *memBackend {
	return &memBackend{
		calendars: map[string]caldav.Calendar{},
		personal:  map[string]string{},
		objects:   map[string]map[string]string{},
		events:    map[string][]caldav.EventSummary{},
		failing:   map[string]bool{},
	}
}

func (b *memBackend) addCalendar(cal caldav.Calendar) {
	b.calendars[cal.ID] = cal
	b.objects[cal.ID] = map[string]string{}
	if cal.URI == caldav.PersonalCalendarURI {
		b.personal[cal.OwnerUserID] = cal.ID
	}
}

func (b *memBackend) GetCalendarByID(_ context.Context, id string) (*caldav.Calendar, error) {
	cal, ok := b.calendars[id]
	if !ok {
		return nil, caldav.ErrCalendarNotFound
	}
	return &cal, nil
}

func (b *memBackend) GetPersonalCalendar(_ context.Context, userID string) (*caldav.Calendar, error) {
	id, ok := b.personal[userID]
	if !ok {
		return nil, caldav.ErrCalendarNotFound
	}
	cal := b.calendars[id]
	return &cal, nil
}

func (b *memBackend) ListCalendars(_ context.Context, userID string) ([]caldav.Calendar, error) {
	var out []caldav.Calendar
	for _, cal := range b.calendars {
		if cal.OwnerUserID == userID {
			out = append(out, cal)
		}
	}
	return out, nil
}

func (b *memBackend) GetObject(_ context.Context, calendarID, objectURI string) (*caldav.Object, error) {
	if b.failing[calendarID] {
		return nil, fmt.Errorf("calendar %s unavailable", calendarID)
	}
	data, ok := b.objects[calendarID][objectURI]
	if !ok {
		return nil, nil
	}
	return &caldav.Object{URI: objectURI, Data: data}, nil
}

func (b *memBackend) CreateObject(_ context.Context, calendarID, objectURI, data string) error {
	if b.failing[calendarID] {
		return fmt.Errorf("calendar %s unavailable", calendarID)
	}
	b.objects[calendarID][objectURI] = data
	return nil
}

func (b *memBackend) UpdateObject(_ context.Context, calendarID, objectURI, data string) error {
	if b.failing[calendarID] {
		return fmt.Errorf("calendar %s unavailable", calendarID)
	}
	b.objects[calendarID][objectURI] = data
	return nil
}

func (b *memBackend) DeleteObject(_ context.Context, calendarID, objectURI string) error {
	if b.failing[calendarID] {
		return fmt.Errorf("calendar %s unavailable", calendarID)
	}
	delete(b.objects[calendarID], objectURI)
	return nil
}

func (b *memBackend) RestoreObject(_ context.Context, calendarID, deletedURI string) error {
	if b.failing[calendarID] {
		return fmt.Errorf("calendar %s unavailable", calendarID)
	}
	data, ok := b.objects[calendarID][deletedURI]
	if !ok {
		return fmt.Errorf("object %s not found", deletedURI)
	}
	delete(b.objects[calendarID], deletedURI)
	b.objects[calendarID][strings.Replace(deletedURI, "-deleted.ics", ".ics", 1)] = data
	return nil
}

func (b *memBackend) Search(_ context.Context, calendarID string, start, end time.Time, limit int) ([]caldav.EventSummary, error) {
	if b.failing[calendarID] {
		return nil, fmt.Errorf("calendar %s unavailable", calendarID)
	}
	var out []caldav.EventSummary
	for _, evt := range b.events[calendarID] {
		if evt.End.Before(start) || evt.Start.After(end) {
			continue
		}
		out = append(out, evt)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
