package access

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

// fakeSource is a controllable AssignmentSource. Each MyAssignments call
// optionally waits on gate before returning the current rows.
type fakeSource struct {
	mu          sync.Mutex
	rows        []RawAssignment
	conferences []ConferenceRef
	err         error
	calls       int
	gate        chan struct{}
}

func (f *fakeSource) MyAssignments(ctx context.Context, userID int64) ([]RawAssignment, error) {
	f.mu.Lock()
	rows := append([]RawAssignment(nil), f.rows...)
	err := f.err
	gate := f.gate
	f.calls++
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *fakeSource) Conferences(ctx context.Context) ([]ConferenceRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]ConferenceRef(nil), f.conferences...), nil
}

func (f *fakeSource) set(rows ...RawAssignment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
}

func row(id int64, name string, active bool, codes ...string) RawAssignment {
	perms := make(map[string]bool, len(codes))
	for _, c := range codes {
		perms[c] = true
	}
	raw, _ := json.Marshal(perms)
	act := []byte(`0`)
	if active {
		act = []byte(`1`)
	}
	return RawAssignment{
		ConferenceID:   id,
		ConferenceName: name,
		Permissions:    raw,
		IsActive:       act,
	}
}

func loadedSession(t *testing.T, role Role, src *fakeSource) *Session {
	t.Helper()
	s := NewSession(src, 1, role)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestConferencePermissionScoping(t *testing.T) {
	src := &fakeSource{}
	src.set(row(7, "DevConf", true, "sessions.view"))
	s := loadedSession(t, RoleAttendee, src)

	if got := s.CurrentConferenceID(); got != 7 {
		t.Fatalf("current conference = %d, want 7", got)
	}
	if !s.HasConferencePermission("sessions.view") {
		t.Error("sessions.view should be granted on current conference")
	}
	if s.HasConferencePermission("sessions.view", 99) {
		t.Error("sessions.view should not be granted on conference 99")
	}
	if s.HasConferencePermission("checkin.manage") {
		t.Error("ungranted code should be false")
	}
}

func TestRevocationWithoutReload(t *testing.T) {
	src := &fakeSource{}
	src.set(row(7, "DevConf", true, "sessions.view"))
	s := loadedSession(t, RoleAttendee, src)

	src.set(row(7, "DevConf", false, "sessions.view"))
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if s.HasConferencePermission("sessions.view", 7) {
		t.Error("inactive assignment must not grant permissions")
	}
	if got := s.CurrentConferenceID(); got != 0 {
		t.Errorf("current conference should reset on revocation, got %d", got)
	}
}

func TestQueriesFalseWhileLoading(t *testing.T) {
	src := &fakeSource{}
	src.set(row(7, "DevConf", true, "sessions.view"))
	s := NewSession(src, 1, RoleAttendee)

	if s.Loaded() {
		t.Fatal("session should not report loaded before Load")
	}
	if s.HasConferencePermission("sessions.view", 7) {
		t.Error("conference permission must be false while loading")
	}
	if s.HasAnyConferencePermission("sessions.view") {
		t.Error("any-conference permission must be false while loading")
	}
	if s.HasAllConferencePermission("sessions.view") {
		t.Error("all-conference permission must be false while loading")
	}
}

func TestDeepLinkHintWinsOverListOrder(t *testing.T) {
	src := &fakeSource{}
	src.set(
		row(3, "First", true, "sessions.view"),
		row(7, "Second", true, "sessions.view"),
	)
	s := NewSession(src, 1, RoleAttendee)
	s.SetHint(7)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := s.CurrentConferenceID(); got != 7 {
		t.Errorf("hint should win over list order, got %d", got)
	}
}

func TestInvalidHintFallsThrough(t *testing.T) {
	src := &fakeSource{}
	src.set(
		row(3, "First", true, "sessions.view"),
		row(9, "Inactive", false, "sessions.view"),
	)
	s := NewSession(src, 1, RoleAttendee)

	// Unknown conference.
	s.SetHint(999)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := s.CurrentConferenceID(); got != 3 {
		t.Errorf("invalid hint should fall back to first active, got %d", got)
	}

	// Inactive assignment is not an eligible hint target either.
	s.SetHint(9)
	if got := s.CurrentConferenceID(); got != 3 {
		t.Errorf("inactive hint should be ignored, got %d", got)
	}

	// Non-positive means no hint.
	s.SetHint(-1)
	if got := s.CurrentConferenceID(); got != 3 {
		t.Errorf("negative hint should be ignored, got %d", got)
	}
}

func TestSelectionStableAcrossRefresh(t *testing.T) {
	src := &fakeSource{}
	src.set(
		row(3, "First", true, "sessions.view"),
		row(7, "Second", true, "sessions.view"),
	)
	s := loadedSession(t, RoleAttendee, src)
	s.SwitchConference(7)

	// Refresh with identical backend data: selection and list must not move.
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if got := s.CurrentConferenceID(); got != 7 {
		t.Errorf("selection should survive refresh, got %d", got)
	}
	if got := len(s.GetAvailableConferences()); got != 2 {
		t.Errorf("available conferences = %d, want 2", got)
	}
}

func TestEmptyAssignmentList(t *testing.T) {
	src := &fakeSource{}
	s := loadedSession(t, RoleAttendee, src)

	if got := s.GetAvailableConferences(); len(got) != 0 {
		t.Errorf("expected no conferences, got %v", got)
	}
	if got := s.CurrentConferenceID(); got != 0 {
		t.Errorf("expected no selection, got %d", got)
	}
}

func TestFetchFailureDegradesToNoAccess(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("backend down")}
	s := NewSession(src, 1, RoleAttendee)
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}

	// The session is loaded (not stuck in the loading state) but grants
	// nothing; no fabricated fallback permissions.
	if !s.Loaded() {
		t.Error("session should be loaded after a failed fetch")
	}
	if len(s.GetAvailableConferences()) != 0 {
		t.Error("failed fetch must yield an empty assignment list")
	}
	if s.HasAnyConferencePermission("sessions.view") {
		t.Error("failed fetch must not grant anything")
	}
}

func TestSwitchConference(t *testing.T) {
	src := &fakeSource{}
	src.set(
		row(3, "First", true, "sessions.view"),
		row(7, "Second", true, "badges.view"),
		row(9, "Revoked", false, "sessions.view"),
	)
	s := loadedSession(t, RoleAttendee, src)

	s.SwitchConference(7)
	if got := s.CurrentConferenceID(); got != 7 {
		t.Fatalf("switch failed, current = %d", got)
	}

	// Inaccessible targets are silent no-ops.
	s.SwitchConference(9)
	if got := s.CurrentConferenceID(); got != 7 {
		t.Errorf("switch to inactive assignment should no-op, got %d", got)
	}
	s.SwitchConference(12345)
	if got := s.CurrentConferenceID(); got != 7 {
		t.Errorf("switch to unknown conference should no-op, got %d", got)
	}
}

func TestAnyAndAllConferencePermission(t *testing.T) {
	src := &fakeSource{}
	src.set(
		row(3, "First", true, "sessions.view", "badges.view"),
		row(7, "Second", true, "sessions.view"),
		row(9, "Revoked", false, "networking.view"),
	)
	s := loadedSession(t, RoleAttendee, src)

	if !s.HasAnyConferencePermission("badges.view") {
		t.Error("badges.view is granted on conference 3")
	}
	if s.HasAnyConferencePermission("networking.view") {
		t.Error("inactive assignments must not count for any-conference checks")
	}
	if !s.HasAllConferencePermission("sessions.view") {
		t.Error("sessions.view is granted on every active assignment")
	}
	if s.HasAllConferencePermission("badges.view") {
		t.Error("badges.view is missing on conference 7")
	}
}

func TestHasAllWithNoActiveAssignments(t *testing.T) {
	src := &fakeSource{}
	src.set(row(9, "Revoked", false, "sessions.view"))
	s := loadedSession(t, RoleAttendee, src)

	if s.HasAllConferencePermission("sessions.view") {
		t.Error("no active assignments means all-conference check is false")
	}
}

func TestAdminSynthesizesFullGrants(t *testing.T) {
	src := &fakeSource{conferences: []ConferenceRef{
		{ID: 1, Name: "DevConf"},
		{ID: 2},
	}}
	s := loadedSession(t, RoleAdmin, src)

	available := s.GetAvailableConferences()
	if len(available) != 2 {
		t.Fatalf("admin should see all conferences, got %d", len(available))
	}
	if !s.HasConferencePermission("checkin.manage", 2) {
		t.Error("admin grant should include checkin.manage on every conference")
	}
	if got := s.GetConferenceName(2); got != "Conference #2" {
		t.Errorf("unnamed conference placeholder, got %q", got)
	}
	if got := s.CurrentConferenceID(); got != 1 {
		t.Errorf("first conference should be selected, got %d", got)
	}
}

func TestPermissionMapsAreCopies(t *testing.T) {
	src := &fakeSource{conferences: []ConferenceRef{
		{ID: 1, Name: "DevConf"},
		{ID: 2, Name: "GopherCon"},
	}}
	s := loadedSession(t, RoleAdmin, src)

	perms := s.GetCurrentConferencePermissions()
	perms["checkin.manage"] = false
	delete(perms, "sessions.view")

	if !s.HasConferencePermission("checkin.manage", 1) {
		t.Error("mutating a returned map must not revoke the session's grants")
	}
	if !s.HasConferencePermission("sessions.view", 1) {
		t.Error("deleting from a returned map must not reach the session")
	}

	// A later admin session must still synthesize the full grant set.
	other := loadedSession(t, RoleAdmin, src)
	if !other.HasConferencePermission("checkin.manage", 2) {
		t.Error("shared admin grant table was corrupted by a caller")
	}
}

func TestStaleInFlightLoadDiscarded(t *testing.T) {
	src := &fakeSource{}
	src.set(row(3, "Old", true, "sessions.view"))

	gate := make(chan struct{})
	src.mu.Lock()
	src.gate = gate
	src.mu.Unlock()

	s := NewSession(src, 1, RoleAttendee)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	// A newer load starts while the first fetch is stuck, sees fresh rows
	// and completes first.
	src.mu.Lock()
	src.gate = nil
	src.rows = []RawAssignment{row(7, "New", true, "sessions.view")}
	src.mu.Unlock()
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}

	// Releasing the stale fetch must not roll the list back.
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first load: %v", err)
	}

	available := s.GetAvailableConferences()
	if len(available) != 1 || available[0].ConferenceID != 7 {
		t.Errorf("stale fetch overwrote newer result: %+v", available)
	}
}

func TestGetConferencePermissions(t *testing.T) {
	src := &fakeSource{}
	src.set(
		row(3, "First", true, "sessions.view"),
		row(9, "Revoked", false, "networking.view"),
	)
	s := loadedSession(t, RoleAttendee, src)

	got := s.GetCurrentConferencePermissions()
	if !got["sessions.view"] {
		t.Errorf("current conference permissions = %v", got)
	}
	if got := s.GetConferencePermissions(9); len(got) != 0 {
		t.Errorf("inactive assignment should expose no permissions, got %v", got)
	}
	if got := s.GetConferencePermissions(12345); len(got) != 0 {
		t.Errorf("unknown conference should expose no permissions, got %v", got)
	}
}
