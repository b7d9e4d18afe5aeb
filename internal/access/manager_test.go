package access

import (
	"context"
	"testing"
	"time"
)

func TestManagerCachesSessions(t *testing.T) {
	src := &fakeSource{}
	src.set(row(7, "DevConf", true, "sessions.view"))
	m := NewManager(src)

	s1, err := m.Session(context.Background(), 1, RoleAttendee)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	s2, err := m.Session(context.Background(), 1, RoleAttendee)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if s1 != s2 {
		t.Error("same user should get the same session instance")
	}

	other, err := m.Session(context.Background(), 2, RoleAttendee)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if other == s1 {
		t.Error("different users must not share sessions")
	}
}

func TestManagerReplacesSessionOnRoleChange(t *testing.T) {
	src := &fakeSource{}
	m := NewManager(src)

	s1, _ := m.Session(context.Background(), 1, RoleAttendee)
	s2, _ := m.Session(context.Background(), 1, RoleStaff)
	if s1 == s2 {
		t.Error("role change should produce a fresh session")
	}
	if s2.Role != RoleStaff {
		t.Errorf("new session role = %s", s2.Role)
	}
}

func TestManagerEvict(t *testing.T) {
	src := &fakeSource{}
	m := NewManager(src)

	s1, _ := m.Session(context.Background(), 1, RoleAttendee)
	m.Evict(1)
	s2, _ := m.Session(context.Background(), 1, RoleAttendee)
	if s1 == s2 {
		t.Error("evicted session should not be reused")
	}
}

func TestNotifyPermissionsChangedRefreshes(t *testing.T) {
	src := &fakeSource{}
	src.set(row(7, "DevConf", true, "sessions.view"))
	m := NewManager(src)

	s, err := m.Session(context.Background(), 1, RoleAttendee)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if !s.HasConferencePermission("sessions.view", 7) {
		t.Fatal("precondition: grant present")
	}

	src.set(row(7, "DevConf", false, "sessions.view"))
	m.NotifyPermissionsChanged()

	deadline := time.Now().Add(2 * time.Second)
	for s.HasConferencePermission("sessions.view", 7) {
		if time.Now().After(deadline) {
			t.Fatal("broadcast refresh never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
