package nav

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"confms/internal/access"
)

type stubSource struct {
	rows        []access.RawAssignment
	conferences []access.ConferenceRef
}

func (s *stubSource) MyAssignments(ctx context.Context, userID int64) ([]access.RawAssignment, error) {
	return s.rows, nil
}

func (s *stubSource) Conferences(ctx context.Context) ([]access.ConferenceRef, error) {
	return s.conferences, nil
}

func row(id int64, name string, active bool, codes ...string) access.RawAssignment {
	perms := make(map[string]bool, len(codes))
	for _, c := range codes {
		perms[c] = true
	}
	raw, _ := json.Marshal(perms)
	act, _ := json.Marshal(active)
	return access.RawAssignment{
		ConferenceID:   id,
		ConferenceName: name,
		Permissions:    raw,
		IsActive:       act,
	}
}

func session(t *testing.T, role access.Role, src *stubSource) *access.Session {
	t.Helper()
	s := access.NewSession(src, 42, role)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func routes(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Route)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func TestBuildMainGroup(t *testing.T) {
	for _, role := range []access.Role{access.RoleAdmin, access.RoleStaff, access.RoleAttendee} {
		tree := Build(session(t, role, &stubSource{}))
		got := routes(tree.Main)
		if len(got) != 2 || got[0] != "/dashboard" || got[1] != "/profile" {
			t.Errorf("role %s: main = %v, want [/dashboard /profile]", role, got)
		}
	}
}

func TestAdminOnlyManagement(t *testing.T) {
	// Staff hold conferences.view and attendees.view in the role catalog,
	// but the management surfaces behind them are restricted to admins.
	staff := Build(session(t, access.RoleStaff, &stubSource{}))
	for _, route := range []string{"/conferences", "/attendees"} {
		if contains(routes(staff.Management), route) {
			t.Errorf("staff sees %s", route)
		}
	}

	admin := Build(session(t, access.RoleAdmin, &stubSource{}))
	got := routes(admin.Management)
	want := []string{"/conferences", "/attendees", "/roles", "/audit", "/settings"}
	if len(got) != len(want) {
		t.Fatalf("admin management = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("admin management = %v, want %v", got, want)
		}
	}
}

func TestAttendeeRequiresConferenceGrant(t *testing.T) {
	// Attendees hold sessions.view in the role catalog, but without an
	// active assignment granting it the item stays hidden.
	bare := Build(session(t, access.RoleAttendee, &stubSource{}))
	if contains(routes(bare.Feature), "/sessions") {
		t.Error("attendee without assignment sees /sessions")
	}

	src := &stubSource{rows: []access.RawAssignment{
		row(7, "GopherCon", true, "sessions.view"),
	}}
	granted := Build(session(t, access.RoleAttendee, src))
	if !contains(routes(granted.Feature), "/sessions") {
		t.Error("attendee with assignment does not see /sessions")
	}
	if contains(routes(granted.Feature), "/venue") {
		t.Error("attendee sees /venue without a venue.view grant")
	}
}

func TestAttendeeRoleStillRequired(t *testing.T) {
	// A conference grant for a code outside the attendee role catalog
	// does not unlock the item: both sides of the rule must hold.
	src := &stubSource{rows: []access.RawAssignment{
		row(7, "GopherCon", true, "checkin.manage"),
	}}
	tree := Build(session(t, access.RoleAttendee, src))
	if contains(routes(tree.Feature), "/checkin") {
		t.Error("attendee sees /checkin without the role permission")
	}
}

func TestAttendeeGrantMustBeOnCurrentConference(t *testing.T) {
	// A grant on a non-current conference does not unlock the item for an
	// attendee: the current conference is the one that must grant the code.
	src := &stubSource{rows: []access.RawAssignment{
		row(3, "DevFest", true, "venue.view"),
		row(7, "GopherCon", true, "sessions.view"),
	}}
	s := session(t, access.RoleAttendee, src)
	s.SwitchConference(3)
	tree := Build(s)

	if contains(routes(tree.Feature), "/sessions") {
		t.Error("attendee sees /sessions although the current conference does not grant it")
	}
	if !contains(routes(tree.Feature), "/venue") {
		t.Error("attendee missing /venue granted by the current conference")
	}

	// Switching to the granting conference flips both.
	s.SwitchConference(7)
	tree = Build(s)
	if !contains(routes(tree.Feature), "/sessions") {
		t.Error("attendee missing /sessions after switching to the granting conference")
	}
	if contains(routes(tree.Feature), "/venue") {
		t.Error("attendee sees /venue although the current conference does not grant it")
	}

	// Staff are trusted across conferences: a grant on any assignment
	// surfaces the item even when the current conference lacks it.
	staffSrc := &stubSource{rows: []access.RawAssignment{
		row(3, "DevFest", true, "venue.view"),
		row(7, "GopherCon", true, "my-events.view"),
	}}
	st := session(t, access.RoleStaff, staffSrc)
	st.SwitchConference(3)
	if !contains(routes(Build(st).Feature), "/my-events") {
		t.Error("staff missing /my-events with a grant on another conference")
	}
}

func TestStaffRoleAloneSuffices(t *testing.T) {
	// Staff see conference features their role grants even before any
	// assignment exists.
	tree := Build(session(t, access.RoleStaff, &stubSource{}))
	feature := routes(tree.Feature)
	for _, route := range []string{"/checkin", "/networking", "/venue", "/sessions", "/badges", "/mobile"} {
		if !contains(feature, route) {
			t.Errorf("staff missing %s", route)
		}
	}
	// my-events is not in the staff catalog and no assignment grants it.
	if contains(feature, "/my-events") {
		t.Error("staff sees /my-events with no grant anywhere")
	}
}

func TestStaffAssignmentWidensAccess(t *testing.T) {
	src := &stubSource{rows: []access.RawAssignment{
		row(7, "GopherCon", true, "my-events.view"),
	}}
	tree := Build(session(t, access.RoleStaff, src))
	if !contains(routes(tree.Feature), "/my-events") {
		t.Error("staff assignment grant did not surface /my-events")
	}
}

func TestInactiveAssignmentIgnored(t *testing.T) {
	src := &stubSource{rows: []access.RawAssignment{
		row(7, "GopherCon", false, "sessions.view"),
	}}
	tree := Build(session(t, access.RoleAttendee, src))
	if contains(routes(tree.Feature), "/sessions") {
		t.Error("inactive assignment unlocked /sessions")
	}
	if len(tree.Conferences) != 0 {
		t.Errorf("inactive assignment produced %d sections", len(tree.Conferences))
	}
}

func TestConferenceSections(t *testing.T) {
	src := &stubSource{rows: []access.RawAssignment{
		row(3, "DevFest", true, "venue.view"),
		row(7, "GopherCon", true, "sessions.view", "sessions.manage", "checkin.manage"),
	}}
	s := session(t, access.RoleAttendee, src)
	s.SwitchConference(7)
	tree := Build(s)

	if len(tree.Conferences) != 2 {
		t.Fatalf("got %d sections, want 2", len(tree.Conferences))
	}
	if tree.Conferences[0].ConferenceID != 3 || tree.Conferences[0].Current {
		t.Errorf("section 0 = %+v, want DevFest, not current", tree.Conferences[0])
	}
	gc := tree.Conferences[1]
	if gc.ConferenceID != 7 || !gc.Current || gc.ConferenceName != "GopherCon" {
		t.Fatalf("section 1 = %+v", gc)
	}

	// Categories come out in table order with per-category grant counts.
	if len(gc.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(gc.Categories))
	}
	if gc.Categories[0].Key != "checkin" || gc.Categories[0].BadgeCount != 1 {
		t.Errorf("category 0 = %+v", gc.Categories[0])
	}
	if gc.Categories[1].Key != "sessions" || gc.Categories[1].BadgeCount != 2 {
		t.Errorf("category 1 = %+v", gc.Categories[1])
	}
	want := fmt.Sprintf("/sessions?conferenceId=%d", gc.ConferenceID)
	if gc.Categories[1].Route != want {
		t.Errorf("route = %q, want %q", gc.Categories[1].Route, want)
	}
}

func TestUnknownCategoryDropped(t *testing.T) {
	src := &stubSource{rows: []access.RawAssignment{
		row(7, "GopherCon", true, "secret-lab.enter", "venue.view"),
	}}
	tree := Build(session(t, access.RoleAttendee, src))
	if len(tree.Conferences) != 1 {
		t.Fatalf("got %d sections", len(tree.Conferences))
	}
	cats := tree.Conferences[0].Categories
	if len(cats) != 1 || cats[0].Key != "venue" {
		t.Errorf("categories = %+v, want venue only", cats)
	}
}

func TestAdminSections(t *testing.T) {
	src := &stubSource{conferences: []access.ConferenceRef{
		{ID: 1, Name: "GopherCon"},
		{ID: 2, Name: "DevFest"},
	}}
	tree := Build(session(t, access.RoleAdmin, src))
	if len(tree.Conferences) != 2 {
		t.Fatalf("got %d sections, want 2", len(tree.Conferences))
	}
	if !tree.Conferences[0].Current {
		t.Error("first conference not selected as current")
	}
	// Synthesized grants cover management areas for every conference.
	keys := make([]string, 0)
	for _, c := range tree.Conferences[1].Categories {
		keys = append(keys, c.Key)
	}
	for _, want := range []string{"conferences", "attendees", "checkin", "sessions", "analytics"} {
		if !contains(keys, want) {
			t.Errorf("admin section missing category %s (have %s)", want, strings.Join(keys, ","))
		}
	}
}

func TestCategoryOf(t *testing.T) {
	cases := map[string]string{
		"sessions.view":  "sessions",
		"my-events.view": "my-events",
		"checkin":        "checkin",
		"a.b.c":          "a",
		"":               "",
	}
	for code, want := range cases {
		if got := categoryOf(code); got != want {
			t.Errorf("categoryOf(%q) = %q, want %q", code, got, want)
		}
	}
}
