// Package nav shapes the sidebar navigation tree from a user's role and
// conference grants. It is a pure projection: no I/O, no rendering, safe to
// recompute on every permission or assignment change.
package nav

import (
	"fmt"

	"confms/internal/access"
)

// Group orders role-gated items in the emitted tree.
type Group string

const (
	GroupMain       Group = "main"
	GroupManagement Group = "management"
	GroupFeature    Group = "feature"
)

// Category describes one conference feature area keyed by the permission
// code prefix that feeds it.
type Category struct {
	Key         string `json:"key"`
	Icon        string `json:"icon"`
	Label       string `json:"label"`
	Route       string `json:"route"`
	Description string `json:"description"`
}

// categories is the static table of recognized feature areas, in emission
// order. Permission categories without a row here never reach the sidebar.
var categories = []Category{
	{Key: "conferences", Icon: "calendar", Label: "Conferences", Route: "/conferences", Description: "Manage conferences and events"},
	{Key: "attendees", Icon: "users", Label: "Attendees", Route: "/attendees", Description: "Attendee lists and management"},
	{Key: "checkin", Icon: "qr-code", Label: "Check-in", Route: "/checkin", Description: "QR code check-in"},
	{Key: "networking", Icon: "network", Label: "Networking", Route: "/networking", Description: "Connect with other attendees"},
	{Key: "venue", Icon: "map-pin", Label: "Venue", Route: "/venue", Description: "Venue map and directions"},
	{Key: "sessions", Icon: "video", Label: "Sessions", Route: "/sessions", Description: "Live sessions"},
	{Key: "badges", Icon: "award", Label: "Badges", Route: "/badges", Description: "Digital badges"},
	{Key: "analytics", Icon: "bar-chart", Label: "Analytics", Route: "/analytics", Description: "Attendance analytics"},
	{Key: "roles", Icon: "shield", Label: "Roles", Route: "/roles", Description: "Roles and permissions"},
	{Key: "mobile", Icon: "smartphone", Label: "Mobile App", Route: "/mobile", Description: "Companion mobile app"},
	{Key: "my-events", Icon: "calendar", Label: "My Events", Route: "/my-events", Description: "Your registered events"},
}

// Item is one role-gated navigation entry. Required lists the permission
// codes needed; AdminOnly bypasses the permission table entirely with a hard
// role check. ConferenceScoped items follow the role composition rule in
// visibleTo rather than a plain catalog lookup.
type Item struct {
	Route            string
	Icon             string
	Label            string
	Required         []string
	Group            Group
	AdminOnly        bool
	ConferenceScoped bool
}

var items = []Item{
	{Route: "/dashboard", Icon: "layout-dashboard", Label: "Dashboard", Required: []string{"dashboard.view"}, Group: GroupMain},
	{Route: "/profile", Icon: "user-check", Label: "Profile", Required: []string{"profile.view"}, Group: GroupMain},
	{Route: "/conferences", Icon: "calendar", Label: "Conference Management", Required: []string{"conferences.view"}, Group: GroupManagement, AdminOnly: true},
	{Route: "/attendees", Icon: "users", Label: "Attendee Management", Required: []string{"attendees.view"}, Group: GroupManagement, AdminOnly: true},
	{Route: "/roles", Icon: "shield", Label: "Roles", Required: []string{"roles.manage"}, Group: GroupManagement},
	{Route: "/audit", Icon: "file-text", Label: "Audit Log", Required: []string{"audit.view"}, Group: GroupManagement},
	{Route: "/settings", Icon: "settings", Label: "Settings", Required: []string{"settings.manage"}, Group: GroupManagement},
	{Route: "/checkin", Icon: "qr-code", Label: "QR Check-in", Required: []string{"checkin.manage"}, Group: GroupFeature, ConferenceScoped: true},
	{Route: "/networking", Icon: "network", Label: "Networking", Required: []string{"networking.view"}, Group: GroupFeature, ConferenceScoped: true},
	{Route: "/venue", Icon: "map-pin", Label: "Venue Map", Required: []string{"venue.view"}, Group: GroupFeature, ConferenceScoped: true},
	{Route: "/sessions", Icon: "video", Label: "Live Sessions", Required: []string{"sessions.view"}, Group: GroupFeature, ConferenceScoped: true},
	{Route: "/badges", Icon: "award", Label: "Badges", Required: []string{"badges.view"}, Group: GroupFeature, ConferenceScoped: true},
	{Route: "/analytics", Icon: "bar-chart", Label: "Analytics", Required: []string{"analytics.view"}, Group: GroupFeature, ConferenceScoped: true},
	{Route: "/mobile", Icon: "smartphone", Label: "Mobile App", Required: []string{"mobile.view"}, Group: GroupFeature},
	{Route: "/my-events", Icon: "calendar", Label: "My Events", Required: []string{"my-events.view"}, Group: GroupFeature, ConferenceScoped: true},
}

// Entry is an emitted role-gated item.
type Entry struct {
	Route string `json:"route"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// CategoryEntry is one clickable feature area under a conference section.
// BadgeCount is the number of granted codes in the category.
type CategoryEntry struct {
	Key         string `json:"key"`
	Icon        string `json:"icon"`
	Label       string `json:"label"`
	Route       string `json:"route"`
	Description string `json:"description"`
	BadgeCount  int    `json:"badgeCount"`
}

// ConferenceSection groups the feature areas one active assignment unlocks.
type ConferenceSection struct {
	ConferenceID   int64           `json:"conferenceId"`
	ConferenceName string          `json:"conferenceName"`
	Current        bool            `json:"current"`
	Categories     []CategoryEntry `json:"categories"`
}

// Tree is the complete sidebar description, groups in fixed order:
// conference sections first, then main, management and feature items.
type Tree struct {
	Conferences []ConferenceSection `json:"conferences"`
	Main        []Entry             `json:"main"`
	Management  []Entry             `json:"management"`
	Feature     []Entry             `json:"feature"`
}

// Build projects the session into a navigation tree.
func Build(s *access.Session) Tree {
	tree := Tree{}

	current := s.CurrentConferenceID()
	for _, a := range s.GetAvailableConferences() {
		section := ConferenceSection{
			ConferenceID:   a.ConferenceID,
			ConferenceName: a.ConferenceName,
			Current:        a.ConferenceID == current,
			Categories:     categoryEntries(a),
		}
		tree.Conferences = append(tree.Conferences, section)
	}

	for _, item := range items {
		if !visibleTo(s, item) {
			continue
		}
		entry := Entry{Route: item.Route, Icon: item.Icon, Label: item.Label}
		switch item.Group {
		case GroupMain:
			tree.Main = append(tree.Main, entry)
		case GroupManagement:
			tree.Management = append(tree.Management, entry)
		case GroupFeature:
			tree.Feature = append(tree.Feature, entry)
		}
	}
	return tree
}

// visibleTo applies the composition rule. Admin-only items are a hard role
// check with no permission lookup. Conference-scoped items combine the role
// catalog with conference grants: admins and staff are trusted across the
// deployment, so an assignment only widens their access (OR); attendees are
// scoped strictly to conferences they registered for, so the assignment is
// required on top of the role (AND).
func visibleTo(s *access.Session, item Item) bool {
	if item.AdminOnly {
		return s.Role == access.RoleAdmin
	}

	role := true
	for _, code := range item.Required {
		if !s.HasPermission(code) {
			role = false
			break
		}
	}

	if !item.ConferenceScoped {
		return role
	}

	// Attendees are checked against the CURRENT conference only: a grant on
	// some other conference must not unlock the item here.
	if s.Role == access.RoleAttendee {
		conference := false
		for _, code := range item.Required {
			if s.HasConferencePermission(code) {
				conference = true
				break
			}
		}
		return role && conference
	}

	conference := false
	for _, code := range item.Required {
		if s.HasAnyConferencePermission(code) {
			conference = true
			break
		}
	}
	return role || conference
}

// categoryEntries groups an assignment's granted codes by category prefix
// and keeps only categories present in the static table, in table order.
// The emitted route carries the conference id so deep links land on the
// right conference.
func categoryEntries(a access.Assignment) []CategoryEntry {
	counts := make(map[string]int)
	for code, granted := range a.Permissions {
		if !granted {
			continue
		}
		counts[categoryOf(code)]++
	}

	var out []CategoryEntry
	for _, c := range categories {
		n := counts[c.Key]
		if n == 0 {
			continue
		}
		out = append(out, CategoryEntry{
			Key:         c.Key,
			Icon:        c.Icon,
			Label:       c.Label,
			Route:       fmt.Sprintf("%s?conferenceId=%d", c.Route, a.ConferenceID),
			Description: c.Description,
			BadgeCount:  n,
		})
	}
	return out
}

// categoryOf is the substring before the first dot of a permission code.
func categoryOf(code string) string {
	for i := 0; i < len(code); i++ {
		if code[i] == '.' {
			return code[:i]
		}
	}
	return code
}
