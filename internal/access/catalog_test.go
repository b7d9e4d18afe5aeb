package access

import "testing"

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role    Role
		granted []string
		denied  []string
	}{
		{
			role:    RoleAdmin,
			granted: []string{"dashboard.view", "conferences.delete", "roles.manage", "audit.view", "settings.manage", "my-events.view"},
		},
		{
			role:    RoleStaff,
			granted: []string{"dashboard.view", "checkin.manage", "attendees.manage", "conferences.create"},
			denied:  []string{"conferences.delete", "roles.manage", "audit.view", "settings.manage", "my-events.view"},
		},
		{
			role:    RoleAttendee,
			granted: []string{"dashboard.view", "profile.view", "my-events.view", "badges.view"},
			denied:  []string{"checkin.manage", "attendees.view", "conferences.create", "roles.manage"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			set := RolePermissions(tt.role)
			for _, code := range tt.granted {
				if !set[code] {
					t.Errorf("role %s should grant %s", tt.role, code)
				}
			}
			for _, code := range tt.denied {
				if set[code] {
					t.Errorf("role %s should not grant %s", tt.role, code)
				}
			}
		})
	}
}

func TestRolePermissionsUnknownRole(t *testing.T) {
	if set := RolePermissions(Role("guest")); len(set) != 0 {
		t.Errorf("unknown role should have no permissions, got %d", len(set))
	}
}

func TestRolePermissionsMatchesCatalogCodes(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleStaff, RoleAttendee} {
		set := RolePermissions(role)
		codes := RolePermissionCodes(role)
		if len(set) != len(codes) {
			t.Fatalf("role %s: set has %d codes, list has %d", role, len(set), len(codes))
		}
		for _, code := range codes {
			if !set[code] {
				t.Errorf("role %s: listed code %s missing from set", role, code)
			}
		}
	}
}

func TestHasPermissionAgainstCatalog(t *testing.T) {
	s := NewSession(nil, 1, RoleAttendee)
	// hasPermission is a pure catalog lookup; it must work before Load.
	if !s.HasPermission("my-events.view") {
		t.Error("attendee should have my-events.view")
	}
	if s.HasPermission("checkin.manage") {
		t.Error("attendee should not have checkin.manage")
	}
}
