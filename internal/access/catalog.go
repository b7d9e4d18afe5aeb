package access

// Role is the global role a user holds. Exactly one per user, fixed for the
// lifetime of a session.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleAttendee Role = "attendee"
)

// allPermissionCodes is every permission code the system knows about, in
// catalog order. Codes are opaque "<category>.<action>" strings; nothing in
// this package interprets a code beyond its presence and its category prefix.
var allPermissionCodes = []string{
	"dashboard.view",
	"profile.view",
	"conferences.view",
	"conferences.create",
	"conferences.edit",
	"conferences.update",
	"conferences.delete",
	"conferences.manage",
	"conferences.export",
	"attendees.view",
	"attendees.read",
	"attendees.write",
	"attendees.manage",
	"checkin.manage",
	"roles.manage",
	"audit.view",
	"settings.manage",
	"analytics.view",
	"networking.view",
	"messaging.view",
	"venue.view",
	"sessions.view",
	"badges.view",
	"mobile.view",
	"my-events.view",
}

var staffPermissionCodes = []string{
	"dashboard.view",
	"profile.view",
	"conferences.view",
	"conferences.create",
	"conferences.update",
	"conferences.export",
	"attendees.view",
	"attendees.read",
	"attendees.write",
	"attendees.manage",
	"checkin.manage",
	"networking.view",
	"messaging.view",
	"venue.view",
	"sessions.view",
	"badges.view",
	"mobile.view",
}

var attendeePermissionCodes = []string{
	"dashboard.view",
	"profile.view",
	"conferences.view",
	"conferences.export",
	"networking.view",
	"messaging.view",
	"venue.view",
	"sessions.view",
	"badges.view",
	"mobile.view",
	"my-events.view",
}

// RolePermissions returns the set of permission codes granted to a role.
// An unknown role yields an empty set, never an error. This table is the
// single source of truth for role-gated checks and doubles as the fallback
// when the backend permission payload is empty or unreachable.
func RolePermissions(role Role) map[string]bool {
	var codes []string
	switch role {
	case RoleAdmin:
		codes = allPermissionCodes
	case RoleStaff:
		codes = staffPermissionCodes
	case RoleAttendee:
		codes = attendeePermissionCodes
	}

	set := make(map[string]bool, len(codes))
	for _, code := range codes {
		set[code] = true
	}
	return set
}

// RolePermissionCodes returns the catalog codes for a role in stable order,
// for callers that serve the list over the wire.
func RolePermissionCodes(role Role) []string {
	switch role {
	case RoleAdmin:
		return append([]string(nil), allPermissionCodes...)
	case RoleStaff:
		return append([]string(nil), staffPermissionCodes...)
	case RoleAttendee:
		return append([]string(nil), attendeePermissionCodes...)
	}
	return nil
}

// adminConferenceGrants is the permission map synthesized for admins on every
// conference. Admins are not assigned per conference; their role implies the
// full conference-scoped grant.
var adminConferenceGrants = map[string]bool{
	"conferences.view":   true,
	"conferences.create": true,
	"conferences.update": true,
	"conferences.delete": true,
	"conferences.manage": true,
	"attendees.view":     true,
	"attendees.manage":   true,
	"checkin.manage":     true,
	"sessions.view":      true,
	"sessions.manage":    true,
	"analytics.view":     true,
	"networking.view":    true,
	"venue.view":         true,
	"badges.view":        true,
	"mobile.view":        true,
}
