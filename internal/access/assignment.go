package access

import (
	"encoding/json"
	"fmt"
)

// Assignment is one user's scoped grant for one conference, normalized from
// whatever shape the backend sent. A user holds at most one assignment per
// conference id.
type Assignment struct {
	ConferenceID   int64           `json:"conferenceId"`
	ConferenceName string          `json:"conferenceName"`
	Permissions    map[string]bool `json:"permissions"`
	Active         bool            `json:"isActive"`
}

// Grants reports whether the assignment carries an explicit true entry for
// code. Absent keys are false.
func (a Assignment) Grants(code string) bool {
	return a.Permissions[code]
}

// RawAssignment is the wire shape of an assignment row. Older backend rows
// store the permission map as a JSON-encoded string and the active flag as
// 0/1; newer rows use a native object and a boolean. Both are accepted.
type RawAssignment struct {
	ConferenceID   int64           `json:"conferenceId"`
	ConferenceName string          `json:"conferenceName"`
	Permissions    json.RawMessage `json:"permissions"`
	IsActive       json.RawMessage `json:"isActive"`
}

// Normalize converts a raw assignment into the single typed shape the
// resolver works with. Malformed permission payloads degrade to an empty map
// rather than failing the whole list; the shape ambiguity must not leak past
// this boundary.
func (r RawAssignment) Normalize() Assignment {
	a := Assignment{
		ConferenceID:   r.ConferenceID,
		ConferenceName: r.ConferenceName,
		Permissions:    parsePermissions(r.Permissions),
		Active:         parseActive(r.IsActive),
	}
	if a.ConferenceName == "" {
		a.ConferenceName = fmt.Sprintf("Conference #%d", a.ConferenceID)
	}
	return a
}

// NormalizeAll maps Normalize over a raw list, dropping duplicate conference
// ids (first occurrence wins, matching the server-side uniqueness invariant).
func NormalizeAll(raw []RawAssignment) []Assignment {
	out := make([]Assignment, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for _, r := range raw {
		if seen[r.ConferenceID] {
			continue
		}
		seen[r.ConferenceID] = true
		out = append(out, r.Normalize())
	}
	return out
}

func parsePermissions(raw json.RawMessage) map[string]bool {
	if len(raw) == 0 {
		return map[string]bool{}
	}

	// Native object form.
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err == nil {
		return coerceGrants(m)
	}

	// JSON-encoded string form: unquote, then parse the inner document.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &m); err == nil {
			return coerceGrants(m)
		}
	}

	return map[string]bool{}
}

// coerceGrants keeps only entries that are affirmatively true. Backends have
// historically stored both booleans and 0/1 integers in the same map.
func coerceGrants(m map[string]any) map[string]bool {
	out := make(map[string]bool, len(m))
	for code, v := range m {
		switch t := v.(type) {
		case bool:
			if t {
				out[code] = true
			}
		case float64:
			if t == 1 {
				out[code] = true
			}
		}
	}
	return out
}

func parseActive(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n == 1
	}
	return false
}
