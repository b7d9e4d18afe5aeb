package access

import (
	"encoding/json"
	"testing"
)

func TestNormalizePermissionShapes(t *testing.T) {
	tests := []struct {
		name        string
		permissions string
		want        map[string]bool
	}{
		{
			name:        "native object",
			permissions: `{"sessions.view":true,"checkin.manage":false}`,
			want:        map[string]bool{"sessions.view": true},
		},
		{
			name:        "json-encoded string",
			permissions: `"{\"sessions.view\":true,\"badges.view\":true}"`,
			want:        map[string]bool{"sessions.view": true, "badges.view": true},
		},
		{
			name:        "integer truthiness inside map",
			permissions: `{"sessions.view":1,"badges.view":0}`,
			want:        map[string]bool{"sessions.view": true},
		},
		{
			name:        "null",
			permissions: `null`,
			want:        map[string]bool{},
		},
		{
			name:        "garbage",
			permissions: `"not json at all"`,
			want:        map[string]bool{},
		},
		{
			name:        "empty",
			permissions: ``,
			want:        map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawAssignment{
				ConferenceID: 7,
				Permissions:  json.RawMessage(tt.permissions),
				IsActive:     json.RawMessage(`true`),
			}
			got := raw.Normalize()
			if len(got.Permissions) != len(tt.want) {
				t.Fatalf("got %v, want %v", got.Permissions, tt.want)
			}
			for code := range tt.want {
				if !got.Permissions[code] {
					t.Errorf("missing grant %s in %v", code, got.Permissions)
				}
			}
		})
	}
}

func TestNormalizeActiveShapes(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`2`, false},
		{``, false},
		{`"yes"`, false},
	}

	for _, tt := range tests {
		raw := RawAssignment{ConferenceID: 1, IsActive: json.RawMessage(tt.raw)}
		if got := raw.Normalize().Active; got != tt.want {
			t.Errorf("isActive %q: got %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeNamePlaceholder(t *testing.T) {
	raw := RawAssignment{ConferenceID: 42}
	if got := raw.Normalize().ConferenceName; got != "Conference #42" {
		t.Errorf("got %q", got)
	}

	raw.ConferenceName = "DevConf"
	if got := raw.Normalize().ConferenceName; got != "DevConf" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeAllDropsDuplicates(t *testing.T) {
	raw := []RawAssignment{
		{ConferenceID: 7, ConferenceName: "first"},
		{ConferenceID: 3, ConferenceName: "other"},
		{ConferenceID: 7, ConferenceName: "dup"},
	}
	got := NormalizeAll(raw)
	if len(got) != 2 {
		t.Fatalf("got %d assignments, want 2", len(got))
	}
	if got[0].ConferenceName != "first" {
		t.Errorf("first occurrence should win, got %q", got[0].ConferenceName)
	}
}
