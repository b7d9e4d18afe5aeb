package access

import (
	"context"
	"fmt"
	"sync"
)

// ConferenceRef identifies one conference for admin grant synthesis.
type ConferenceRef struct {
	ID   int64
	Name string
}

// AssignmentSource is what a session needs from the backend. The transport
// behind it (direct repository access, HTTP client) is the caller's business.
type AssignmentSource interface {
	// MyAssignments returns the raw assignment rows for a user. An empty
	// slice means no conference access.
	MyAssignments(ctx context.Context, userID int64) ([]RawAssignment, error)
	// Conferences lists every conference; used only for the admin role,
	// which is granted on all conferences without explicit assignment rows.
	Conferences(ctx context.Context) ([]ConferenceRef, error)
}

// Session holds one authenticated user's conference assignments and the
// current-conference selection. A session is single-writer: only Load,
// Refresh, SetHint and SwitchConference mutate it, and all permission queries
// are read-only projections safe for any number of concurrent readers.
//
// Until the first Load completes the session is in a distinct loading state:
// every permission query answers false, and callers must not present that as
// a denial (no redirect-to-login while loading).
type Session struct {
	UserID int64
	Role   Role

	source AssignmentSource

	mu          sync.RWMutex
	assignments []Assignment
	currentID   int64 // 0 means no conference selected
	hintID      int64 // deep-link hint, 0 when absent
	loaded      bool

	// generation guards against a stale in-flight fetch overwriting the
	// result of a newer one (last write wins on the assignment list).
	generation uint64
}

// NewSession creates an unloaded session. Call Load before querying; queries
// on an unloaded session answer false.
func NewSession(source AssignmentSource, userID int64, role Role) *Session {
	return &Session{
		UserID: userID,
		Role:   role,
		source: source,
	}
}

// Load fetches and normalizes the user's assignments, then re-resolves the
// current conference. Admins get an active synthesized assignment for every
// conference instead of stored rows. A fetch failure degrades to an empty
// list; no fallback grants are invented.
//
// Concurrent loads race safely: each fetch is stamped with a generation and
// only the newest generation may write its result, so a slow stale fetch can
// never clobber a fresher list. Coalescing of broadcast-driven refreshes is
// the Manager's job.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	assignments, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// A newer load superseded this one while it was in flight.
		return nil
	}
	if err != nil {
		s.assignments = nil
		s.loaded = true
		s.resolveLocked()
		return fmt.Errorf("loading conference assignments: %w", err)
	}
	s.assignments = assignments
	s.loaded = true
	s.resolveLocked()
	return nil
}

// Refresh re-fetches the assignment list, e.g. after a permissions-changed
// broadcast. Identical to Load; the name exists for call-site clarity.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Session) fetch(ctx context.Context) ([]Assignment, error) {
	if s.Role == RoleAdmin {
		refs, err := s.source.Conferences(ctx)
		if err != nil {
			return nil, err
		}
		assignments := make([]Assignment, 0, len(refs))
		for _, ref := range refs {
			name := ref.Name
			if name == "" {
				name = fmt.Sprintf("Conference #%d", ref.ID)
			}
			assignments = append(assignments, Assignment{
				ConferenceID:   ref.ID,
				ConferenceName: name,
				Permissions:    clonePermissions(adminConferenceGrants),
				Active:         true,
			})
		}
		return assignments, nil
	}

	raw, err := s.source.MyAssignments(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	return NormalizeAll(raw), nil
}

// SetHint records a requested conference id (typically from a ?conferenceId=
// query parameter) and re-resolves the selection. Zero or negative ids mean
// "no hint". An invalid hint is ignored by resolution, not an error.
func (s *Session) SetHint(conferenceID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conferenceID > 0 {
		s.hintID = conferenceID
	} else {
		s.hintID = 0
	}
	if s.loaded {
		s.resolveLocked()
	}
}

// resolveLocked picks the current conference. Order: a hint that matches an
// active assignment wins; otherwise a still-valid current selection is kept
// unchanged; otherwise the first active assignment; otherwise none.
func (s *Session) resolveLocked() {
	if s.hintID != 0 && s.activeLocked(s.hintID) {
		s.currentID = s.hintID
		return
	}
	if s.currentID != 0 && s.activeLocked(s.currentID) {
		return
	}
	for _, a := range s.assignments {
		if a.Active {
			s.currentID = a.ConferenceID
			return
		}
	}
	s.currentID = 0
}

func (s *Session) activeLocked(conferenceID int64) bool {
	for _, a := range s.assignments {
		if a.ConferenceID == conferenceID && a.Active {
			return true
		}
	}
	return false
}

// SwitchConference selects a different conference. An id the user cannot
// access is silently ignored; this is UI state, the server re-checks every
// request anyway.
func (s *Session) SwitchConference(conferenceID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeLocked(conferenceID) {
		s.currentID = conferenceID
		s.hintID = 0
	}
}

// CurrentConferenceID returns the selected conference id, or 0 when none is
// selected.
func (s *Session) CurrentConferenceID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// Loaded reports whether the first assignment fetch has completed. While
// false, every permission query answers false.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// HasPermission is the role-gated check: membership of code in the role's
// catalog permissions. It ignores conference assignments entirely.
func (s *Session) HasPermission(code string) bool {
	return RolePermissions(s.Role)[code]
}

// HasConferencePermission reports whether the user's assignment for the
// given conference (or the current conference when omitted) actively grants
// code. False while loading, false with no selection, false for inactive
// assignments.
func (s *Session) HasConferencePermission(code string, conferenceID ...int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return false
	}
	target := s.currentID
	if len(conferenceID) > 0 && conferenceID[0] > 0 {
		target = conferenceID[0]
	}
	if target == 0 {
		return false
	}
	for _, a := range s.assignments {
		if a.ConferenceID == target && a.Active {
			return a.Grants(code)
		}
	}
	return false
}

// HasAnyConferencePermission reports whether any active assignment grants
// code, regardless of the current selection. Used to decide whether a feature
// should exist at all before a conference is chosen.
func (s *Session) HasAnyConferencePermission(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return false
	}
	for _, a := range s.assignments {
		if a.Active && a.Grants(code) {
			return true
		}
	}
	return false
}

// HasAllConferencePermission reports whether every active assignment grants
// code. False when there are no active assignments.
func (s *Session) HasAllConferencePermission(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return false
	}
	any := false
	for _, a := range s.assignments {
		if !a.Active {
			continue
		}
		if !a.Grants(code) {
			return false
		}
		any = true
	}
	return any
}

// HasConferenceAccess reports whether the user holds an active assignment for
// the conference.
func (s *Session) HasConferenceAccess(conferenceID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked(conferenceID)
}

// GetAvailableConferences returns the active assignments in list order.
func (s *Session) GetAvailableConferences() []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if a.Active {
			out = append(out, a)
		}
	}
	return out
}

// GetConferenceName returns the assignment's conference name, or a
// placeholder for conferences the user has no assignment for.
func (s *Session) GetConferenceName(conferenceID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assignments {
		if a.ConferenceID == conferenceID {
			return a.ConferenceName
		}
	}
	return fmt.Sprintf("Conference #%d", conferenceID)
}

// GetCurrentConferencePermissions returns the active permission map for the
// current conference, or an empty map when nothing is selected.
func (s *Session) GetCurrentConferencePermissions() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissionsLocked(s.currentID)
}

// GetConferencePermissions returns the active permission map for a specific
// conference.
func (s *Session) GetConferencePermissions(conferenceID int64) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissionsLocked(conferenceID)
}

// permissionsLocked always hands out a copy so a mutating caller cannot
// corrupt the session's assignment state.
func (s *Session) permissionsLocked(conferenceID int64) map[string]bool {
	if conferenceID == 0 {
		return map[string]bool{}
	}
	for _, a := range s.assignments {
		if a.ConferenceID == conferenceID && a.Active {
			return clonePermissions(a.Permissions)
		}
	}
	return map[string]bool{}
}

func clonePermissions(perms map[string]bool) map[string]bool {
	out := make(map[string]bool, len(perms))
	for code, granted := range perms {
		out[code] = granted
	}
	return out
}
