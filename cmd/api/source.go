package main

import (
	"context"
	"encoding/json"

	"confms/internal/access"
	"confms/internal/domain/storage"
)

// sessionSource feeds permission sessions from the assignment and conference
// stores. It hands rows to the access layer untouched so all shape tolerance
// lives in one place.
type sessionSource struct {
	store *storage.Container
}

func newSessionSource(store *storage.Container) *sessionSource {
	return &sessionSource{store: store}
}

func (s *sessionSource) MyAssignments(ctx context.Context, userID int64) ([]access.RawAssignment, error) {
	rows, err := s.store.Assignments.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]access.RawAssignment, 0, len(rows))
	for _, row := range rows {
		active, _ := json.Marshal(row.IsActive)
		out = append(out, access.RawAssignment{
			ConferenceID:   row.ConferenceID,
			ConferenceName: row.ConferenceName,
			Permissions:    row.Permissions,
			IsActive:       active,
		})
	}
	return out, nil
}

func (s *sessionSource) Conferences(ctx context.Context) ([]access.ConferenceRef, error) {
	refs, err := s.store.Conferences.ListRefs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]access.ConferenceRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, access.ConferenceRef{ID: ref.ID, Name: ref.Name})
	}
	return out, nil
}
