package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"confms/internal/domain/badges"
	"confms/internal/domain/registrations"
	"confms/internal/domain/storage"
	"confms/internal/notifications"
	"confms/internal/registration"
)

type ScanBadgePayload struct {
	Code string `json:"code" validate:"required"`
}

// ScanResponse reports the scan outcome plus the attendee's new aggregate
// status for the conference the badge belongs to.
type ScanResponse struct {
	Badge        *badges.Badge       `json:"badge"`
	Status       registration.Status `json:"status"`
	ConferenceID int64               `json:"conference_id"`
	UserID       int64               `json:"user_id"`
}

// scanBadgeHandler godoc
//
//	@Summary		Scan a badge
//	@Description	Scans a badge code at the door. A scan toggles the attendee between checked-in and checked-out by appending a registration record. The caller needs the checkin.manage grant for the badge's conference.
//	@Tags			checkin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ScanBadgePayload	true	"Badge code"
//	@Success		200		{object}	ScanResponse
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/checkin/scan [post]
func (app *application) scanBadgeHandler(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r)
	if session == nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("no permission session"))
		return
	}

	var payload ScanBadgePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	badge, err := app.store.Badges.GetByCode(r.Context(), payload.Code)
	if err != nil {
		switch err {
		case badges.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// The badge decides which conference's grant is needed, not the
	// scanner's current selection.
	if !session.HasConferencePermission("checkin.manage", badge.ConferenceID) {
		app.forbiddenResponse(w, r)
		return
	}

	history, err := app.store.Registrations.ListForUserConference(r.Context(), badge.UserID, badge.ConferenceID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	current := registration.Resolve(toRecords(history))
	next := "checked-in"
	if current.Status == registration.StatusCheckedIn {
		next = "checked-out"
	}

	reg := &registrations.Registration{
		UserID:           badge.UserID,
		ConferenceID:     badge.ConferenceID,
		Status:           next,
		RegistrationDate: time.Now().UTC().Format(time.RFC3339),
	}

	err = app.store.WithCheckinTx(r.Context(), func(s *storage.CheckinTx) error {
		if err := s.Registrations.Append(r.Context(), reg); err != nil {
			return err
		}
		return s.Badges.RecordScan(r.Context(), badge.ID)
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	badge.ScanCount++

	conferenceName := session.GetConferenceName(badge.ConferenceID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := notifications.SendCheckinConfirmation(ctx, app.push, app.store, badge.UserID, badge.ConferenceID, conferenceName, next); err != nil {
			app.logger.Errorw("sending check-in notification", "user_id", badge.UserID, "error", err)
		}
	}()

	resp := ScanResponse{
		Badge:        badge,
		Status:       registration.Status(next),
		ConferenceID: badge.ConferenceID,
		UserID:       badge.UserID,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
