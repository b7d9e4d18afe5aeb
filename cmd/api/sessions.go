package main

import (
	"net/http"
	"strconv"
	"time"

	"confms/internal/domain/confsessions"
	"confms/internal/params"

	"github.com/go-chi/chi/v5"
)

// listSessionsHandler godoc
//
//	@Summary		List conference sessions
//	@Description	Lists a conference's sessions ordered by start time.
//	@Tags			sessions
//	@Produce		json
//	@Param			conferenceID	path		int	true	"Conference ID"
//	@Param			page			query		int	false	"Page"
//	@Param			limit			query		int	false	"Page size"
//	@Success		200				{array}		confsessions.Session
//	@Failure		500				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID}/sessions [get]
func (app *application) listSessionsHandler(w http.ResponseWriter, r *http.Request) {
	conferenceID, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	p := params.ParsePagination(r.URL.Query())

	list, total, err := app.store.Sessions.ListForConference(r.Context(), conferenceID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	resp := map[string]any{
		"sessions":   list,
		"pagination": p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type SessionPayload struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Speaker     string    `json:"speaker" validate:"required,max=200"`
	Room        string    `json:"room" validate:"max=100"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

func (p SessionPayload) toSession(conferenceID int64) *confsessions.Session {
	s := &confsessions.Session{
		ConferenceID: conferenceID,
		Title:        p.Title,
		Speaker:      p.Speaker,
		StartsAt:     p.StartsAt,
		EndsAt:       p.EndsAt,
	}
	if p.Description != "" {
		s.Description.String, s.Description.Valid = p.Description, true
	}
	if p.Room != "" {
		s.Room.String, s.Room.Valid = p.Room, true
	}
	return s
}

// createSessionHandler godoc
//
//	@Summary		Create session
//	@Description	Schedules a session. Overlapping times in the same room are rejected.
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			conferenceID	path		int				true	"Conference ID"
//	@Param			payload			body		SessionPayload	true	"Session details"
//	@Success		201				{object}	confsessions.Session
//	@Failure		409				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID}/sessions [post]
func (app *application) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	conferenceID, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	var payload SessionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session := payload.toSession(conferenceID)
	if err := app.store.Sessions.Create(r.Context(), session); err != nil {
		switch err {
		case confsessions.ErrOverlap:
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateSessionHandler godoc
//
//	@Summary		Update session
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			conferenceID	path		int				true	"Conference ID"
//	@Param			sessionID		path		int				true	"Session ID"
//	@Param			payload			body		SessionPayload	true	"Session details"
//	@Success		200				{object}	confsessions.Session
//	@Failure		404				{object}	error
//	@Failure		409				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID}/sessions/{sessionID} [patch]
func (app *application) updateSessionHandler(w http.ResponseWriter, r *http.Request) {
	conferenceID, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	existing, err := app.store.Sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		switch err {
		case confsessions.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if existing.ConferenceID != conferenceID {
		app.notFoundResponse(w, r, confsessions.ErrNotFound)
		return
	}

	var payload SessionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session := payload.toSession(conferenceID)
	session.ID = sessionID

	if err := app.store.Sessions.Update(r.Context(), session); err != nil {
		switch err {
		case confsessions.ErrNotFound:
			app.notFoundResponse(w, r, err)
		case confsessions.ErrOverlap:
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteSessionHandler godoc
//
//	@Summary		Delete session
//	@Tags			sessions
//	@Produce		json
//	@Param			conferenceID	path		int	true	"Conference ID"
//	@Param			sessionID		path		int	true	"Session ID"
//	@Success		204				{string}	string	"No Content"
//	@Failure		404				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID}/sessions/{sessionID} [delete]
func (app *application) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	conferenceID, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	existing, err := app.store.Sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		switch err {
		case confsessions.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if existing.ConferenceID != conferenceID {
		app.notFoundResponse(w, r, confsessions.ErrNotFound)
		return
	}

	if err := app.store.Sessions.Delete(r.Context(), sessionID); err != nil {
		switch err {
		case confsessions.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
