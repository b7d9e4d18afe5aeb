package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"confms/internal/domain/assignments"
	"confms/internal/params"

	"github.com/go-chi/chi/v5"
)

// getMyAssignmentsHandler godoc
//
//	@Summary		List my conference assignments
//	@Description	Returns the caller's raw assignment rows, including inactive ones, with permission grants as stored.
//	@Tags			assignments
//	@Produce		json
//	@Success		200	{array}		assignments.Assignment
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/assignments/me [get]
func (app *application) getMyAssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	rows, err := app.store.Assignments.ListForUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, rows); err != nil {
		app.internalServerError(w, r, err)
	}
}

type SwitchConferencePayload struct {
	ConferenceID int64 `json:"conference_id" validate:"required"`
}

// switchConferenceHandler godoc
//
//	@Summary		Switch current conference
//	@Description	Changes the caller's current conference selection. The target must be an active assignment; otherwise the selection is left alone and the current state is returned.
//	@Tags			assignments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		SwitchConferencePayload	true	"Target conference"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Security		ApiKeyAuth
//	@Router			/assignments/switch [post]
func (app *application) switchConferenceHandler(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r)
	if session == nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("no permission session"))
		return
	}

	var payload SwitchConferencePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session.SwitchConference(payload.ConferenceID)

	resp := map[string]any{
		"current_conference_id": session.CurrentConferenceID(),
		"switched":              session.CurrentConferenceID() == payload.ConferenceID,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpsertAssignmentPayload struct {
	UserID       int64           `json:"user_id" validate:"required"`
	ConferenceID int64           `json:"conference_id" validate:"required"`
	Permissions  json.RawMessage `json:"permissions" validate:"required"`
	IsActive     *bool           `json:"is_active" validate:"required"`
}

// upsertAssignmentHandler godoc
//
//	@Summary		Create or replace an assignment
//	@Description	Grants a user conference-scoped permissions, replacing any existing assignment for the same user and conference. Admin only.
//	@Tags			assignments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpsertAssignmentPayload	true	"Assignment"
//	@Success		200		{object}	assignments.Assignment
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/assignments [put]
func (app *application) upsertAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	var payload UpsertAssignmentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	a := &assignments.Assignment{
		UserID:       payload.UserID,
		ConferenceID: payload.ConferenceID,
		Permissions:  payload.Permissions,
		IsActive:     *payload.IsActive,
	}

	if err := app.store.Assignments.Upsert(r.Context(), a); err != nil {
		switch err {
		case assignments.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// The target user's cached session is stale the moment grants change.
	app.access.Evict(payload.UserID)
	app.access.NotifyPermissionsChanged()

	if err := app.jsonResponse(w, http.StatusOK, a); err != nil {
		app.internalServerError(w, r, err)
	}
}

type DeactivateAssignmentPayload struct {
	UserID       int64 `json:"user_id" validate:"required"`
	ConferenceID int64 `json:"conference_id" validate:"required"`
}

// deactivateAssignmentHandler godoc
//
//	@Summary		Deactivate an assignment
//	@Description	Marks an assignment inactive without deleting the stored grants. Admin only.
//	@Tags			assignments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		DeactivateAssignmentPayload	true	"Assignment to deactivate"
//	@Success		204		{string}	string	"No Content"
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/assignments/deactivate [patch]
func (app *application) deactivateAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	var payload DeactivateAssignmentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Assignments.SetActive(r.Context(), payload.UserID, payload.ConferenceID, false); err != nil {
		switch err {
		case assignments.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.access.Evict(payload.UserID)
	app.access.NotifyPermissionsChanged()

	w.WriteHeader(http.StatusNoContent)
}

// deleteAssignmentHandler godoc
//
//	@Summary		Delete an assignment
//	@Tags			assignments
//	@Produce		json
//	@Param			assignmentID	path		int	true	"Assignment ID"
//	@Success		204				{string}	string	"No Content"
//	@Failure		404				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/assignments/{assignmentID} [delete]
func (app *application) deleteAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "assignmentID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}

	a, err := app.store.Assignments.GetByID(r.Context(), id)
	if err != nil {
		switch err {
		case assignments.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.store.Assignments.Delete(r.Context(), id); err != nil {
		switch err {
		case assignments.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.access.Evict(a.UserID)
	app.access.NotifyPermissionsChanged()

	w.WriteHeader(http.StatusNoContent)
}

// listConferenceAssignmentsHandler godoc
//
//	@Summary		List assignments for a conference
//	@Description	Lists every user assigned to a conference, with pagination. Admin only.
//	@Tags			assignments
//	@Produce		json
//	@Param			conferenceID	path		int	true	"Conference ID"
//	@Param			page			query		int	false	"Page"
//	@Param			limit			query		int	false	"Page size"
//	@Success		200				{array}		assignments.Assignment
//	@Failure		500				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/assignments/conference/{conferenceID} [get]
func (app *application) listConferenceAssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	conferenceID, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	p := params.ParsePagination(r.URL.Query())

	rows, total, err := app.store.Assignments.ListForConference(r.Context(), conferenceID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	resp := map[string]any{
		"assignments": rows,
		"pagination":  p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
