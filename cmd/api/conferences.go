package main

import (
	"net/http"
	"strconv"
	"time"

	"confms/internal/domain/conferences"
	"confms/internal/params"

	"github.com/go-chi/chi/v5"
)

type CreateConferencePayload struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Venue       string    `json:"venue" validate:"max=200"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// createConferenceHandler godoc
//
//	@Summary		Create conference
//	@Description	Creates a conference. Admin only.
//	@Tags			conferences
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateConferencePayload	true	"Conference details"
//	@Success		201		{object}	conferences.Conference
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences [post]
func (app *application) createConferenceHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateConferencePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	conf := &conferences.Conference{
		Name:      payload.Name,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
		IsActive:  true,
	}
	if payload.Description != "" {
		conf.Description.String, conf.Description.Valid = payload.Description, true
	}
	if payload.Venue != "" {
		conf.Venue.String, conf.Venue.Valid = payload.Venue, true
	}

	if err := app.store.Conferences.Create(r.Context(), conf); err != nil {
		switch err {
		case conferences.ErrDuplicateName:
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// New conference means new synthesized grants for admin sessions.
	app.access.NotifyPermissionsChanged()

	if err := app.jsonResponse(w, http.StatusCreated, conf); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listConferencesHandler godoc
//
//	@Summary		List conferences
//	@Description	Lists conferences with pagination. Supports ?search= and ?active=true.
//	@Tags			conferences
//	@Produce		json
//	@Param			page	query		int		false	"Page"
//	@Param			limit	query		int		false	"Page size"
//	@Param			search	query		string	false	"Name or venue search"
//	@Param			active	query		bool	false	"Active conferences only"
//	@Success		200		{array}		conferences.Conference
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences [get]
func (app *application) listConferencesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	filters := conferences.Filters{
		Search:     q.Get("search"),
		ActiveOnly: q.Get("active") == "true",
	}

	list, total, err := app.store.Conferences.List(r.Context(), filters, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	resp := map[string]any{
		"conferences": list,
		"pagination":  p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getConferenceHandler godoc
//
//	@Summary		Get conference
//	@Tags			conferences
//	@Produce		json
//	@Param			conferenceID	path		int	true	"Conference ID"
//	@Success		200				{object}	conferences.Conference
//	@Failure		404				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID} [get]
func (app *application) getConferenceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	conf, err := app.store.Conferences.GetByID(r.Context(), id)
	if err != nil {
		switch err {
		case conferences.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, conf); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateConferencePayload struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Venue       string    `json:"venue" validate:"max=200"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// updateConferenceHandler godoc
//
//	@Summary		Update conference
//	@Description	Updates conference details. Admin only.
//	@Tags			conferences
//	@Accept			json
//	@Produce		json
//	@Param			conferenceID	path		int						true	"Conference ID"
//	@Param			payload			body		UpdateConferencePayload	true	"Conference details"
//	@Success		200				{object}	conferences.Conference
//	@Failure		404				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID} [patch]
func (app *application) updateConferenceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	var payload UpdateConferencePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	conf := &conferences.Conference{
		ID:        id,
		Name:      payload.Name,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
	}
	if payload.Description != "" {
		conf.Description.String, conf.Description.Valid = payload.Description, true
	}
	if payload.Venue != "" {
		conf.Venue.String, conf.Venue.Valid = payload.Venue, true
	}

	if err := app.store.Conferences.Update(r.Context(), conf); err != nil {
		switch err {
		case conferences.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Conference names are embedded in cached assignments.
	app.access.NotifyPermissionsChanged()

	if err := app.jsonResponse(w, http.StatusOK, conf); err != nil {
		app.internalServerError(w, r, err)
	}
}

type SetActivePayload struct {
	Active *bool `json:"active" validate:"required"`
}

// setConferenceActiveHandler godoc
//
//	@Summary		Activate or deactivate conference
//	@Description	Toggles a conference's active flag. Admin only. Deactivating revokes conference access for everyone.
//	@Tags			conferences
//	@Accept			json
//	@Produce		json
//	@Param			conferenceID	path		int					true	"Conference ID"
//	@Param			payload			body		SetActivePayload	true	"Active flag"
//	@Success		204				{string}	string	"No Content"
//	@Failure		404				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID}/active [patch]
func (app *application) setConferenceActiveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	var payload SetActivePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Conferences.SetActive(r.Context(), id, *payload.Active); err != nil {
		switch err {
		case conferences.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.access.NotifyPermissionsChanged()

	w.WriteHeader(http.StatusNoContent)
}

// deleteConferenceHandler godoc
//
//	@Summary		Delete conference
//	@Description	Deletes a conference and its dependent rows. Admin only.
//	@Tags			conferences
//	@Produce		json
//	@Param			conferenceID	path		int	true	"Conference ID"
//	@Success		204				{string}	string	"No Content"
//	@Failure		404				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID} [delete]
func (app *application) deleteConferenceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	if err := app.store.Conferences.Delete(r.Context(), id); err != nil {
		switch err {
		case conferences.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.access.NotifyPermissionsChanged()

	w.WriteHeader(http.StatusNoContent)
}
