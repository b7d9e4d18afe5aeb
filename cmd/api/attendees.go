package main

import (
	"net/http"
	"strconv"
	"time"

	"confms/internal/domain/registrations"
	"confms/internal/params"
	"confms/internal/registration"

	"github.com/go-chi/chi/v5"
)

// AttendeeResponse is one attendee row with the status derived from their
// full registration history.
type AttendeeResponse struct {
	registrations.Attendee
	Status           registration.Status `json:"status"`
	LastCheckinTime  *time.Time          `json:"last_checkin_time,omitempty"`
	LastCheckoutTime *time.Time          `json:"last_checkout_time,omitempty"`
	RecordCount      int                 `json:"record_count"`
}

// toRecords adapts stored rows to the resolver's input shape.
func toRecords(rows []registrations.Registration) []registration.Record {
	records := make([]registration.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, registration.Record{
			ConferenceID:     row.ConferenceID,
			Status:           row.Status,
			RegistrationDate: row.RegistrationDate,
		})
	}
	return records
}

// listAttendeesHandler godoc
//
//	@Summary		List conference attendees
//	@Description	Lists attendees for a conference with their aggregate registration status. Staff and admins only. Supports ?search= over name and email.
//	@Tags			attendees
//	@Produce		json
//	@Param			conferenceID	path		int		true	"Conference ID"
//	@Param			page			query		int		false	"Page"
//	@Param			limit			query		int		false	"Page size"
//	@Param			search			query		string	false	"Name or email search"
//	@Success		200				{array}		AttendeeResponse
//	@Failure		500				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID}/attendees [get]
func (app *application) listAttendeesHandler(w http.ResponseWriter, r *http.Request) {
	conferenceID, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	q := r.URL.Query()
	p := params.ParsePagination(q)

	attendees, total, err := app.store.Registrations.ListAttendees(r.Context(), conferenceID, q.Get("search"), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	userIDs := make([]int64, 0, len(attendees))
	for _, a := range attendees {
		userIDs = append(userIDs, a.UserID)
	}

	history := map[int64][]registrations.Registration{}
	if len(userIDs) > 0 {
		history, err = app.store.Registrations.HistoryForUsers(r.Context(), conferenceID, userIDs)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	resp := make([]AttendeeResponse, 0, len(attendees))
	for _, a := range attendees {
		rows := history[a.UserID]
		agg := registration.Resolve(toRecords(rows))
		resp = append(resp, AttendeeResponse{
			Attendee:         a,
			Status:           agg.Status,
			LastCheckinTime:  agg.LastCheckinTime,
			LastCheckoutTime: agg.LastCheckoutTime,
			RecordCount:      len(rows),
		})
	}

	out := map[string]any{
		"attendees":  resp,
		"pagination": p,
	}
	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RegisterAttendeePayload struct {
	UserID int64  `json:"user_id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=registered checked-in checked-out cancelled no-show"`
}

// registerAttendeeHandler godoc
//
//	@Summary		Record a registration event
//	@Description	Appends a registration record for a user. Corrections are new records, not edits.
//	@Tags			attendees
//	@Accept			json
//	@Produce		json
//	@Param			conferenceID	path		int						true	"Conference ID"
//	@Param			payload			body		RegisterAttendeePayload	true	"Registration event"
//	@Success		201				{object}	registrations.Registration
//	@Failure		400				{object}	ErrorBadRequestResponse
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID}/attendees [post]
func (app *application) registerAttendeeHandler(w http.ResponseWriter, r *http.Request) {
	conferenceID, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}

	var payload RegisterAttendeePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	reg := &registrations.Registration{
		UserID:           payload.UserID,
		ConferenceID:     conferenceID,
		Status:           payload.Status,
		RegistrationDate: time.Now().UTC().Format(time.RFC3339),
	}
	if err := app.store.Registrations.Append(r.Context(), reg); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, reg); err != nil {
		app.internalServerError(w, r, err)
	}
}

// attendeeHistoryHandler godoc
//
//	@Summary		Get an attendee's registration history
//	@Description	Returns every stored record for one user at one conference plus the derived aggregate.
//	@Tags			attendees
//	@Produce		json
//	@Param			conferenceID	path		int	true	"Conference ID"
//	@Param			userID			path		int	true	"User ID"
//	@Success		200				{object}	map[string]any
//	@Failure		500				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/conferences/{conferenceID}/attendees/{userID}/history [get]
func (app *application) attendeeHistoryHandler(w http.ResponseWriter, r *http.Request) {
	conferenceID, err := strconv.ParseInt(chi.URLParam(r, "conferenceID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid conference ID")
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	rows, err := app.store.Registrations.ListForUserConference(r.Context(), userID, conferenceID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := map[string]any{
		"records":   rows,
		"aggregate": registration.Resolve(toRecords(rows)),
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
