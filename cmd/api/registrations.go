package main

import (
	"net/http"

	"confms/internal/domain/registrations"
	"confms/internal/registration"
)

// MyRegistrationResponse groups the caller's records for one conference with
// the derived aggregate status.
type MyRegistrationResponse struct {
	ConferenceID   int64                        `json:"conference_id"`
	ConferenceName string                       `json:"conference_name,omitempty"`
	Aggregate      registration.Aggregate       `json:"aggregate"`
	Records        []registrations.Registration `json:"records"`
}

// myRegistrationsHandler godoc
//
//	@Summary		My registrations
//	@Description	Returns the caller's registration records grouped per conference, each with its aggregate status.
//	@Tags			registrations
//	@Produce		json
//	@Success		200	{array}		MyRegistrationResponse
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/registrations/me [get]
func (app *application) myRegistrationsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	session := getSessionFromContext(r)

	rows, err := app.store.Registrations.ListForUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	grouped := make(map[int64][]registrations.Registration)
	order := make([]int64, 0)
	for _, row := range rows {
		if _, seen := grouped[row.ConferenceID]; !seen {
			order = append(order, row.ConferenceID)
		}
		grouped[row.ConferenceID] = append(grouped[row.ConferenceID], row)
	}

	resp := make([]MyRegistrationResponse, 0, len(order))
	for _, conferenceID := range order {
		confRows := grouped[conferenceID]
		entry := MyRegistrationResponse{
			ConferenceID: conferenceID,
			Aggregate:    registration.Resolve(toRecords(confRows)),
			Records:      confRows,
		}
		if session != nil {
			entry.ConferenceName = session.GetConferenceName(conferenceID)
		}
		resp = append(resp, entry)
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
