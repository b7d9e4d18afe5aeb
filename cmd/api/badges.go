package main

import (
	"fmt"
	"net/http"
	"strconv"

	"confms/internal/badge"
	"confms/internal/domain/badges"

	"github.com/go-chi/chi/v5"
)

// getMyBadgeHandler godoc
//
//	@Summary		Get my badge
//	@Description	Returns the caller's badge for the current conference, minting one on first request. The code is stable across calls.
//	@Tags			badges
//	@Produce		json
//	@Param			conferenceId	query		int	false	"Conference to treat as current"
//	@Success		200				{object}	badges.Badge
//	@Failure		400				{object}	ErrorBadRequestResponse
//	@Security		ApiKeyAuth
//	@Router			/badges/me [get]
func (app *application) getMyBadgeHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	session := getSessionFromContext(r)
	if session == nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("no permission session"))
		return
	}

	conferenceID := session.CurrentConferenceID()
	if conferenceID == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("no conference selected"))
		return
	}

	code, err := app.badges.Encode(user.ID, conferenceID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	b := &badges.Badge{
		UserID:       user.ID,
		ConferenceID: conferenceID,
		Code:         code,
	}
	if err := app.store.Badges.Issue(r.Context(), b); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
		app.internalServerError(w, r, err)
	}
}

// badgeQRHandler godoc
//
//	@Summary		Badge QR image
//	@Description	Renders a badge code as a PNG QR image. Size is clamped server side.
//	@Tags			badges
//	@Produce		png
//	@Param			code	path		string	true	"Badge code"
//	@Param			size	query		int		false	"Image size in pixels"
//	@Success		200		{string}	binary	"PNG image"
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/badges/{code}/qr.png [get]
func (app *application) badgeQRHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	b, err := app.store.Badges.GetByCode(r.Context(), code)
	if err != nil {
		switch err {
		case badges.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		size, _ = strconv.Atoi(s)
	}
	if size > 1024 {
		size = 1024
	}

	png, err := badge.PNG(b.Code, size)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		app.logger.Errorw("writing badge image", "error", err)
	}
}
