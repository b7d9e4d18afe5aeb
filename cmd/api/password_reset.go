package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"confms/internal/domain/users"
	"confms/internal/mailer"

	"github.com/google/uuid"
)

type RequestResetPasswordPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// requestResetPasswordHandler godoc
//
//	@Summary		Request a password reset
//	@Description	Issues a short-lived reset token and mails a reset link to the user.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RequestResetPasswordPayload	true	"Account email"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		404		{object}	error
//	@Router			/authentication/reset-password [post]
func (app *application) requestResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload RequestResetPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	user, err := app.store.Users.GetByEmail(ctx, payload.Email)
	if err != nil {
		switch err {
		case users.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Only the hash is stored; the plain token travels in the email link.
	resetToken := uuid.New().String()
	hash := sha256.Sum256([]byte(resetToken))
	hashToken := hex.EncodeToString(hash[:])
	resetTokenExpires := time.Now().UTC().Add(3 * time.Hour)

	if err := app.store.Users.UpdateResetToken(ctx, payload.Email, hashToken, resetTokenExpires); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password/?token=%s", app.config.frontendURL, resetToken)
	vars := struct {
		Username string
		ResetURL string
	}{
		Username: user.FirstName,
		ResetURL: resetURL,
	}

	status, err := app.mailer.Send(mailer.ResetPasswordTemplate, user.FirstName, payload.Email, vars)
	if err != nil {
		app.logger.Errorw("sending reset password email", "email", payload.Email, "error", err)
		app.internalServerError(w, r, err)
		return
	}
	app.logger.Infow("reset password email sent", "status code", status)

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "reset token sent"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ResetPasswordPayload struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// resetPasswordHandler godoc
//
//	@Summary		Reset password
//	@Description	Sets a new password using a token from the reset email.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ResetPasswordPayload	true	"Token and new password"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Router			/authentication/reset-password [patch]
func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ResetPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	hash := sha256.Sum256([]byte(payload.Token))
	hashToken := hex.EncodeToString(hash[:])

	user, err := app.store.Users.GetByResetToken(ctx, hashToken)
	if err != nil {
		switch err {
		case users.ErrNotFound:
			app.badRequestResponse(w, r, errors.New("invalid or expired token"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if time.Now().UTC().After(user.ResetPasswordExpires.UTC()) {
		app.badRequestResponse(w, r, errors.New("invalid or expired token"))
		return
	}

	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.UpdatePassword(ctx, user.ID, user); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// A password reset invalidates any outstanding refresh token.
	if err := app.store.Users.DeleteRefreshToken(ctx, user.ID); err != nil {
		app.logger.Errorw("clearing refresh token after reset", "user_id", user.ID, "error", err)
	}
	app.access.Evict(user.ID)

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset successful"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
