package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"confms/internal/access"
	"confms/internal/domain/users"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"
)

// CurrentUserResponse is the authenticated user plus everything the client
// needs to render: role permission codes, the conference selection, and the
// active assignments.
type CurrentUserResponse struct {
	User                *users.User         `json:"user"`
	Role                string              `json:"role"`
	Permissions         []string            `json:"permissions"`
	CurrentConferenceID int64               `json:"current_conference_id"`
	Conferences         []access.Assignment `json:"conferences"`
	Loaded              bool                `json:"loaded"`
}

// getCurrentUserHandler godoc
//
//	@Summary		Current user
//	@Description	Returns the authenticated user with role permissions and conference assignments.
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	CurrentUserResponse
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	session := getSessionFromContext(r)

	resp := CurrentUserResponse{
		User: user,
		Role: user.Role,
	}
	if session != nil {
		resp.Permissions = access.RolePermissionCodes(session.Role)
		resp.CurrentConferenceID = session.CurrentConferenceID()
		resp.Conferences = session.GetAvailableConferences()
		resp.Loaded = session.Loaded()
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// refreshPermissionsHandler godoc
//
//	@Summary		Refresh permissions
//	@Description	Re-fetches the user's conference assignments from storage.
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	CurrentUserResponse
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/me/refresh-permissions [post]
func (app *application) refreshPermissionsHandler(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r)
	if session == nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("no permission session"))
		return
	}

	if err := session.Refresh(r.Context()); err != nil {
		app.logger.Errorw("refreshing permissions", "user_id", session.UserID, "error", err)
	}

	app.getCurrentUserHandler(w, r)
}

// activateUserHandler godoc
//
//	@Summary		Activates a user
//	@Description	Activates a user account via the emailed invitation token.
//	@Tags			users
//	@Produce		json
//	@Param			token	path		string	true	"Invitation token"
//	@Success		204		{string}	string	"User activated"
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Router			/users/activate/{token} [put]
func (app *application) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	err := app.store.Users.Activate(r.Context(), token)
	if err != nil {
		switch err {
		case users.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusNoContent, ""); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadProfilePictureHandler godoc
//
//	@Summary		Upload profile picture
//	@Description	Uploads a user's profile picture and saves the URL in the database
//	@Tags			users
//	@Accept			mpfd
//	@Produce		json
//	@Param			profile_picture	formData	file	true	"Profile picture file, size limit is 2MB"
//	@Success		200				{string}	string	"Profile picture uploaded successfully: <URL>"
//	@Failure		400				{object}	error	"Unable to parse form or retrieve file"
//	@Failure		500				{object}	error	"Upload or database failure"
//	@Security		ApiKeyAuth
//	@Router			/users/profile-picture [post]
func (app *application) uploadProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := r.ParseMultipartForm(2 << 20); err != nil {
		http.Error(w, "Unable to parse form, file size limit is 2MB", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("profile_picture")
	if err != nil {
		http.Error(w, "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		http.Error(w, "Only JPEG and PNG images are allowed", http.StatusBadRequest)
		return
	}

	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("/%d", user.ID),
		Overwrite:      api.Bool(true),
		Folder:         "profile_pictures",
		Transformation: "w_300,h_300,c_fill,q_auto",
	}
	uploadResult, err := app.cld.Upload.Upload(context.Background(), file, uploadParams)
	if err != nil {
		http.Error(w, "Failed to upload image", http.StatusInternalServerError)
		return
	}

	if err := app.store.Users.SetProfile(r.Context(), uploadResult.SecureURL, user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf("Profile picture uploaded successfully: %s", uploadResult.SecureURL)))
}

// updateProfilePictureHandler godoc
//
//	@Summary		Update profile picture
//	@Description	Replaces the user's profile picture and deletes the old one from Cloudinary
//	@Tags			users
//	@Accept			mpfd
//	@Produce		json
//	@Param			profile_picture	formData	file	true	"Profile picture file (max size: 2MB)"
//	@Success		200				{string}	string	"Profile picture updated successfully: <URL>"
//	@Failure		400				{object}	error	"Unable to parse form or retrieve file"
//	@Failure		500				{object}	error	"Upload, database, or cleanup failure"
//	@Security		ApiKeyAuth
//	@Router			/users/profile-picture [put]
func (app *application) updateProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := r.ParseMultipartForm(2 << 20); err != nil {
		http.Error(w, "Unable to parse form, file size limit is 2MB", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("profile_picture")
	if err != nil {
		http.Error(w, "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	oldURL, err := app.store.Users.GetProfileUrl(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("/%d", user.ID),
		Overwrite:      api.Bool(true),
		Folder:         "profile_pictures",
		Transformation: "w_300,h_300,c_fill,q_auto",
	}
	uploadResult, err := app.cld.Upload.Upload(context.Background(), file, uploadParams)
	if err != nil {
		http.Error(w, "Failed to upload image", http.StatusInternalServerError)
		return
	}

	if err := app.store.Users.SetProfile(r.Context(), uploadResult.SecureURL, user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if oldURL != nil && *oldURL != uploadResult.SecureURL {
		if err := app.deletePhotoFromCloudinary(*oldURL); err != nil {
			app.logger.Warnw("deleting old profile picture", "error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf("Profile picture updated successfully: %s", uploadResult.SecureURL)))
}

type PushTokenPayload struct {
	Token      string          `json:"token" validate:"required"`
	DeviceInfo json.RawMessage `json:"device_info"`
}

// registerPushTokenHandler godoc
//
//	@Summary		Register push token
//	@Description	Registers or refreshes an Expo push token for the user's device.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		PushTokenPayload	true	"Push token"
//	@Success		204		{string}	string	"No Content"
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/push-token [post]
func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.PushTokens.Register(r.Context(), user.ID, payload.Token, payload.DeviceInfo); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// removePushTokenHandler godoc
//
//	@Summary		Remove push token
//	@Description	Removes an Expo push token for the user's device.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		PushTokenPayload	true	"Push token"
//	@Success		204		{string}	string	"No Content"
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/push-token [delete]
func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.PushTokens.Remove(r.Context(), user.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
