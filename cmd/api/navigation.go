package main

import (
	"fmt"
	"net/http"

	"confms/internal/nav"
)

// getNavigationHandler godoc
//
//	@Summary		Get navigation tree
//	@Description	Returns the navigation items and conference sections the caller may see, based on their role and conference grants. A ?conferenceId= hint selects the current conference before filtering.
//	@Tags			navigation
//	@Produce		json
//	@Param			conferenceId	query		int	false	"Conference to treat as current"
//	@Success		200				{object}	nav.Tree
//	@Failure		401				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/navigation [get]
func (app *application) getNavigationHandler(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r)
	if session == nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("no permission session"))
		return
	}

	tree := nav.Build(session)
	if err := app.jsonResponse(w, http.StatusOK, tree); err != nil {
		app.internalServerError(w, r, err)
	}
}
