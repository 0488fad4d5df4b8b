package handler

import (
	"net/http"

	"github.com/readsync/kosync-server/internal/model"
)

// handleError maps a service error to its wire status and message. The
// validation failures (incomplete/missing document) intentionally map
// to 500 rather than 400: existing clients depend on the original
// server's behavior here, so the quirk is preserved.
func handleError(w http.ResponseWriter, err error) {
	switch err {
	case model.ErrMissingCredentials, model.ErrBadSecret:
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
	case model.ErrUnknownUser:
		writeJSON(w, http.StatusForbidden, messageResponse{Message: "Forbidden"})
	case model.ErrRegistrationClosed:
		writeJSON(w, http.StatusForbidden, messageResponse{Message: "This server is currently not accepting new registrations."})
	case model.ErrInvalidRequest:
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request"})
	case model.ErrDuplicateUser:
		writeJSON(w, http.StatusConflict, messageResponse{Message: "Username is already registered."})
	case model.ErrNotFound:
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Unknown server error"})
	}
}
