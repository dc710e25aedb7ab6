// Helper functions for sending standardized JSON responses.

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/validation"
)

const internalErrorMessage = "Internal server error"

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError picks the status for an error coming out of the
// store or a service. Anything unexpected is logged and hidden behind a 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var (
		verr      *validation.Error
		ferr      *store.FilterError
		formatErr *spreadsheet.FormatError
		cellErr   *spreadsheet.ValidationError
	)
	switch {
	case errors.As(err, &verr):
		RespondWithJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &ferr), errors.As(err, &formatErr), errors.As(err, &cellErr),
		errors.Is(err, passes.ErrCareerNotFound):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInUse), errors.Is(err, passes.ErrInvalidTransition):
		RespondWithError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Unexpected error: %v", err)
		RespondWithError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}

// decodeJSON reads the request body into v and validates it. It writes the
// error response itself and reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	if err := validation.Struct(v); err != nil {
		respondWithServiceError(w, err)
		return false
	}
	return true
}
