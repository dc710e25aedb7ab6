package api

import (
	"encoding/json"
	"net/http"

	"github.com/mimmersdev/pases-universitarios/internal/notifications"
)

func (s *Server) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}
	var payload notifications.SendInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	n, err := s.notifier.Send(r.Context(), universityID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, n)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}
	history, err := s.notifier.List(universityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, history)
}
