package api

import (
	"net/http"
)

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{
		"version":          s.app.Version(),
		"minClientVersion": s.app.Config().MinClientVersion,
	})
}

type runJobRequest struct {
	JobName string `json:"job_name" validate:"required"`
}

func (s *Server) handleRunAdminJob(w http.ResponseWriter, r *http.Request) {
	var payload runJobRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	err := s.app.JobManager().RunJob(payload.JobName, s.app)
	if err != nil {
		RespondWithError(w, http.StatusConflict, err.Error()) // 409 Conflict if a job is already running
		return
	}

	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Job '" + payload.JobName + "' started successfully.",
	})
}

func (s *Server) handleGetAdminJobsStatus(w http.ResponseWriter, r *http.Request) {
	statuses := s.app.JobManager().GetStatus()
	RespondWithJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	universityID := r.URL.Query().Get("universityId")
	if universityID != "" {
		if _, err := s.store.GetUniversity(universityID); err != nil {
			respondWithServiceError(w, err)
			return
		}
	}
	metrics, err := s.store.GetDashboardMetrics(universityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, metrics)
}
