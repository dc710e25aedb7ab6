package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
)

// passResponse adds the lifecycle events that currently apply to a pass.
type passResponse struct {
	*models.Pass
	AvailableEvents []string `json:"availableEvents"`
}

func newPassResponse(p *models.Pass) passResponse {
	return passResponse{Pass: p, AvailableEvents: passes.AvailableEvents(p.Status)}
}

type transitionRequest struct {
	Event string `json:"event" validate:"required,oneof=suspend reactivate expire revoke"`
}

type installRequest struct {
	Platform  string `json:"platform" validate:"required,oneof=apple google"`
	Installed *bool  `json:"installed,omitempty"`
}

func (s *Server) handleListPasses(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}
	query, err := getListParams(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	page, err := s.store.ListPasses(universityID, query)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreatePass(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}
	var input passes.CreatePassInput
	if !decodeJSON(w, r, &input) {
		return
	}
	pass, err := s.passes.Create(r.Context(), universityID, input)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, newPassResponse(pass))
}

func (s *Server) handleGetPassTemplate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUniversity(w, r); !ok {
		return
	}
	data, err := spreadsheet.Template(passes.ImportSchema)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pases-template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleGetPass(w http.ResponseWriter, r *http.Request) {
	pass, err := s.store.GetPass(chi.URLParam(r, "passID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newPassResponse(pass))
}

func (s *Server) handleTransitionPass(w http.ResponseWriter, r *http.Request) {
	var payload transitionRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	pass, err := s.passes.Transition(r.Context(), chi.URLParam(r, "passID"), payload.Event)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newPassResponse(pass))
}

func (s *Server) handleInstallPass(w http.ResponseWriter, r *http.Request) {
	var payload installRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	installed := payload.Installed == nil || *payload.Installed
	pass, err := s.passes.SetInstalled(r.Context(), chi.URLParam(r, "passID"), payload.Platform, installed)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newPassResponse(pass))
}

func (s *Server) handleDeletePass(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePass(chi.URLParam(r, "passID")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
