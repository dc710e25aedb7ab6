// Cities, universities and the careers they offer.

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mimmersdev/pases-universitarios/internal/store"
)

type cityRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type universityRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	ShortName string `json:"shortName" validate:"max=32"`
	CityID    string `json:"cityId" validate:"required,uuid"`
}

type careerRequest struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=200"`
}

type careerUpdateRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (s *Server) handleListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.store.ListCities()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, cities)
}

func (s *Server) handleCreateCity(w http.ResponseWriter, r *http.Request) {
	var payload cityRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	city, err := s.store.CreateCity(payload.Name)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, city)
}

func (s *Server) handleUpdateCity(w http.ResponseWriter, r *http.Request) {
	var payload cityRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	cityID := chi.URLParam(r, "cityID")
	if err := s.store.UpdateCity(cityID, payload.Name); err != nil {
		respondWithServiceError(w, err)
		return
	}
	city, err := s.store.GetCity(cityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, city)
}

func (s *Server) handleDeleteCity(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCity(chi.URLParam(r, "cityID")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUniversities(w http.ResponseWriter, r *http.Request) {
	universities, err := s.store.ListUniversities()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, universities)
}

func (s *Server) handleGetUniversity(w http.ResponseWriter, r *http.Request) {
	university, err := s.store.GetUniversity(chi.URLParam(r, "universityID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, university)
}

// requireCity answers 400 when the payload names a city that does not exist.
func (s *Server) requireCity(w http.ResponseWriter, cityID string) bool {
	_, err := s.store.GetCity(cityID)
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(w, http.StatusBadRequest, "City not found")
		return false
	}
	if err != nil {
		respondWithServiceError(w, err)
		return false
	}
	return true
}

func (s *Server) handleCreateUniversity(w http.ResponseWriter, r *http.Request) {
	var payload universityRequest
	if !decodeJSON(w, r, &payload) || !s.requireCity(w, payload.CityID) {
		return
	}
	university, err := s.store.CreateUniversity(payload.Name, payload.ShortName, payload.CityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, university)
}

func (s *Server) handleUpdateUniversity(w http.ResponseWriter, r *http.Request) {
	var payload universityRequest
	if !decodeJSON(w, r, &payload) || !s.requireCity(w, payload.CityID) {
		return
	}
	university, err := s.store.UpdateUniversity(chi.URLParam(r, "universityID"), payload.Name, payload.ShortName, payload.CityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, university)
}

func (s *Server) handleDeleteUniversity(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUniversity(chi.URLParam(r, "universityID")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireUniversity answers 404 unless the {universityId} in the path exists.
func (s *Server) requireUniversity(w http.ResponseWriter, r *http.Request) (string, bool) {
	universityID := chi.URLParam(r, "universityId")
	ok, err := s.store.UniversityExists(universityID)
	if err != nil {
		respondWithServiceError(w, err)
		return "", false
	}
	if !ok {
		RespondWithError(w, http.StatusNotFound, "University not found")
		return "", false
	}
	return universityID, true
}

func (s *Server) handleListCareers(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}
	careers, err := s.store.ListCareers(universityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, careers)
}

func (s *Server) handleCreateCareer(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}
	var payload careerRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	career, err := s.store.CreateCareer(universityID, payload.ID, payload.Name)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, career)
}

func (s *Server) handleUpdateCareer(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}
	var payload careerUpdateRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	careerID := chi.URLParam(r, "careerID")
	if err := s.store.UpdateCareer(universityID, careerID, payload.Name); err != nil {
		respondWithServiceError(w, err)
		return
	}
	career, err := s.store.GetCareer(universityID, careerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, career)
}

func (s *Server) handleDeleteCareer(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteCareer(universityID, chi.URLParam(r, "careerID")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
