// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mimmersdev/pases-universitarios/internal/core"
	"github.com/mimmersdev/pases-universitarios/internal/notifications"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/websocket"
	"github.com/rs/cors"
)

// Server holds the dependencies for our API.
type Server struct {
	app              *core.App
	db               *sql.DB
	store            *store.Store
	passes           *passes.Service
	processor        *passes.Processor
	notifier         *notifications.Service
	minClientVersion *semver.Version
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance. Notifications are pushed through
// sender; nil logs them instead.
func NewServer(app *core.App, sender notifications.Sender) *Server {
	passService := passes.NewService(app.Store())
	s := &Server{
		app:       app,
		db:        app.DB(),
		store:     app.Store(),
		passes:    passService,
		processor: passes.NewProcessor(passService),
		notifier:  notifications.NewService(app.Store(), sender, app.Config().Notifications.Workers),
	}
	if v := app.Config().MinClientVersion; v != "" {
		min, err := semver.NewVersion(v)
		if err != nil {
			log.Printf("Ignoring invalid min_client_version %q: %v", v, err)
		} else {
			s.minClientVersion = min
		}
	}
	return s
}

// Handler returns the router wrapped with the configured CORS policy.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.app.Config().CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept", clientVersionHeader},
		AllowCredentials: true,
	})
	return c.Handler(s.Router())
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(s.ClientVersionMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/api/users/login", s.handleLogin)
		r.Get("/api/version", s.handleGetVersion)
		r.Get("/api/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Post("/api/users/logout", s.handleLogout)
			r.Get("/api/users/me", s.handleGetMe)

			r.Get("/api/dashboard", s.handleGetDashboard)

			// Catalog
			r.Get("/api/cities", s.handleListCities)
			r.Post("/api/cities", s.handleCreateCity)
			r.Put("/api/cities/{cityID}", s.handleUpdateCity)
			r.Delete("/api/cities/{cityID}", s.handleDeleteCity)

			r.Get("/api/universities", s.handleListUniversities)
			r.Post("/api/universities", s.handleCreateUniversity)
			r.Get("/api/universities/{universityID}", s.handleGetUniversity)
			r.Put("/api/universities/{universityID}", s.handleUpdateUniversity)
			r.Delete("/api/universities/{universityID}", s.handleDeleteUniversity)

			r.Get("/api/university/{universityId}/careers", s.handleListCareers)
			r.Post("/api/university/{universityId}/careers", s.handleCreateCareer)
			r.Put("/api/university/{universityId}/careers/{careerID}", s.handleUpdateCareer)
			r.Delete("/api/university/{universityId}/careers/{careerID}", s.handleDeleteCareer)

			// Passes
			r.Get("/api/university/{universityId}/passes", s.handleListPasses)
			r.Post("/api/university/{universityId}/pass/single", s.handleCreatePass)
			r.Get("/api/university/{universityId}/pass/template", s.handleGetPassTemplate)
			r.Get("/api/passes/{passID}", s.handleGetPass)
			r.Patch("/api/passes/{passID}/status", s.handleTransitionPass)
			r.Post("/api/passes/{passID}/install", s.handleInstallPass)
			r.Delete("/api/passes/{passID}", s.handleDeletePass)

			// Notifications
			r.Get("/api/university/{universityId}/notifications", s.handleListNotifications)
			r.Post("/api/university/{universityId}/notifications", s.handleSendNotification)

			r.Group(func(r chi.Router) {
				r.Use(s.AdminOnlyMiddleware)

				r.Get("/api/admin/jobs/status", s.handleGetAdminJobsStatus)
				r.Post("/api/admin/jobs/run", s.handleRunAdminJob)

				r.Get("/api/admin/users", s.handleAdminListUsers)
				r.Post("/api/admin/users", s.handleAdminCreateUser)
				r.Put("/api/admin/users/{userID}", s.handleAdminUpdateUser)
				r.Delete("/api/admin/users/{userID}", s.handleAdminDeleteUser)
			})
		})
	})

	// Long-lived connections run without the request timeout.
	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/university/{universityId}/pass", s.handleImportPasses)

		r.With(s.AdminOnlyMiddleware).Get("/ws/admin/progress", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWs(s.app.WsHub(), w, r)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
