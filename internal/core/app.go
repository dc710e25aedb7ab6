package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/mimmersdev/pases-universitarios/internal/assets"
	"github.com/mimmersdev/pases-universitarios/internal/config"
	"github.com/mimmersdev/pases-universitarios/internal/db"
	"github.com/mimmersdev/pases-universitarios/internal/jobs"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/websocket"
)

// Version is set at build time with -ldflags "-X ...core.Version=1.2.3".
var Version = "dev"

// App holds the core components of the application that are shared
// between the server and the CLI. It satisfies jobs.JobContext.
type App struct {
	config     *config.Config
	db         *sql.DB
	store      *store.Store
	wsHub      *websocket.Hub
	jobManager *jobs.JobManager
	version    string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	log.Println("Core application setup complete.")
	return NewWith(cfg, database, hub, Version), nil
}

// NewWith assembles an App from ready-made parts and registers the
// background jobs. Tests use it with an in-memory database.
func NewWith(cfg *config.Config, database *sql.DB, hub *websocket.Hub, version string) *App {
	app := &App{
		config:  cfg,
		db:      database,
		store:   store.New(database),
		wsHub:   hub,
		version: version,
	}
	app.jobManager = jobs.NewManager(app)
	jobs.RegisterAll(app.jobManager)
	return app
}

func (a *App) Config() *config.Config       { return a.config }
func (a *App) DB() *sql.DB                  { return a.db }
func (a *App) Store() *store.Store          { return a.store }
func (a *App) WsHub() *websocket.Hub        { return a.wsHub }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }
func (a *App) Version() string              { return a.version }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
