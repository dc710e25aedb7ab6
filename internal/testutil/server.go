// Shared test server setup, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/mimmersdev/pases-universitarios/internal/api"
	"github.com/mimmersdev/pases-universitarios/internal/config"
	"github.com/mimmersdev/pases-universitarios/internal/core"
	"github.com/mimmersdev/pases-universitarios/internal/notifications"
	"github.com/mimmersdev/pases-universitarios/internal/websocket"
)

// SetupTestApp returns an App over an in-memory database with default
// configuration and a running websocket hub.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)
	hub := websocket.NewHub()
	go hub.Run()
	return core.NewWith(config.Default(), db, hub, "test")
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	return SetupTestServerWithSender(t, nil)
}

// SetupTestServerWithSender is SetupTestServer with a custom push sender.
func SetupTestServerWithSender(t *testing.T, sender notifications.Sender) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	return api.NewServer(app, sender), app.DB()
}
