package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mimmersdev/pases-universitarios/internal/api"
	"github.com/mimmersdev/pases-universitarios/internal/auth"
	"github.com/mimmersdev/pases-universitarios/internal/core"
	"github.com/mimmersdev/pases-universitarios/internal/inbox"
	"github.com/mimmersdev/pases-universitarios/internal/jobs"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/store"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// --- First User Provisioning ---
	provisionAdmin(app.Store())

	scheduler := jobs.StartJobs(app)
	defer scheduler.Stop()

	// Workbooks dropped into the inbox go through the same processor as uploads.
	if inboxPath := app.Config().Import.InboxPath; inboxPath != "" {
		processor := passes.NewProcessor(passes.NewService(app.Store()))
		watcher := inbox.NewWatcher(inboxPath, app.Store(), processor, app.WsHub())
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: import inbox disabled: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	// Setup the API server
	server := api.NewServer(app, nil)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config().Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		log.Printf("Starting web server on %s (version %s)", httpServer.Addr, app.Version())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Imports in flight get a little longer to finish their batch.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// provisionAdmin creates an admin account with a random password when the
// database has no users yet.
func provisionAdmin(st *store.Store) {
	userCount, err := st.CountUsers()
	if err != nil {
		log.Fatalf("Could not check user count: %v", err)
	}
	if userCount > 0 {
		return
	}

	log.Println("No users found. Creating default admin account.")
	password := rand.Text()
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Could not hash default admin password: %v", err)
	}
	if _, err := st.CreateUser("admin", passwordHash, models.RoleAdmin); err != nil {
		log.Fatalf("Could not create default admin user: %v", err)
	}
	log.Println("==================================================")
	log.Println("Default admin user created.")
	log.Printf("Username: admin")
	log.Printf("Password: %s", password)
	log.Println("Please change this password immediately.")
	log.Println("==================================================")
}
