package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/store"
)

const (
	ExpirePassesJobID  = "expire-passes"
	PurgeSessionsJobID = "purge-sessions"
)

// RegisterAll registers every background job with the manager.
func RegisterAll(jm *JobManager) {
	jm.Register(ExpirePassesJobID, "Expire overdue passes", RunExpirePasses)
	jm.Register(PurgeSessionsJobID, "Purge expired sessions", RunPurgeSessions)
}

// StartJobs starts the background job scheduler. The returned scheduler
// should be stopped on shutdown.
func StartJobs(app JobContext) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	cfg := app.Config()
	schedule(s, app, ExpirePassesJobID, cfg.Jobs.ExpireInterval)
	schedule(s, app, PurgeSessionsJobID, cfg.Jobs.SessionCleanupInterval)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func schedule(s *gocron.Scheduler, app JobContext, jobID string, interval int) {
	if interval <= 0 {
		log.Printf("Interval for '%s' is 0, scheduled runs are disabled.", jobID)
		return
	}

	log.Printf("Scheduling job: '%s' to run every %d minutes.", jobID, interval)
	_, err := s.Every(interval).Minutes().WaitForSchedule().Do(func() {
		log.Println("Scheduler is triggering job:", jobID)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		if err := app.JobManager().RunJob(jobID, app); err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", jobID, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", jobID, err)
	}
}

// RunExpirePasses expires every active or suspended pass past its due date.
func RunExpirePasses(app JobContext) {
	sendProgress(app, ExpirePassesJobID, "Looking for overdue passes...", 0, false)

	svc := passes.NewService(store.New(app.DB()))
	expired, due, err := svc.ExpireDue(context.Background(), time.Now())
	if err != nil {
		reportFailure(app, ExpirePassesJobID, fmt.Sprintf("Expiring passes failed: %v", err))
		return
	}
	sendProgress(app, ExpirePassesJobID, fmt.Sprintf("Expired %d of %d overdue passes.", expired, due), 100, true)
}

// RunPurgeSessions deletes sessions whose expiry has passed.
func RunPurgeSessions(app JobContext) {
	sendProgress(app, PurgeSessionsJobID, "Purging expired sessions...", 0, false)

	removed, err := store.New(app.DB()).DeleteExpiredSessions(time.Now())
	if err != nil {
		reportFailure(app, PurgeSessionsJobID, fmt.Sprintf("Purging sessions failed: %v", err))
		return
	}
	sendProgress(app, PurgeSessionsJobID, fmt.Sprintf("Removed %d expired sessions.", removed), 100, true)
}

func reportFailure(app JobContext, jobID, message string) {
	log.Printf("Job '%s': %s", jobID, message)
	if jm := app.JobManager(); jm != nil {
		jm.fail(jobID, message)
	}
	update := models.ProgressUpdate{JobID: jobID, Kind: models.ProgressKindJob, Message: message, Status: "failed", Done: true}
	publish(app, update)
}

func sendProgress(app JobContext, jobID, message string, progress float64, done bool) {
	status := "in_progress"
	if done {
		status = "completed"
	}
	publish(app, models.ProgressUpdate{
		JobID:    jobID,
		Kind:     models.ProgressKindJob,
		Message:  message,
		Progress: progress,
		Status:   status,
		Done:     done,
	})
}

func publish(app JobContext, update models.ProgressUpdate) {
	hub := app.WsHub()
	if hub == nil {
		return
	}
	msg, err := json.Marshal(update)
	if err != nil {
		log.Printf("Failed to marshal job progress: %v", err)
		return
	}
	hub.Publish(msg)
}
