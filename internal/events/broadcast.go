package events

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mimmersdev/pases-universitarios/internal/models"
)

// Publisher delivers a message to live admin dashboards.
type Publisher interface {
	Publish(message []byte)
}

// Broadcaster mirrors batch events onto the admin progress feed, tagged with
// the import they belong to.
type Broadcaster struct {
	importID  string
	publisher Publisher
}

// NewBroadcaster returns an Emitter that never fails; undeliverable updates
// are dropped by the publisher.
func NewBroadcaster(importID string, publisher Publisher) *Broadcaster {
	return &Broadcaster{importID: importID, publisher: publisher}
}

func (b *Broadcaster) Emit(ev Event) error {
	if b.publisher == nil {
		return nil
	}
	update := models.ProgressUpdate{
		JobID:  b.importID,
		Kind:   models.ProgressKindImport,
		Event:  string(ev.Name()),
		Status: "in_progress",
	}

	switch e := ev.(type) {
	case Start:
		update.Total = e.Total
		update.Message = fmt.Sprintf("Importing %d passes...", e.Total)
	case Progress:
		update.Processed = e.Processed
		update.Total = e.Total
		if e.Total > 0 {
			update.Progress = float64(e.Processed) / float64(e.Total) * 100
		}
		update.Message = fmt.Sprintf("Processed %d of %d", e.Processed, e.Total)
	case Error:
		update.Message = e.Message
	case ErrorSummary:
		update.Message = fmt.Sprintf("%d rows failed", len(e.Errors))
	case Complete:
		update.Progress = 100
		update.Done = true
		update.Message = fmt.Sprintf("Created %d passes", e.Total)
		update.Status = "completed"
		if !e.Success {
			update.Status = "failed"
		}
	}

	msg, err := json.Marshal(update)
	if err != nil {
		log.Printf("Failed to marshal progress update for import %s: %v", b.importID, err)
		return nil
	}
	b.publisher.Publish(msg)
	return nil
}
