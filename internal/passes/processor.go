package passes

import (
	"context"
	"errors"
	"log"

	"github.com/mimmersdev/pases-universitarios/internal/events"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
)

// PassCreator creates one pass from an import row.
type PassCreator interface {
	CreatePass(ctx context.Context, universityID string, row spreadsheet.ParsedRow) (*models.Pass, error)
}

// Processor runs a batch of import rows through a PassCreator, one row at a
// time, reporting progress as events.
type Processor struct {
	creator PassCreator
}

func NewProcessor(creator PassCreator) *Processor {
	return &Processor{creator: creator}
}

var (
	errMissingUniqueIdentifier = errors.New(ColUniqueIdentifier + " is required")
	errMissingCareerID         = errors.New(ColCareerID + " is required")
)

// Process creates a pass for every row, in order, and returns how many were
// created. Events follow the sequence Start, then Error (for a failed row)
// and Progress for each row, then ErrorSummary when any row failed, then
// Complete.
//
// A failing emitter does not stop the batch: every row is still attempted.
// The first emit error is logged and returned alongside the count.
func (p *Processor) Process(ctx context.Context, universityID string, rows []spreadsheet.ParsedRow, emit events.Emitter) (int, error) {
	var emitErr error
	send := func(ev events.Event) {
		if err := emit.Emit(ev); err != nil && emitErr == nil {
			emitErr = err
			log.Printf("Progress stream for university %s failed, continuing import: %v", universityID, err)
		}
	}

	total := len(rows)
	send(events.Start{Total: total})

	created := 0
	var failures []events.RowItemError
	for i, row := range rows {
		ref := events.ItemRef{
			UniversityID:     universityID,
			UniqueIdentifier: row.String(ColUniqueIdentifier),
			CareerID:         row.String(ColCareerID),
		}

		if err := p.createRow(ctx, universityID, row, ref); err != nil {
			failures = append(failures, events.RowItemError{
				UniversityID:     ref.UniversityID,
				UniqueIdentifier: ref.UniqueIdentifier,
				CareerID:         ref.CareerID,
				Error:            err.Error(),
			})
			send(events.Error{Message: err.Error(), ItemError: &ref})
		} else {
			created++
		}
		send(events.Progress{Processed: i + 1, Total: total})
	}

	if len(failures) > 0 {
		send(events.ErrorSummary{Errors: failures})
	}
	send(events.Complete{Total: created, Success: len(failures) == 0})
	return created, emitErr
}

func (p *Processor) createRow(ctx context.Context, universityID string, row spreadsheet.ParsedRow, ref events.ItemRef) error {
	if ref.UniqueIdentifier == "" {
		return errMissingUniqueIdentifier
	}
	if ref.CareerID == "" {
		return errMissingCareerID
	}
	_, err := p.creator.CreatePass(ctx, universityID, row)
	return err
}
