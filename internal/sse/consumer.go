package sse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/mimmersdev/pases-universitarios/internal/events"
)

// BatchOutcome is the running summary of one upload as seen by the client.
type BatchOutcome struct {
	Processed  int                   `json:"processed"`
	Total      int                   `json:"total"`
	Percentage int                   `json:"percentage"`
	Errors     []events.RowItemError `json:"errors"`
	IsComplete bool                  `json:"isComplete"`
}

// Consumer reads a progress stream. The callbacks run on the reading
// goroutine, in arrival order.
type Consumer struct {
	OnProgress func(BatchOutcome)
	OnEvent    func(events.Event)
	// Logf reports skipped messages. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (c *Consumer) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Consume reads body until it ends and returns the number of passes the
// server reported as created. If the stream ends before pass:complete, the
// count is estimated as processed minus failed rows. A read error is returned
// along with that estimate, unless pass:complete already arrived.
func (c *Consumer) Consume(ctx context.Context, body io.Reader) (int, BatchOutcome, error) {
	var (
		outcome      BatchOutcome
		totalCreated int
		name, data   string
		hasName      bool
		hasData      bool
	)

	reader := bufio.NewReader(body)
	for {
		if err := ctx.Err(); err != nil {
			return 0, outcome, err
		}

		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, outcome, ctxErr
			}
			if outcome.IsComplete {
				return totalCreated, outcome, nil
			}
			return c.finishEarly(&outcome), outcome, fmt.Errorf("failed to read event stream: %w", readErr)
		}
		// A final line without a newline still counts.
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if hasName && hasData {
				if created, done := c.dispatch(events.Name(name), []byte(data), &outcome); done {
					totalCreated = created
				}
			}
			name, data, hasName, hasData = "", "", false, false
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			hasName = true
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			hasData = true
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
	}

	if !outcome.IsComplete {
		return c.finishEarly(&outcome), outcome, nil
	}
	return totalCreated, outcome, nil
}

func (c *Consumer) finishEarly(outcome *BatchOutcome) int {
	outcome.IsComplete = true
	return outcome.Processed - len(outcome.Errors)
}

// dispatch applies one framed message. It reports the created count when
// the message was pass:complete.
func (c *Consumer) dispatch(name events.Name, data []byte, outcome *BatchOutcome) (int, bool) {
	ev, err := events.Decode(name, data)
	if err != nil {
		c.logf("Skipping event stream message: %v", err)
		return 0, false
	}
	if c.OnEvent != nil {
		c.OnEvent(ev)
	}

	created, done := 0, false
	switch e := ev.(type) {
	case events.Start:
		outcome.Processed = 0
		outcome.Percentage = 0
		outcome.Total = e.Total
	case events.Progress:
		outcome.Processed = e.Processed
		outcome.Total = e.Total
		outcome.Percentage = percentage(e.Processed, e.Total)
	case events.Error:
		if e.ItemError != nil {
			outcome.Errors = append(outcome.Errors, events.RowItemError{
				UniversityID:     e.ItemError.UniversityID,
				UniqueIdentifier: e.ItemError.UniqueIdentifier,
				CareerID:         e.ItemError.CareerID,
				Error:            e.Message,
			})
		}
	case events.ErrorSummary:
		outcome.Errors = append([]events.RowItemError(nil), e.Errors...)
	case events.Complete:
		outcome.IsComplete = true
		created, done = e.Total, true
	}

	if c.OnProgress != nil {
		c.OnProgress(*outcome)
	}
	return created, done
}

func percentage(processed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(processed) / float64(total) * 100))
}
