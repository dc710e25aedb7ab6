package passes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/looplab/fsm"
	"github.com/mimmersdev/pases-universitarios/internal/models"
)

// Lifecycle events accepted by Transition.
const (
	EventSuspend    = "suspend"
	EventReactivate = "reactivate"
	EventExpire     = "expire"
	EventRevoke     = "revoke"
)

// ErrInvalidTransition is returned when an event does not apply to the pass's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

func newLifecycle(status string) *fsm.FSM {
	return fsm.NewFSM(
		status,
		fsm.Events{
			{Name: EventSuspend, Src: []string{models.PassStatusActive}, Dst: models.PassStatusSuspended},
			{Name: EventReactivate, Src: []string{models.PassStatusSuspended}, Dst: models.PassStatusActive},
			{Name: EventExpire, Src: []string{models.PassStatusActive, models.PassStatusSuspended}, Dst: models.PassStatusExpired},
			{
				Name: EventRevoke,
				Src:  []string{models.PassStatusActive, models.PassStatusSuspended, models.PassStatusExpired},
				Dst:  models.PassStatusRevoked,
			},
		},
		fsm.Callbacks{},
	)
}

// NextStatus returns the status a pass in current moves to on event.
func NextStatus(ctx context.Context, current, event string) (string, error) {
	machine := newLifecycle(current)
	if err := machine.Event(ctx, event); err != nil {
		return "", fmt.Errorf("cannot %s a pass that is %s: %w", event, current, ErrInvalidTransition)
	}
	return machine.Current(), nil
}

// AvailableEvents lists the events that apply to a pass in status.
func AvailableEvents(status string) []string {
	available := newLifecycle(status).AvailableTransitions()
	slices.Sort(available)
	return available
}

// Transition applies a lifecycle event to a stored pass.
func (s *Service) Transition(ctx context.Context, passID, event string) (*models.Pass, error) {
	pass, err := s.store.GetPass(passID)
	if err != nil {
		return nil, err
	}
	next, err := NextStatus(ctx, pass.Status, event)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdatePassStatus(passID, pass.Status, next); err != nil {
		return nil, err
	}
	return s.store.GetPass(passID)
}

// SetInstalled records a wallet install or removal.
func (s *Service) SetInstalled(ctx context.Context, passID, platform string, installed bool) (*models.Pass, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.SetPassInstalled(passID, platform, installed); err != nil {
		return nil, err
	}
	return s.store.GetPass(passID)
}

// ExpireDue expires every active or suspended pass whose due date is before
// now. It returns how many passes were expired and how many were due.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, int, error) {
	due, err := s.store.ListPassesDueBefore(now)
	if err != nil {
		return 0, 0, err
	}
	expired := 0
	for _, pass := range due {
		if err := ctx.Err(); err != nil {
			return expired, len(due), err
		}
		if _, err := s.Transition(ctx, pass.ID, EventExpire); err != nil {
			log.Printf("Could not expire pass %s: %v", pass.ID, err)
			continue
		}
		expired++
	}
	return expired, len(due), nil
}
