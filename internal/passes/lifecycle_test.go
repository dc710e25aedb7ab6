package passes_test

import (
	"context"
	"testing"
	"time"

	"github.com/mimmersdev/pases-universitarios/internal/events"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventNames(into *[]string) events.Emitter {
	return events.EmitterFunc(func(ev events.Event) error {
		*into = append(*into, string(ev.Name()))
		return nil
	})
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from, event, want string
		wantErr           bool
	}{
		{models.PassStatusActive, passes.EventSuspend, models.PassStatusSuspended, false},
		{models.PassStatusSuspended, passes.EventReactivate, models.PassStatusActive, false},
		{models.PassStatusSuspended, passes.EventExpire, models.PassStatusExpired, false},
		{models.PassStatusExpired, passes.EventRevoke, models.PassStatusRevoked, false},
		{models.PassStatusActive, passes.EventReactivate, "", true},
		{models.PassStatusExpired, passes.EventExpire, "", true},
		{models.PassStatusRevoked, passes.EventRevoke, "", true},
		{models.PassStatusActive, "teleport", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.from+"/"+tt.event, func(t *testing.T) {
			got, err := passes.NextStatus(context.Background(), tt.from, tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, passes.ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailableEvents(t *testing.T) {
	assert.Equal(t, []string{"expire", "revoke", "suspend"}, passes.AvailableEvents(models.PassStatusActive))
	assert.Empty(t, passes.AvailableEvents(models.PassStatusRevoked))
}

func TestService_TransitionAndInstall(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	universityID := testutil.SeedUniversity(t, st, "SIS")
	p := testutil.SeedPass(t, st, universityID, "A1", "SIS")
	svc := passes.NewService(st)
	ctx := context.Background()

	updated, err := svc.Transition(ctx, p.ID, passes.EventSuspend)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusSuspended, updated.Status)

	_, err = svc.Transition(ctx, p.ID, passes.EventSuspend)
	assert.ErrorIs(t, err, passes.ErrInvalidTransition)

	_, err = svc.Transition(ctx, "missing", passes.EventSuspend)
	assert.ErrorIs(t, err, store.ErrNotFound)

	installed, err := svc.SetInstalled(ctx, p.ID, models.PlatformApple, true)
	require.NoError(t, err)
	assert.True(t, installed.Installed())
}

func TestService_ExpireDue(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	universityID := testutil.SeedUniversity(t, st, "SIS")
	svc := passes.NewService(st)

	past := time.Now().UTC().AddDate(0, 0, -1)
	future := time.Now().UTC().AddDate(0, 1, 0)
	for id, due := range map[string]time.Time{"OLD": past, "NEW": future} {
		due := due
		require.NoError(t, st.CreatePass(&models.Pass{UniversityID: universityID, UniqueIdentifier: id, CareerID: "SIS",
			Name: id, EnrollmentYear: 2020, PaymentStatus: models.PaymentPaid, EndDueDate: &due}))
	}

	expired, due, err := svc.ExpireDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, 1, due)

	filters, _ := store.ParsePassFilters([]string{"status:expired"})
	page, err := st.ListPasses(universityID, store.PassQuery{Filters: filters})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "OLD", page.Items[0].UniqueIdentifier)
}
