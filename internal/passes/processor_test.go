package passes

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mimmersdev/pases-universitarios/internal/events"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	failOn map[string]error
	calls  []string
}

func (f *fakeCreator) CreatePass(ctx context.Context, universityID string, row spreadsheet.ParsedRow) (*models.Pass, error) {
	id := row.String(ColUniqueIdentifier)
	f.calls = append(f.calls, id)
	if err, ok := f.failOn[id]; ok {
		return nil, err
	}
	return &models.Pass{UniversityID: universityID, UniqueIdentifier: id}, nil
}

func rowsFor(ids ...string) []spreadsheet.ParsedRow {
	rows := make([]spreadsheet.ParsedRow, len(ids))
	for i, id := range ids {
		rows[i] = spreadsheet.ParsedRow{ColUniqueIdentifier: id, ColCareerID: "SIS"}
	}
	return rows
}

func TestProcess_PartialFailure(t *testing.T) {
	creator := &fakeCreator{failOn: map[string]error{"R3": errors.New("pass R3 already exists for career SIS")}}
	rec := &events.Recorder{}

	created, err := NewProcessor(creator).Process(context.Background(), "uni-1", rowsFor("R1", "R2", "R3", "R4", "R5"), rec)
	require.NoError(t, err)
	assert.Equal(t, 4, created)
	assert.Equal(t, []string{"R1", "R2", "R3", "R4", "R5"}, creator.calls, "rows are processed in order")

	assert.Equal(t, []events.Name{
		events.NameStart,
		events.NameProgress, events.NameProgress,
		events.NameError, events.NameProgress,
		events.NameProgress, events.NameProgress,
		events.NameErrorSummary,
		events.NameComplete,
	}, rec.Names())

	all := rec.Events()
	assert.Equal(t, events.Start{Total: 5}, all[0])

	errEvent := all[3].(events.Error)
	assert.Equal(t, "pass R3 already exists for career SIS", errEvent.Message)
	assert.Equal(t, &events.ItemRef{UniversityID: "uni-1", UniqueIdentifier: "R3", CareerID: "SIS"}, errEvent.ItemError)

	summary := all[7].(events.ErrorSummary)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "R3", summary.Errors[0].UniqueIdentifier)

	assert.Equal(t, events.Complete{Total: 4, Success: false}, all[8])
}

func TestProcess_ProgressIsMonotonic(t *testing.T) {
	creator := &fakeCreator{failOn: map[string]error{"B": errors.New("x"), "D": errors.New("y")}}
	rec := &events.Recorder{}
	_, err := NewProcessor(creator).Process(context.Background(), "u", rowsFor("A", "B", "C", "D"), rec)
	require.NoError(t, err)

	last := 0
	for _, ev := range rec.Events() {
		if p, ok := ev.(events.Progress); ok {
			assert.GreaterOrEqual(t, p.Processed, last)
			assert.Equal(t, 4, p.Total)
			last = p.Processed
		}
	}
	assert.Equal(t, 4, last)
}

func TestProcess_AllSucceed(t *testing.T) {
	rec := &events.Recorder{}
	created, err := NewProcessor(&fakeCreator{}).Process(context.Background(), "u", rowsFor("A", "B"), rec)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.NotContains(t, rec.Names(), events.NameErrorSummary)
	assert.Equal(t, events.Complete{Total: 2, Success: true}, rec.Events()[len(rec.Events())-1])
}

func TestProcess_EmptyBatch(t *testing.T) {
	rec := &events.Recorder{}
	created, err := NewProcessor(&fakeCreator{}).Process(context.Background(), "u", nil, rec)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, []events.Name{events.NameStart, events.NameComplete}, rec.Names())
}

func TestProcess_MissingIdentifiers(t *testing.T) {
	creator := &fakeCreator{}
	rows := []spreadsheet.ParsedRow{
		{ColCareerID: "SIS"},
		{ColUniqueIdentifier: "X1"},
		{ColUniqueIdentifier: "  ", ColCareerID: "SIS"},
	}
	rec := &events.Recorder{}

	created, err := NewProcessor(creator).Process(context.Background(), "u", rows, rec)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, creator.calls, "rows without identifiers never reach the creator")

	var messages []string
	for _, ev := range rec.Events() {
		if e, ok := ev.(events.Error); ok {
			messages = append(messages, e.Message)
		}
	}
	assert.Equal(t, []string{"uniqueIdentifier is required", "careerId is required", "uniqueIdentifier is required"}, messages)
}

func TestProcess_EmitterFailureDoesNotStopBatch(t *testing.T) {
	creator := &fakeCreator{}
	calls := 0
	broken := events.EmitterFunc(func(events.Event) error {
		calls++
		if calls >= 2 {
			return fmt.Errorf("client went away")
		}
		return nil
	})

	created, err := NewProcessor(creator).Process(context.Background(), "u", rowsFor("A", "B", "C"), broken)
	assert.EqualError(t, err, "client went away")
	assert.Equal(t, 3, created)
	assert.Len(t, creator.calls, 3)
}
