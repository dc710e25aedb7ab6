package inbox_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mimmersdev/pases-universitarios/internal/inbox"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	updates []models.ProgressUpdate
}

func (c *capturePublisher) Publish(msg []byte) {
	var u models.ProgressUpdate
	if err := json.Unmarshal(msg, &u); err != nil {
		return
	}
	c.mu.Lock()
	c.updates = append(c.updates, u)
	c.mu.Unlock()
}

func (c *capturePublisher) last() (models.ProgressUpdate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.updates) == 0 {
		return models.ProgressUpdate{}, false
	}
	return c.updates[len(c.updates)-1], true
}

var header = []any{
	passes.ColUniqueIdentifier, passes.ColCareerID, passes.ColName,
	passes.ColEnrollmentYear, passes.ColPaymentStatus,
}

func setup(t *testing.T) (*store.Store, string, string, *capturePublisher, *inbox.Watcher) {
	t.Helper()
	st := store.New(testutil.SetupTestDB(t))
	universityID := testutil.SeedUniversity(t, st, "SIS")
	root := t.TempDir()
	pub := &capturePublisher{}
	w := inbox.NewWatcher(root, st, passes.NewProcessor(passes.NewService(st)), pub)
	return st, universityID, root, pub, w
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestImportFile(t *testing.T) {
	st, universityID, root, pub, w := setup(t)
	data := testutil.Workbook(t,
		header,
		[]any{"1001", "SIS", "Ana", 2023, "paid"},
		[]any{"1002", "MED", "Luis", 2023, "paid"},
		[]any{"1003", "SIS", "Eva", 2024, "pending"},
	)
	path := writeFile(t, filepath.Join(root, universityID), "alumnos.xlsx", data)

	res, err := w.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, filepath.Join(root, universityID, inbox.ProcessedDir), filepath.Dir(res.MovedTo))
	assert.NoFileExists(t, path)
	assert.FileExists(t, res.MovedTo)

	page, err := st.ListPasses(universityID, store.PassQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	last, ok := pub.last()
	require.True(t, ok)
	assert.Equal(t, res.ImportID, last.JobID)
	assert.True(t, last.Done)
	assert.Equal(t, "failed", last.Status)
}

func TestImportFile_Failures(t *testing.T) {
	_, universityID, root, _, w := setup(t)

	t.Run("unknown university", func(t *testing.T) {
		data := testutil.Workbook(t, header, []any{"1", "SIS", "Ana", 2023, "paid"})
		path := writeFile(t, filepath.Join(root, "nope"), "a.xlsx", data)
		res, err := w.ImportFile(context.Background(), path)
		assert.ErrorIs(t, err, inbox.ErrUnknownUniversity)
		assert.Equal(t, filepath.Join(root, "nope", inbox.FailedDir), filepath.Dir(res.MovedTo))
	})

	t.Run("invalid cell", func(t *testing.T) {
		data := testutil.Workbook(t, header, []any{"1", "SIS", "Ana", "not a year", "paid"})
		path := writeFile(t, filepath.Join(root, universityID), "b.xlsx", data)
		res, err := w.ImportFile(context.Background(), path)
		var verr *spreadsheet.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, filepath.Join(root, universityID, inbox.FailedDir), filepath.Dir(res.MovedTo))
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := writeFile(t, filepath.Join(root, universityID), "c.xlsx", []byte("plain text"))
		_, err := w.ImportFile(context.Background(), path)
		var ferr *spreadsheet.FormatError
		assert.ErrorAs(t, err, &ferr)
	})
}

func TestWatcher_PicksUpFiles(t *testing.T) {
	st, universityID, root, _, w := setup(t)
	w.SetDebounce(50 * time.Millisecond)

	// A file waiting before start is imported too.
	writeFile(t, filepath.Join(root, universityID), "early.xlsx",
		testutil.Workbook(t, header, []any{"2001", "SIS", "Ana", 2023, "paid"}))

	require.NoError(t, w.Start())
	defer w.Stop()

	writeFile(t, filepath.Join(root, universityID), "late.xlsx",
		testutil.Workbook(t, header, []any{"2002", "SIS", "Luis", 2023, "paid"}))
	writeFile(t, filepath.Join(root, universityID), "notes.txt", []byte("ignored"))

	assert.Eventually(t, func() bool {
		page, err := st.ListPasses(universityID, store.PassQuery{})
		return err == nil && page.Total == 2
	}, 5*time.Second, 50*time.Millisecond)

	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(filepath.Join(root, universityID, inbox.ProcessedDir))
		return err == nil && len(entries) == 2
	}, 5*time.Second, 50*time.Millisecond)
	assert.FileExists(t, filepath.Join(root, universityID, "notes.txt"))
}
