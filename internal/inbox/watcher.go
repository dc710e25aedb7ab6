// Package inbox imports workbooks dropped into per-university folders.
//
// Files are read from <inbox>/<universityID>/ and, once imported, moved to
// the processed/ or failed/ subfolder next to them.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/mimmersdev/pases-universitarios/internal/events"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
	"github.com/mimmersdev/pases-universitarios/internal/store"
)

const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// ErrUnknownUniversity is returned when a file sits in a folder that does not
// name a university.
var ErrUnknownUniversity = errors.New("unknown university")

// Result describes one imported file.
type Result struct {
	ImportID     string
	UniversityID string
	File         string
	MovedTo      string
	Created      int
	Failed       int
}

// Watcher watches the inbox and imports workbooks after writes settle.
type Watcher struct {
	root      string
	store     *store.Store
	processor *passes.Processor
	publisher events.Publisher

	watcher       *fsnotify.Watcher
	pending       map[string]bool
	mu            sync.Mutex
	importMu      sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

func NewWatcher(root string, st *store.Store, processor *passes.Processor, publisher events.Publisher) *Watcher {
	return &Watcher{
		root:          root,
		store:         st,
		processor:     processor,
		publisher:     publisher,
		pending:       make(map[string]bool),
		debounceDelay: 2 * time.Second,
		stopChan:      make(chan struct{}),
	}
}

// SetDebounce changes how long the watcher waits after the last write.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounceDelay = d
	w.mu.Unlock()
}

// Start creates the inbox if needed, imports files already waiting in it and
// begins watching for new ones.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(w.root); err != nil {
		watcher.Close()
		return err
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		watcher.Close()
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(w.root, e.Name())
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return err
		}
		w.queueExisting(dir)
	}

	log.Printf("Import inbox watcher started: %s", w.root)
	go w.processEvents()
	return nil
}

func (w *Watcher) Stop() error {
	close(w.stopChan)
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Inbox watcher error: %v", err)
		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	// A new university folder directly under the inbox.
	if info.IsDir() {
		if filepath.Dir(event.Name) == filepath.Clean(w.root) {
			if err := w.watcher.Add(event.Name); err != nil {
				log.Printf("Inbox watcher could not watch %s: %v", event.Name, err)
				return
			}
			w.queueExisting(event.Name)
		}
		return
	}

	if w.isInboxFile(event.Name) {
		w.queue(event.Name)
	}
}

// isInboxFile reports whether path is a workbook sitting directly in a
// university folder.
func (w *Watcher) isInboxFile(path string) bool {
	uniDir := filepath.Dir(path)
	if filepath.Dir(uniDir) != filepath.Clean(w.root) {
		return false
	}
	return spreadsheet.IsSupportedFile(filepath.Base(path))
}

func (w *Watcher) queueExisting(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("Inbox watcher could not read %s: %v", dir, err)
		return
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.IsDir() && w.isInboxFile(path) {
			w.queue(path)
		}
	}
}

func (w *Watcher) queue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	for _, path := range paths {
		select {
		case <-w.stopChan:
			return
		default:
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		res, err := w.ImportFile(context.Background(), path)
		if err != nil {
			log.Printf("Inbox import of %s failed: %v", path, err)
			continue
		}
		log.Printf("Inbox import %s of %s: %d created, %d failed", res.ImportID, res.File, res.Created, res.Failed)
	}
}

// ImportFile imports one workbook and moves it out of the inbox. Files that
// cannot be read at all go to failed/; everything else goes to processed/,
// with row failures reported through the progress feed.
func (w *Watcher) ImportFile(ctx context.Context, path string) (*Result, error) {
	w.importMu.Lock()
	defer w.importMu.Unlock()

	res := &Result{
		ImportID:     uuid.NewString(),
		UniversityID: filepath.Base(filepath.Dir(path)),
		File:         filepath.Base(path),
	}

	created, failed, importErr := w.importRows(ctx, res.ImportID, res.UniversityID, path)
	res.Created = created
	res.Failed = failed

	dest := ProcessedDir
	if importErr != nil {
		dest = FailedDir
	}
	moved, err := moveInto(path, filepath.Join(filepath.Dir(path), dest))
	if err != nil {
		return res, errors.Join(importErr, fmt.Errorf("failed to move %s: %w", path, err))
	}
	res.MovedTo = moved
	return res, importErr
}

func (w *Watcher) importRows(ctx context.Context, importID, universityID, path string) (int, int, error) {
	ok, err := w.store.UniversityExists(universityID)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnknownUniversity, universityID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	rows, err := spreadsheet.Parse(data, passes.ImportSchema)
	if err != nil {
		return 0, 0, err
	}

	failed := 0
	logErrors := events.EmitterFunc(func(ev events.Event) error {
		if e, ok := ev.(events.Error); ok {
			failed++
			log.Printf("Inbox import %s: %s", importID, e.Message)
		}
		return nil
	})
	emit := events.Multi(events.NewBroadcaster(importID, w.publisher), logErrors)
	created, err := w.processor.Process(ctx, universityID, rows, emit)
	return created, failed, err
}

// moveInto moves path into dir, prefixing the name with a timestamp so
// repeated uploads of the same file do not collide.
func moveInto(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := time.Now().UTC().Format("20060102T150405") + "-" + filepath.Base(path)
	dest := filepath.Join(dir, name)
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}
