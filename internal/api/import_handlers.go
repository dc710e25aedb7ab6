// Bulk pass import streamed back to the caller as server-sent events.

package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/mimmersdev/pases-universitarios/internal/events"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
	"github.com/mimmersdev/pases-universitarios/internal/sse"
)

const defaultMaxUploadMB = 32

// handleImportPasses validates the uploaded workbook up front and answers
// with a JSON error if it is unusable. Once rows are accepted the response
// switches to an event stream that ends right after pass:complete.
func (s *Server) handleImportPasses(w http.ResponseWriter, r *http.Request) {
	universityID, ok := s.requireUniversity(w, r)
	if !ok {
		return
	}

	maxMB := s.app.Config().Import.MaxUploadMB
	if maxMB <= 0 {
		maxMB = defaultMaxUploadMB
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxMB<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(w, http.StatusBadRequest, "File is too large")
			return
		}
		RespondWithError(w, http.StatusBadRequest, "A workbook is required in the 'file' field")
		return
	}
	defer file.Close()

	if !spreadsheet.IsSupportedFile(header.Filename) {
		RespondWithError(w, http.StatusBadRequest, (&spreadsheet.FormatError{Reason: spreadsheet.ReasonUnsupported}).Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	rows, err := spreadsheet.Parse(data, passes.ImportSchema)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	importID := uuid.NewString()
	log.Printf("Import %s: %d rows from %s for university %s", importID, len(rows), header.Filename, universityID)

	stream := sse.NewWriter(w)
	emit := events.Multi(stream, events.NewBroadcaster(importID, s.app.WsHub()))

	// The batch keeps going if the client disconnects.
	created, err := s.processor.Process(context.WithoutCancel(r.Context()), universityID, rows, emit)
	if err != nil {
		log.Printf("Import %s: client stopped listening: %v", importID, err)
	}
	log.Printf("Import %s finished: %d of %d passes created", importID, created, len(rows))
}
