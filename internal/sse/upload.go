package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// HTTPError is returned when the server rejects an upload before streaming.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// UploadRequest describes a spreadsheet upload.
type UploadRequest struct {
	URL      string
	FileName string
	File     io.Reader
	// Header is added to the request, e.g. a session cookie.
	Header http.Header
}

// Upload posts the file as the multipart field "file" and consumes the
// progress stream of the response with consumer.
func Upload(ctx context.Context, client *http.Client, req UploadRequest, consumer *Consumer) (int, BatchOutcome, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if consumer == nil {
		consumer = &Consumer{}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", req.FileName)
	if err != nil {
		return 0, BatchOutcome{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return 0, BatchOutcome{}, fmt.Errorf("failed to read %s: %w", req.FileName, err)
	}
	if err := mw.Close(); err != nil {
		return 0, BatchOutcome{}, fmt.Errorf("failed to finish form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, &body)
	if err != nil {
		return 0, BatchOutcome{}, fmt.Errorf("failed to build upload request: %w", err)
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(httpReq)
	if err != nil {
		return 0, BatchOutcome{}, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, BatchOutcome{}, readHTTPError(resp)
	}
	return consumer.Consume(ctx, resp.Body)
}

func readHTTPError(resp *http.Response) error {
	httpErr := &HTTPError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP error! status: %d", resp.StatusCode),
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		httpErr.Message = payload.Error
	}
	return httpErr
}
