package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mimmersdev/pases-universitarios/internal/core"
	"github.com/mimmersdev/pases-universitarios/internal/events"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
	"github.com/mimmersdev/pases-universitarios/internal/sse"
)

var errImportFailures = errors.New("some rows were not imported")

// importFile logs in, uploads the workbook and prints the progress stream.
// Rows that fail make the command fail once the stream ends.
func (cli *commandLine) importFile(server, username, pwd, universityID, path string) error {
	if !spreadsheet.IsSupportedFile(path) {
		return fmt.Errorf("%s: only .xlsx workbooks can be imported", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	client, err := cli.httpClient()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	base := strings.TrimRight(server, "/")
	if err := login(ctx, client, base, username, pwd); err != nil {
		return err
	}

	header := http.Header{}
	if v, err := semver.NewVersion(core.Version); err == nil {
		header.Set("X-Client-Version", v.String())
	}

	consumer := &sse.Consumer{
		OnProgress: func(o sse.BatchOutcome) {
			fmt.Fprintf(cli.out, "\rProcessed %d/%d (%d%%)", o.Processed, o.Total, o.Percentage)
		},
		OnEvent: func(ev events.Event) {
			if e, ok := ev.(events.Error); ok {
				fmt.Fprintf(cli.out, "\n  %s\n", e.Message)
			}
		},
	}
	created, outcome, err := sse.Upload(ctx, client, sse.UploadRequest{
		URL:      base + "/api/university/" + url.PathEscape(universityID) + "/pass",
		FileName: filepath.Base(path),
		File:     f,
		Header:   header,
	}, consumer)
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Created %d passes from %s\n", created, filepath.Base(path))
	if len(outcome.Errors) > 0 {
		fmt.Fprintf(cli.out, "%d rows failed:\n", len(outcome.Errors))
		for _, e := range outcome.Errors {
			fmt.Fprintf(cli.out, "  %s / %s: %s\n", e.UniqueIdentifier, e.CareerID, e.Error)
		}
		return fmt.Errorf("%w: %d failed", errImportFailures, len(outcome.Errors))
	}
	return nil
}

// httpClient returns the configured client with a cookie jar for the session.
func (cli *commandLine) httpClient() (*http.Client, error) {
	c := &http.Client{}
	if cli.client != nil {
		copied := *cli.client
		c = &copied
	}
	if c.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.Jar = jar
	}
	return c, nil
}

func login(ctx context.Context, client *http.Client, base, username, pwd string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": pwd})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/users/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			return fmt.Errorf("login failed: %s", payload.Error)
		}
		return fmt.Errorf("login failed: HTTP %d", resp.StatusCode)
	}
	return nil
}
