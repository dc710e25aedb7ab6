// Package notifications sends push messages to the wallet passes of a university.
package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/gammazero/workerpool"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/validation"
)

// Message is one push delivery to one wallet.
type Message struct {
	PassID       string
	SerialNumber string
	Platform     string
	Title        string
	Body         string
}

// Sender delivers a message to a wallet provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender only logs the messages it is given.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	log.Printf("Push to %s pass %s: %s", msg.Platform, msg.SerialNumber, msg.Title)
	return nil
}

// SendInput is the body of a notification request. Message may contain HTML.
type SendInput struct {
	Title   string   `json:"title" validate:"required,max=120"`
	Message string   `json:"message" validate:"required,max=4000"`
	Filters []string `json:"filters,omitempty"`
}

type Service struct {
	store   *store.Store
	sender  Sender
	workers int
}

func NewService(st *store.Store, sender Sender, workers int) *Service {
	if sender == nil {
		sender = LogSender{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Service{store: st, sender: sender, workers: workers}
}

// Send pushes the message to every wallet that holds a matching pass and
// records the outcome.
func (s *Service) Send(ctx context.Context, universityID string, in SendInput) (*models.Notification, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	filters, err := store.ParsePassFilters(in.Filters)
	if err != nil {
		return nil, err
	}
	filters = append(filters, store.InstalledFilter{Installed: true})

	body := PlainText(in.Message)
	if body == "" {
		return nil, &validation.Error{Fields: map[string]string{"message": "message has no text"}}
	}

	holders, err := s.store.ListAllPasses(universityID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to find recipients: %w", err)
	}

	var messages []Message
	for _, p := range holders {
		for _, platform := range installedPlatforms(p) {
			messages = append(messages, Message{
				PassID:       p.ID,
				SerialNumber: p.SerialNumber,
				Platform:     platform,
				Title:        in.Title,
				Body:         body,
			})
		}
	}

	var delivered, failed atomic.Int64
	wp := workerpool.New(s.workers)
	for _, msg := range messages {
		msg := msg
		wp.Submit(func() {
			if err := s.sender.Send(ctx, msg); err != nil {
				log.Printf("Push to pass %s (%s) failed: %v", msg.PassID, msg.Platform, err)
				failed.Add(1)
				return
			}
			delivered.Add(1)
		})
	}
	wp.StopWait()

	n := &models.Notification{
		UniversityID: universityID,
		Title:        in.Title,
		Message:      body,
		Recipients:   len(messages),
		Delivered:    int(delivered.Load()),
		Failed:       int(failed.Load()),
	}
	if err := s.store.CreateNotification(n); err != nil {
		return nil, err
	}
	log.Printf("Notification %s for university %s: %d delivered, %d failed", n.ID, universityID, n.Delivered, n.Failed)
	return n, nil
}

// List returns the notification history of a university.
func (s *Service) List(universityID string) ([]*models.Notification, error) {
	return s.store.ListNotifications(universityID)
}

func installedPlatforms(p *models.Pass) []string {
	var platforms []string
	if p.AppleInstalled {
		platforms = append(platforms, models.PlatformApple)
	}
	if p.GoogleInstalled {
		platforms = append(platforms, models.PlatformGoogle)
	}
	return platforms
}

// PlainText flattens an HTML fragment to text. Line breaks and block
// elements become newlines; runs of spaces collapse.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
