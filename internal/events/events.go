// Package events defines the progress events emitted while a batch of passes
// is created, and their JSON encoding.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Name is the wire discriminant of an event.
type Name string

const (
	NameStart        Name = "pass:start"
	NameProgress     Name = "pass:progress"
	NameComplete     Name = "pass:complete"
	NameError        Name = "pass:error"
	NameErrorSummary Name = "pass:error-summary"
)

// Event is one of Start, Progress, Complete, Error or ErrorSummary.
type Event interface {
	Name() Name
}

// Start opens a batch. Total counts the non-empty rows to process.
type Start struct {
	Total int `json:"total"`
}

// Progress is sent after each row, whether it succeeded or not.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// Complete closes a batch. Total is the number of passes created.
type Complete struct {
	Total   int  `json:"total"`
	Success bool `json:"success"`
}

// ItemRef identifies the pass a row was meant to create.
type ItemRef struct {
	UniversityID     string `json:"universityId"`
	UniqueIdentifier string `json:"uniqueIdentifier"`
	CareerID         string `json:"careerId"`
}

// Error reports a failed row.
type Error struct {
	Message   string   `json:"error"`
	ItemError *ItemRef `json:"itemError,omitempty"`
}

// RowItemError is a failed row together with its reason.
type RowItemError struct {
	UniversityID     string `json:"universityId"`
	UniqueIdentifier string `json:"uniqueIdentifier"`
	CareerID         string `json:"careerId"`
	Error            string `json:"error"`
}

// ErrorSummary lists every failed row of the batch.
type ErrorSummary struct {
	Errors []RowItemError `json:"errors"`
}

func (Start) Name() Name        { return NameStart }
func (Progress) Name() Name     { return NameProgress }
func (Complete) Name() Name     { return NameComplete }
func (Error) Name() Name        { return NameError }
func (ErrorSummary) Name() Name { return NameErrorSummary }

// ErrUnrecognizedEvent is matched by errors.Is for unknown event names.
var ErrUnrecognizedEvent = errors.New("unrecognized event")

// UnrecognizedEventError carries the unknown event name.
type UnrecognizedEventError struct {
	Name string
}

func (e *UnrecognizedEventError) Error() string {
	return fmt.Sprintf("unrecognized event %q", e.Name)
}

func (e *UnrecognizedEventError) Is(target error) bool { return target == ErrUnrecognizedEvent }

// PayloadError means the data of a known event could not be decoded.
type PayloadError struct {
	Name Name
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Name, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// Encode returns the name and JSON payload of ev.
func Encode(ev Event) (Name, []byte, error) {
	if summary, ok := ev.(ErrorSummary); ok && summary.Errors == nil {
		summary.Errors = []RowItemError{}
		ev = summary
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s: %w", ev.Name(), err)
	}
	return ev.Name(), data, nil
}

// Decode rebuilds an event from its wire name and JSON payload.
func Decode(name Name, data []byte) (Event, error) {
	switch name {
	case NameStart:
		var ev Start
		return decodeInto(name, data, &ev)
	case NameProgress:
		var ev Progress
		return decodeInto(name, data, &ev)
	case NameComplete:
		var ev Complete
		return decodeInto(name, data, &ev)
	case NameError:
		var ev Error
		return decodeInto(name, data, &ev)
	case NameErrorSummary:
		var ev ErrorSummary
		return decodeInto(name, data, &ev)
	default:
		return nil, &UnrecognizedEventError{Name: string(name)}
	}
}

func decodeInto[T Event](name Name, data []byte, ev *T) (Event, error) {
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, &PayloadError{Name: name, Err: err}
	}
	return *ev, nil
}
