// Package passes creates student passes, alone or in spreadsheet batches, and
// moves them through their lifecycle.
package passes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/validation"
)

// ErrCareerNotFound is returned when a pass names a career its university does not offer.
var ErrCareerNotFound = errors.New("career not found")

// CreatePassInput is the data needed to issue a pass.
type CreatePassInput struct {
	UniqueIdentifier string     `json:"uniqueIdentifier" validate:"required,max=64"`
	CareerID         string     `json:"careerId" validate:"required,max=64"`
	Name             string     `json:"name" validate:"required,max=200"`
	Email            string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone            string     `json:"phone,omitempty" validate:"omitempty,max=32"`
	Semester         int        `json:"semester" validate:"gte=0,lte=20"`
	EnrollmentYear   int        `json:"enrollmentYear" validate:"required,gte=1900,lte=2200"`
	PaymentStatus    string     `json:"paymentStatus" validate:"required,oneof=paid pending overdue"`
	EndDueDate       *time.Time `json:"endDueDate,omitempty"`
	Scholarship      bool       `json:"scholarship"`
}

// Service is the pass creation and lifecycle service.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// CreatePass converts a spreadsheet row and creates the pass it describes.
func (s *Service) CreatePass(ctx context.Context, universityID string, row spreadsheet.ParsedRow) (*models.Pass, error) {
	input, err := InputFromRow(row)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, universityID, input)
}

// Create validates input and stores a new active pass.
func (s *Service) Create(ctx context.Context, universityID string, input CreatePassInput) (*models.Pass, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input.normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	exists, err := s.store.CareerExists(universityID, input.CareerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up career %s: %w", input.CareerID, err)
	}
	if !exists {
		return nil, fmt.Errorf("career %s does not exist for this university: %w", input.CareerID, ErrCareerNotFound)
	}

	pass := &models.Pass{
		UniversityID:     universityID,
		UniqueIdentifier: input.UniqueIdentifier,
		CareerID:         input.CareerID,
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		Semester:         input.Semester,
		EnrollmentYear:   input.EnrollmentYear,
		PaymentStatus:    input.PaymentStatus,
		EndDueDate:       input.EndDueDate,
		Scholarship:      input.Scholarship,
		Status:           models.PassStatusActive,
	}
	if err := s.store.CreatePass(pass); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("pass %s already exists for career %s: %w", input.UniqueIdentifier, input.CareerID, store.ErrConflict)
		}
		return nil, err
	}
	return pass, nil
}

func (in *CreatePassInput) normalize() {
	in.UniqueIdentifier = strings.TrimSpace(in.UniqueIdentifier)
	in.CareerID = strings.TrimSpace(in.CareerID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.PaymentStatus = strings.ToLower(strings.TrimSpace(in.PaymentStatus))
	if in.EndDueDate != nil {
		due := in.EndDueDate.UTC()
		in.EndDueDate = &due
	}
}

// InputFromRow maps an import row onto CreatePassInput. Values outside a
// column's ValidValues are rejected here so the message names the column.
func InputFromRow(row spreadsheet.ParsedRow) (CreatePassInput, error) {
	var input CreatePassInput
	for _, field := range ImportSchema {
		if len(field.ValidValues) == 0 {
			continue
		}
		value := strings.ToLower(row.String(field.Title))
		if value != "" && !slices.Contains(field.ValidValues, value) {
			return input, fmt.Errorf("%s must be one of [%s], got %q", field.Title, strings.Join(field.ValidValues, " "), value)
		}
	}

	input.UniqueIdentifier = row.String(ColUniqueIdentifier)
	input.CareerID = row.String(ColCareerID)
	input.Name = row.String(ColName)
	input.Email = row.String(ColEmail)
	input.Phone = row.String(ColPhone)
	input.PaymentStatus = row.String(ColPaymentStatus)

	var err error
	if input.Semester, err = intColumn(row, ColSemester); err != nil {
		return input, err
	}
	if input.EnrollmentYear, err = intColumn(row, ColEnrollmentYear); err != nil {
		return input, err
	}
	if v, ok := row[ColScholarship].(bool); ok {
		input.Scholarship = v
	}
	if raw := row.String(ColEndDueDate); raw != "" {
		due, err := time.Parse(spreadsheet.ISOLayout, raw)
		if err != nil {
			return input, fmt.Errorf("%s is not a valid date: %q", ColEndDueDate, raw)
		}
		input.EndDueDate = &due
	}
	return input, nil
}

func intColumn(row spreadsheet.ParsedRow, title string) (int, error) {
	v, ok := row[title]
	if !ok {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be a whole number, got %v", title, v)
	}
	return int(f), nil
}
