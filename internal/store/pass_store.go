package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mimmersdev/pases-universitarios/internal/models"
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 200
)

// PassQuery describes one page of a filtered pass listing.
type PassQuery struct {
	Filters []PassFilter
	Page    int
	PerPage int
	SortBy  string
	SortDir string
}

var passSortColumns = map[string]string{
	"name":             "p.name",
	"uniqueIdentifier": "p.unique_identifier",
	"careerId":         "p.career_id",
	"status":           "p.status",
	"paymentStatus":    "p.payment_status",
	"endDueDate":       "p.end_due_date",
	"createdAt":        "p.created_at",
}

const passColumns = `p.id, p.university_id, p.unique_identifier, p.career_id, p.name, p.email, p.phone,
	p.semester, p.enrollment_year, p.payment_status, p.end_due_date, p.scholarship, p.status,
	p.serial_number, p.apple_installed, p.google_installed, p.created_at, p.updated_at`

func scanPass(row scanner) (*models.Pass, error) {
	var p models.Pass
	var due sql.NullTime
	err := row.Scan(&p.ID, &p.UniversityID, &p.UniqueIdentifier, &p.CareerID, &p.Name, &p.Email, &p.Phone,
		&p.Semester, &p.EnrollmentYear, &p.PaymentStatus, &due, &p.Scholarship, &p.Status,
		&p.SerialNumber, &p.AppleInstalled, &p.GoogleInstalled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t := due.Time.UTC()
		p.EndDueDate = &t
	}
	return &p, nil
}

// CreatePass inserts p, filling in its ID, serial number, status and timestamps.
func (s *Store) CreatePass(p *models.Pass) error {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.SerialNumber = uuid.NewString()
	if p.Status == "" {
		p.Status = models.PassStatusActive
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	var due any
	if p.EndDueDate != nil {
		due = p.EndDueDate.UTC()
	}
	_, err := s.db.Exec(`INSERT INTO passes (id, university_id, unique_identifier, career_id, name, email, phone,
			semester, enrollment_year, payment_status, end_due_date, scholarship, status,
			serial_number, apple_installed, google_installed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UniversityID, p.UniqueIdentifier, p.CareerID, p.Name, p.Email, p.Phone,
		p.Semester, p.EnrollmentYear, p.PaymentStatus, due, p.Scholarship, p.Status,
		p.SerialNumber, p.AppleInstalled, p.GoogleInstalled, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return translateError(err, fmt.Sprintf("pass %s/%s", p.UniqueIdentifier, p.CareerID))
	}
	return nil
}

// GetPass retrieves a pass by ID.
func (s *Store) GetPass(id string) (*models.Pass, error) {
	p, err := scanPass(s.db.QueryRow(`SELECT `+passColumns+` FROM passes p WHERE p.id = ?`, id))
	if err != nil {
		return nil, translateError(err, "pass "+id)
	}
	return p, nil
}

// ListPasses returns one page of a university's passes matching every filter.
func (s *Store) ListPasses(universityID string, q PassQuery) (*models.PassPage, error) {
	where, args, err := buildWhere(universityID, q.Filters)
	if err != nil {
		return nil, err
	}

	page, perPage := normalizePage(q.Page, q.PerPage)

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM passes p "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	sortColumn, ok := passSortColumns[q.SortBy]
	if !ok {
		sortColumn = "p.created_at"
	}
	sortDir := "ASC"
	if strings.EqualFold(q.SortDir, "desc") {
		sortDir = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM passes p %s ORDER BY %s %s, p.id ASC LIMIT ? OFFSET ?`,
		passColumns, where, sortColumn, sortDir)
	rows, err := s.db.Query(query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &models.PassPage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// ListAllPasses returns every pass of a university matching the filters,
// without paging.
func (s *Store) ListAllPasses(universityID string, filters []PassFilter) ([]*models.Pass, error) {
	where, args, err := buildWhere(universityID, filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+passColumns+` FROM passes p `+where+` ORDER BY p.created_at ASC, p.id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := []*models.Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

// ListPassesDueBefore returns active or suspended passes, across all
// universities, whose end due date has passed.
func (s *Store) ListPassesDueBefore(now time.Time) ([]*models.Pass, error) {
	rows, err := s.db.Query(`SELECT `+passColumns+` FROM passes p
		WHERE p.status IN (?, ?) AND p.end_due_date IS NOT NULL AND p.end_due_date < ?
		ORDER BY p.end_due_date ASC`,
		models.PassStatusActive, models.PassStatusSuspended, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := []*models.Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

// UpdatePassStatus moves a pass to status if it is still in from. It returns
// ErrConflict when the pass changed state in the meantime.
func (s *Store) UpdatePassStatus(id, from, to string) error {
	res, err := s.db.Exec("UPDATE passes SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, time.Now().UTC(), id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetPass(id); err != nil {
			return err
		}
		return fmt.Errorf("pass %s is no longer %s: %w", id, from, ErrConflict)
	}
	return nil
}

// SetPassInstalled records whether the pass is installed on a wallet platform.
func (s *Store) SetPassInstalled(id, platform string, installed bool) error {
	var column string
	switch platform {
	case models.PlatformApple:
		column = "apple_installed"
	case models.PlatformGoogle:
		column = "google_installed"
	default:
		return fmt.Errorf("unknown platform %q", platform)
	}
	res, err := s.db.Exec("UPDATE passes SET "+column+" = ?, updated_at = ? WHERE id = ?", installed, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res, "pass "+id)
}

// DeletePass removes a pass.
func (s *Store) DeletePass(id string) error {
	res, err := s.db.Exec("DELETE FROM passes WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "pass "+id)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
