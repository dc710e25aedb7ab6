package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mimmersdev/pases-universitarios/internal/models"
)

// FilterKind names one variant of PassFilter. On the wire a filter is written
// as "kind:value", e.g. "status:active" or "dueBefore:2025-06-30".
type FilterKind string

const (
	FilterSearch    FilterKind = "search"
	FilterStatus    FilterKind = "status"
	FilterPayment   FilterKind = "payment"
	FilterCareer    FilterKind = "career"
	FilterDueBefore FilterKind = "dueBefore"
	FilterDueAfter  FilterKind = "dueAfter"
	FilterInstalled FilterKind = "installed"
)

// PassFilter is one of SearchFilter, StatusFilter, PaymentFilter,
// CareerFilter, DueBeforeFilter, DueAfterFilter or InstalledFilter.
type PassFilter interface {
	Kind() FilterKind
	isPassFilter()
}

// SearchFilter matches a substring of the name, unique identifier or email.
type SearchFilter struct{ Term string }

type StatusFilter struct{ Status string }

type PaymentFilter struct{ Status string }

type CareerFilter struct{ CareerID string }

// DueBeforeFilter matches passes due strictly before Date.
type DueBeforeFilter struct{ Date time.Time }

// DueAfterFilter matches passes due strictly after Date.
type DueAfterFilter struct{ Date time.Time }

// InstalledFilter matches on wallet installation. An empty Platform means any wallet.
type InstalledFilter struct {
	Installed bool
	Platform  string
}

func (SearchFilter) Kind() FilterKind    { return FilterSearch }
func (StatusFilter) Kind() FilterKind    { return FilterStatus }
func (PaymentFilter) Kind() FilterKind   { return FilterPayment }
func (CareerFilter) Kind() FilterKind    { return FilterCareer }
func (DueBeforeFilter) Kind() FilterKind { return FilterDueBefore }
func (DueAfterFilter) Kind() FilterKind  { return FilterDueAfter }
func (InstalledFilter) Kind() FilterKind { return FilterInstalled }

func (SearchFilter) isPassFilter()    {}
func (StatusFilter) isPassFilter()    {}
func (PaymentFilter) isPassFilter()   {}
func (CareerFilter) isPassFilter()    {}
func (DueBeforeFilter) isPassFilter() {}
func (DueAfterFilter) isPassFilter()  {}
func (InstalledFilter) isPassFilter() {}

// FilterError reports a filter that could not be parsed.
type FilterError struct {
	Raw    string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter %q: %s", e.Raw, e.Reason)
}

var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParsePassFilter parses one "kind:value" filter.
func ParsePassFilter(raw string) (PassFilter, error) {
	kind, value, ok := strings.Cut(raw, ":")
	if !ok {
		return nil, &FilterError{Raw: raw, Reason: "expected kind:value"}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, &FilterError{Raw: raw, Reason: "empty value"}
	}

	switch FilterKind(kind) {
	case FilterSearch:
		return SearchFilter{Term: value}, nil
	case FilterStatus:
		switch value {
		case models.PassStatusActive, models.PassStatusSuspended, models.PassStatusExpired, models.PassStatusRevoked:
			return StatusFilter{Status: value}, nil
		}
		return nil, &FilterError{Raw: raw, Reason: "unknown pass status"}
	case FilterPayment:
		switch value {
		case models.PaymentPaid, models.PaymentPending, models.PaymentOverdue:
			return PaymentFilter{Status: value}, nil
		}
		return nil, &FilterError{Raw: raw, Reason: "unknown payment status"}
	case FilterCareer:
		return CareerFilter{CareerID: value}, nil
	case FilterDueBefore, FilterDueAfter:
		date, err := parseDueDate(value)
		if err != nil {
			return nil, &FilterError{Raw: raw, Reason: "invalid date"}
		}
		if FilterKind(kind) == FilterDueBefore {
			return DueBeforeFilter{Date: date}, nil
		}
		return DueAfterFilter{Date: date}, nil
	case FilterInstalled:
		switch value {
		case models.PlatformApple, models.PlatformGoogle:
			return InstalledFilter{Installed: true, Platform: value}, nil
		}
		installed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, &FilterError{Raw: raw, Reason: "expected true, false, apple or google"}
		}
		return InstalledFilter{Installed: installed}, nil
	default:
		return nil, &FilterError{Raw: raw, Reason: "unknown filter kind"}
	}
}

// ParsePassFilters parses every raw filter, failing on the first bad one.
func ParsePassFilters(raw []string) ([]PassFilter, error) {
	filters := make([]PassFilter, 0, len(raw))
	for _, r := range raw {
		f, err := ParsePassFilter(r)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseDueDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterClause renders one filter as a WHERE fragment over the passes table
// aliased as p.
func filterClause(f PassFilter) (string, []any, error) {
	switch f := f.(type) {
	case SearchFilter:
		pattern := "%" + likeEscaper.Replace(f.Term) + "%"
		return `(p.name LIKE ? ESCAPE '\' OR p.unique_identifier LIKE ? ESCAPE '\' OR p.email LIKE ? ESCAPE '\')`,
			[]any{pattern, pattern, pattern}, nil
	case StatusFilter:
		return "p.status = ?", []any{f.Status}, nil
	case PaymentFilter:
		return "p.payment_status = ?", []any{f.Status}, nil
	case CareerFilter:
		return "p.career_id = ?", []any{f.CareerID}, nil
	case DueBeforeFilter:
		return "(p.end_due_date IS NOT NULL AND p.end_due_date < ?)", []any{f.Date.UTC()}, nil
	case DueAfterFilter:
		return "(p.end_due_date IS NOT NULL AND p.end_due_date > ?)", []any{f.Date.UTC()}, nil
	case InstalledFilter:
		var column string
		switch f.Platform {
		case models.PlatformApple:
			column = "p.apple_installed"
		case models.PlatformGoogle:
			column = "p.google_installed"
		case "":
			column = "(p.apple_installed OR p.google_installed)"
		default:
			return "", nil, fmt.Errorf("unknown platform %q", f.Platform)
		}
		if f.Installed {
			return column + " = 1", nil, nil
		}
		return column + " = 0", nil, nil
	default:
		return "", nil, fmt.Errorf("unsupported filter %T", f)
	}
}

// buildWhere joins the university scope and every filter with AND.
func buildWhere(universityID string, filters []PassFilter) (string, []any, error) {
	clauses := []string{"p.university_id = ?"}
	args := []any{universityID}
	for _, f := range filters {
		clause, fargs, err := filterClause(f)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, fargs...)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args, nil
}
