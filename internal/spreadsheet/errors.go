package spreadsheet

import "fmt"

// Structural problems reported by FormatError.
const (
	ReasonNoWorksheets     = "no worksheets"
	ReasonNoHeaders        = "no headers"
	ReasonInsufficientRows = "insufficient rows"
	ReasonUnreadable       = "unreadable workbook"
	ReasonUnsupported      = "unsupported file format"
)

// FormatError means the workbook itself cannot be imported.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid spreadsheet: %s: %v", e.Reason, e.Err)
	}
	return "invalid spreadsheet: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports a single cell that does not match its column type.
// Row is the 1-based row number as displayed by spreadsheet software.
type ValidationError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d, column %q: %s (got %q)", e.Row, e.Column, e.Reason, e.Value)
}
