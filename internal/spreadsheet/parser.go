package spreadsheet

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Parse reads the first worksheet of an OOXML workbook and converts every
// non-empty data row according to schema. Row 0 is the header row. Columns
// whose title is not in the schema are carried through as raw strings.
//
// The whole file is validated before any row is returned: the first cell
// that cannot be converted aborts the parse with a *ValidationError. A sheet
// whose data rows are all blank fails with ReasonInsufficientRows.
func Parse(data []byte, schema []FieldDefinition) ([]ParsedRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Reason: ReasonUnreadable, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Reason: ReasonNoWorksheets}
	}

	// Raw values keep date cells as serial numbers instead of locale strings.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &FormatError{Reason: ReasonUnreadable, Err: err}
	}
	numeric := func(row, col int) bool {
		cell, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return false
		}
		cellType, err := f.GetCellType(sheets[0], cell)
		return err == nil && (cellType == excelize.CellTypeUnset || cellType == excelize.CellTypeNumber)
	}
	return parseRows(rows, schema, numeric)
}

// parseRows converts raw sheet rows. numericCell reports whether the cell at
// a zero-based row and column is stored as a number; nil treats every cell
// as untyped.
func parseRows(rows [][]string, schema []FieldDefinition, numericCell func(row, col int) bool) ([]ParsedRow, error) {
	if len(rows) == 0 || isEmptyRow(rows[0]) {
		return nil, &FormatError{Reason: ReasonNoHeaders}
	}
	if len(rows) < 2 {
		return nil, &FormatError{Reason: ReasonInsufficientRows}
	}

	headers := make([]string, len(rows[0]))
	for i, title := range rows[0] {
		headers[i] = strings.TrimSpace(title)
	}
	fields := schemaIndex(schema)

	var parsed []ParsedRow
	for idx, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		displayRow := idx + 2

		out := make(ParsedRow, len(headers))
		for col, title := range headers {
			if title == "" || col >= len(row) || row[col] == "" {
				continue
			}
			raw := row[col]

			field, known := fields[title]
			if !known {
				out[title] = raw
				continue
			}
			isNumber := numericCell == nil || numericCell(idx+1, col)
			value, err := convertCell(field.Type, raw, isNumber)
			if err != nil {
				return nil, &ValidationError{Row: displayRow, Column: title, Value: raw, Reason: err.Error()}
			}
			out[title] = value
		}
		parsed = append(parsed, out)
	}
	if len(parsed) == 0 {
		return nil, &FormatError{Reason: ReasonInsufficientRows}
	}
	return parsed, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// IsSupportedFile reports whether the upload name looks like a workbook we can read.
// Legacy binary .xls files are not supported.
func IsSupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}
