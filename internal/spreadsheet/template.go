package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Template builds an empty workbook whose header row matches schema, ready to
// be filled in and uploaded.
func Template(schema []FieldDefinition) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	headers := make([]interface{}, len(schema))
	for i, field := range schema {
		headers[i] = field.Title
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	if len(schema) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(schema))
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
			return nil, err
		}
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
