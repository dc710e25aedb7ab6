package spreadsheet

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ISOLayout matches the millisecond precision instant format used on the wire.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// serialEpoch is day zero of spreadsheet serial dates. It absorbs the 1900
// leap year bug, so serials after February 1900 land on the right day.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

var (
	errNotNumber  = errors.New("expected a number")
	errNotBoolean = errors.New("expected a boolean (true/false, 1/0, sí/no, yes/no)")
	errNotDate    = errors.New("expected a date")
)

// convertCell converts raw by fieldType. Spreadsheet serial dates are only
// recognised in cells stored as numbers.
func convertCell(fieldType FieldType, raw string, numeric bool) (any, error) {
	switch fieldType {
	case FieldTypeNumber:
		return toNumber(raw)
	case FieldTypeBoolean:
		return toBoolean(raw)
	case FieldTypeDate:
		return toDate(raw, numeric)
	default:
		return raw, nil
	}
}

func toNumber(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errNotNumber
	}
	return f, nil
}

func toBoolean(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "sí", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, errNotBoolean
}

func toDate(raw string, numeric bool) (string, error) {
	value := strings.TrimSpace(raw)
	if numeric {
		if serial, err := toNumber(value); err == nil {
			return SerialToTime(serial).Format(ISOLayout), nil
		}
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC().Format(ISOLayout), nil
		}
	}
	return "", errNotDate
}

// SerialToTime converts a spreadsheet serial date to a UTC instant.
func SerialToTime(serial float64) time.Time {
	ms := int64(math.Round(serial * 86400000))
	return serialEpoch.Add(time.Duration(ms) * time.Millisecond)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
