package passes

import (
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/spreadsheet"
)

// Column titles of the import spreadsheet.
const (
	ColUniqueIdentifier = "uniqueIdentifier"
	ColCareerID         = "careerId"
	ColName             = "name"
	ColEmail            = "email"
	ColPhone            = "phone"
	ColSemester         = "semester"
	ColEnrollmentYear   = "enrollmentYear"
	ColPaymentStatus    = "paymentStatus"
	ColEndDueDate       = "endDueDate"
	ColScholarship      = "scholarship"
)

// ImportSchema describes the columns of a pass import spreadsheet.
var ImportSchema = []spreadsheet.FieldDefinition{
	{Title: ColUniqueIdentifier, Type: spreadsheet.FieldTypeString},
	{Title: ColCareerID, Type: spreadsheet.FieldTypeString},
	{Title: ColName, Type: spreadsheet.FieldTypeString},
	{Title: ColEmail, Type: spreadsheet.FieldTypeString, Optional: true},
	{Title: ColPhone, Type: spreadsheet.FieldTypeString, Optional: true},
	{Title: ColSemester, Type: spreadsheet.FieldTypeNumber, Optional: true},
	{Title: ColEnrollmentYear, Type: spreadsheet.FieldTypeNumber},
	{
		Title:       ColPaymentStatus,
		Type:        spreadsheet.FieldTypeString,
		ValidValues: []string{models.PaymentPaid, models.PaymentPending, models.PaymentOverdue},
	},
	{Title: ColEndDueDate, Type: spreadsheet.FieldTypeDate, Optional: true},
	{Title: ColScholarship, Type: spreadsheet.FieldTypeBoolean, Optional: true},
}
