package models

import "time"

// Pass lifecycle states.
const (
	PassStatusActive    = "active"
	PassStatusSuspended = "suspended"
	PassStatusExpired   = "expired"
	PassStatusRevoked   = "revoked"
)

// Payment states a student can be in.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentOverdue = "overdue"
)

// Wallet platforms a pass can be installed on.
const (
	PlatformApple  = "apple"
	PlatformGoogle = "google"
)

// Pass is a student identification pass issued by a university.
type Pass struct {
	ID               string     `json:"id"`
	UniversityID     string     `json:"universityId"`
	UniqueIdentifier string     `json:"uniqueIdentifier"`
	CareerID         string     `json:"careerId"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Semester         int        `json:"semester"`
	EnrollmentYear   int        `json:"enrollmentYear"`
	PaymentStatus    string     `json:"paymentStatus"`
	EndDueDate       *time.Time `json:"endDueDate,omitempty"`
	Scholarship      bool       `json:"scholarship"`
	Status           string     `json:"status"`
	SerialNumber     string     `json:"serialNumber"`
	AppleInstalled   bool       `json:"appleInstalled"`
	GoogleInstalled  bool       `json:"googleInstalled"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Installed reports whether the pass lives in at least one wallet.
func (p *Pass) Installed() bool {
	return p.AppleInstalled || p.GoogleInstalled
}

// PassPage is one page of a filtered pass listing.
type PassPage struct {
	Items   []*Pass `json:"items"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
}
