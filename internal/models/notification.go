package models

import "time"

// Notification is a push message sent to the wallet holders of a university.
type Notification struct {
	ID           string    `json:"id"`
	UniversityID string    `json:"universityId"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Recipients   int       `json:"recipients"`
	Delivered    int       `json:"delivered"`
	Failed       int       `json:"failed"`
	CreatedAt    time.Time `json:"createdAt"`
}
