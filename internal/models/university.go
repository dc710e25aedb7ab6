// This file defines the academic catalog: cities, universities and the
// careers each university offers.

package models

import "time"

// City is where a university campus is located.
type City struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// University owns careers and the passes issued to its students.
type University struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"shortName"`
	CityID    string    `json:"cityId"`
	CityName  string    `json:"cityName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Career is identified by a code chosen by the university (e.g. "ING-SIS").
// The code is the careerId column of the import spreadsheet.
type Career struct {
	UniversityID string    `json:"universityId"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}
