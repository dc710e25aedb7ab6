// Cities, universities and careers.

package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/mimmersdev/pases-universitarios/internal/models"
)

// ListCities returns all cities ordered by name.
func (s *Store) ListCities() ([]*models.City, error) {
	rows, err := s.db.Query("SELECT id, name, created_at FROM cities ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := []*models.City{}
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, &c)
	}
	return cities, rows.Err()
}

// CreateCity inserts a city with a fresh ID.
func (s *Store) CreateCity(name string) (*models.City, error) {
	city := &models.City{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	_, err := s.db.Exec("INSERT INTO cities (id, name, created_at) VALUES (?, ?, ?)", city.ID, city.Name, city.CreatedAt)
	if err != nil {
		return nil, translateError(err, "city "+name)
	}
	return city, nil
}

// GetCity retrieves a city by ID.
func (s *Store) GetCity(id string) (*models.City, error) {
	var c models.City
	err := s.db.QueryRow("SELECT id, name, created_at FROM cities WHERE id = ?", id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, translateError(err, "city "+id)
	}
	return &c, nil
}

// UpdateCity renames a city.
func (s *Store) UpdateCity(id, name string) error {
	res, err := s.db.Exec("UPDATE cities SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return translateError(err, "city "+name)
	}
	return requireAffected(res, "city "+id)
}

// DeleteCity removes a city. Cities that still host universities return ErrInUse.
func (s *Store) DeleteCity(id string) error {
	res, err := s.db.Exec("DELETE FROM cities WHERE id = ?", id)
	if err != nil {
		return translateError(err, "city "+id)
	}
	return requireAffected(res, "city "+id)
}

const universityColumns = `u.id, u.name, u.short_name, u.city_id, c.name, u.created_at, u.updated_at`

func scanUniversity(row scanner) (*models.University, error) {
	var u models.University
	if err := row.Scan(&u.ID, &u.Name, &u.ShortName, &u.CityID, &u.CityName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUniversities returns all universities with their city name.
func (s *Store) ListUniversities() ([]*models.University, error) {
	rows, err := s.db.Query(`SELECT ` + universityColumns + `
		FROM universities u JOIN cities c ON c.id = u.city_id
		ORDER BY u.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	universities := []*models.University{}
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		universities = append(universities, u)
	}
	return universities, rows.Err()
}

// GetUniversity retrieves a university by ID.
func (s *Store) GetUniversity(id string) (*models.University, error) {
	row := s.db.QueryRow(`SELECT `+universityColumns+`
		FROM universities u JOIN cities c ON c.id = u.city_id
		WHERE u.id = ?`, id)
	u, err := scanUniversity(row)
	if err != nil {
		return nil, translateError(err, "university "+id)
	}
	return u, nil
}

// UniversityExists is a cheap existence check used before streaming imports.
func (s *Store) UniversityExists(id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM universities WHERE id = ?)", id).Scan(&exists)
	return exists, err
}

// CreateUniversity inserts a university. The city must exist.
func (s *Store) CreateUniversity(name, shortName, cityID string) (*models.University, error) {
	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := s.db.Exec(`INSERT INTO universities (id, name, short_name, city_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, id, name, shortName, cityID, now, now)
	if err != nil {
		return nil, translateError(err, "university "+name)
	}
	return s.GetUniversity(id)
}

// UpdateUniversity replaces the editable fields of a university.
func (s *Store) UpdateUniversity(id, name, shortName, cityID string) (*models.University, error) {
	res, err := s.db.Exec(`UPDATE universities SET name = ?, short_name = ?, city_id = ?, updated_at = ?
		WHERE id = ?`, name, shortName, cityID, time.Now().UTC(), id)
	if err != nil {
		return nil, translateError(err, "university "+name)
	}
	if err := requireAffected(res, "university "+id); err != nil {
		return nil, err
	}
	return s.GetUniversity(id)
}

// DeleteUniversity removes a university together with its careers. Universities
// that still have passes return ErrInUse.
func (s *Store) DeleteUniversity(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var passes int
	if err := tx.QueryRow("SELECT COUNT(*) FROM passes WHERE university_id = ?", id).Scan(&passes); err != nil {
		return err
	}
	if passes > 0 {
		return ErrInUse
	}
	res, err := tx.Exec("DELETE FROM universities WHERE id = ?", id)
	if err != nil {
		return translateError(err, "university "+id)
	}
	if err := requireAffected(res, "university "+id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListCareers returns the careers of a university ordered by code.
func (s *Store) ListCareers(universityID string) ([]*models.Career, error) {
	rows, err := s.db.Query(`SELECT university_id, id, name, created_at FROM careers
		WHERE university_id = ? ORDER BY id ASC`, universityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	careers := []*models.Career{}
	for rows.Next() {
		var c models.Career
		if err := rows.Scan(&c.UniversityID, &c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		careers = append(careers, &c)
	}
	return careers, rows.Err()
}

// GetCareer retrieves one career of a university.
func (s *Store) GetCareer(universityID, id string) (*models.Career, error) {
	var c models.Career
	err := s.db.QueryRow(`SELECT university_id, id, name, created_at FROM careers
		WHERE university_id = ? AND id = ?`, universityID, id).Scan(&c.UniversityID, &c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, translateError(err, "career "+id)
	}
	return &c, nil
}

// CreateCareer adds a career code to a university.
func (s *Store) CreateCareer(universityID, id, name string) (*models.Career, error) {
	c := &models.Career{UniversityID: universityID, ID: id, Name: name, CreatedAt: time.Now().UTC()}
	_, err := s.db.Exec("INSERT INTO careers (university_id, id, name, created_at) VALUES (?, ?, ?, ?)",
		c.UniversityID, c.ID, c.Name, c.CreatedAt)
	if err != nil {
		return nil, translateError(err, "career "+id)
	}
	return c, nil
}

// UpdateCareer renames a career.
func (s *Store) UpdateCareer(universityID, id, name string) error {
	res, err := s.db.Exec("UPDATE careers SET name = ? WHERE university_id = ? AND id = ?", name, universityID, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "career "+id)
}

// DeleteCareer removes a career. Careers with passes return ErrInUse.
func (s *Store) DeleteCareer(universityID, id string) error {
	res, err := s.db.Exec("DELETE FROM careers WHERE university_id = ? AND id = ?", universityID, id)
	if err != nil {
		return translateError(err, "career "+id)
	}
	return requireAffected(res, "career "+id)
}

// CareerExists reports whether a university offers the career code.
func (s *Store) CareerExists(universityID, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM careers WHERE university_id = ? AND id = ?)", universityID, id).Scan(&exists)
	return exists, err
}
