package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/mimmersdev/pases-universitarios/internal/models"
)

// CreateNotification records a sent notification and fills in its ID and timestamp.
func (s *Store) CreateNotification(n *models.Notification) error {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	_, err := s.db.Exec(`INSERT INTO notifications (id, university_id, title, message, recipients, delivered, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UniversityID, n.Title, n.Message, n.Recipients, n.Delivered, n.Failed, n.CreatedAt)
	return translateError(err, "notification")
}

// ListNotifications returns a university's notifications, newest first.
func (s *Store) ListNotifications(universityID string) ([]*models.Notification, error) {
	rows, err := s.db.Query(`SELECT id, university_id, title, message, recipients, delivered, failed, created_at
		FROM notifications WHERE university_id = ? ORDER BY created_at DESC, id ASC`, universityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UniversityID, &n.Title, &n.Message, &n.Recipients, &n.Delivered, &n.Failed, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
