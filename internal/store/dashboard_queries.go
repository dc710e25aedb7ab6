package store

import (
	"github.com/mimmersdev/pases-universitarios/internal/models"
)

// GetDashboardMetrics aggregates counts for the admin dashboard. An empty
// universityID covers every university.
func (s *Store) GetDashboardMetrics(universityID string) (*models.DashboardMetrics, error) {
	m := &models.DashboardMetrics{
		PassesByStatus: map[string]int{
			models.PassStatusActive:    0,
			models.PassStatusSuspended: 0,
			models.PassStatusExpired:   0,
			models.PassStatusRevoked:   0,
		},
		PassesByPayment: map[string]int{
			models.PaymentPaid:    0,
			models.PaymentPending: 0,
			models.PaymentOverdue: 0,
		},
	}

	scope, args := "", []any{}
	if universityID != "" {
		scope = " WHERE university_id = ?"
		args = append(args, universityID)
	}

	if universityID == "" {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM universities").Scan(&m.Universities); err != nil {
			return nil, err
		}
	} else {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM universities WHERE id = ?", universityID).Scan(&m.Universities); err != nil {
			return nil, err
		}
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM careers"+scope, args...).Scan(&m.Careers); err != nil {
		return nil, err
	}
	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(apple_installed), 0), COALESCE(SUM(google_installed), 0)
		FROM passes`+scope, args...).Scan(&m.Passes, &m.AppleInstalls, &m.GoogleInstalls)
	if err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM notifications"+scope, args...).Scan(&m.NotificationsSent); err != nil {
		return nil, err
	}

	if err := s.countGrouped("status", scope, args, m.PassesByStatus); err != nil {
		return nil, err
	}
	if err := s.countGrouped("payment_status", scope, args, m.PassesByPayment); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) countGrouped(column, scope string, args []any, into map[string]int) error {
	rows, err := s.db.Query("SELECT "+column+", COUNT(*) FROM passes"+scope+" GROUP BY "+column, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}
