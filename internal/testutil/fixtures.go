package testutil

import (
	"testing"

	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/store"
)

// SeedUniversity creates a university named "Test University" offering the
// given career codes and returns its ID.
func SeedUniversity(t *testing.T, s *store.Store, careers ...string) string {
	t.Helper()
	return SeedUniversityNamed(t, s, "Test University", careers...)
}

// SeedUniversityNamed is SeedUniversity with a chosen name. Each call gets its own city.
func SeedUniversityNamed(t *testing.T, s *store.Store, name string, careers ...string) string {
	t.Helper()
	city, err := s.CreateCity("City of " + name)
	if err != nil {
		t.Fatalf("Failed to create city for %s: %v", name, err)
	}
	u, err := s.CreateUniversity(name, "", city.ID)
	if err != nil {
		t.Fatalf("Failed to create university %s: %v", name, err)
	}
	for _, code := range careers {
		if _, err := s.CreateCareer(u.ID, code, "Career "+code); err != nil {
			t.Fatalf("Failed to create career %s: %v", code, err)
		}
	}
	return u.ID
}

// SeedPass creates an active, paid pass with no due date.
func SeedPass(t *testing.T, s *store.Store, universityID, uniqueIdentifier, careerID string) *models.Pass {
	t.Helper()
	p := &models.Pass{
		UniversityID:     universityID,
		UniqueIdentifier: uniqueIdentifier,
		CareerID:         careerID,
		Name:             "Student " + uniqueIdentifier,
		EnrollmentYear:   2024,
		PaymentStatus:    models.PaymentPaid,
	}
	if err := s.CreatePass(p); err != nil {
		t.Fatalf("Failed to create pass %s/%s: %v", uniqueIdentifier, careerID, err)
	}
	return p
}
