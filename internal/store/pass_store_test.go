package store_test

import (
	"testing"
	"time"

	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassStore_CreateAndGet(t *testing.T) {
	s := store.New(testutil.SetupTestDB(t))
	universityID := testutil.SeedUniversity(t, s, "SIS")

	due := time.Date(2030, 6, 30, 0, 0, 0, 0, time.UTC)
	p := &models.Pass{
		UniversityID: universityID, UniqueIdentifier: "1001", CareerID: "SIS", Name: "Ana",
		EnrollmentYear: 2022, PaymentStatus: models.PaymentPaid, EndDueDate: &due, Scholarship: true,
	}
	require.NoError(t, s.CreatePass(p))
	assert.NotEmpty(t, p.ID)
	assert.NotEmpty(t, p.SerialNumber)
	assert.Equal(t, models.PassStatusActive, p.Status)

	got, err := s.GetPass(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.True(t, got.Scholarship)
	require.NotNil(t, got.EndDueDate)
	assert.True(t, due.Equal(*got.EndDueDate))

	dup := &models.Pass{UniversityID: universityID, UniqueIdentifier: "1001", CareerID: "SIS", Name: "Ana",
		EnrollmentYear: 2022, PaymentStatus: models.PaymentPaid}
	assert.ErrorIs(t, s.CreatePass(dup), store.ErrConflict)

	noCareer := &models.Pass{UniversityID: universityID, UniqueIdentifier: "1002", CareerID: "NOPE", Name: "Bo",
		EnrollmentYear: 2022, PaymentStatus: models.PaymentPaid}
	assert.ErrorIs(t, s.CreatePass(noCareer), store.ErrInUse)
}

func TestPassStore_StatusAndInstall(t *testing.T) {
	s := store.New(testutil.SetupTestDB(t))
	universityID := testutil.SeedUniversity(t, s, "SIS")
	p := testutil.SeedPass(t, s, universityID, "A1", "SIS")

	require.NoError(t, s.UpdatePassStatus(p.ID, models.PassStatusActive, models.PassStatusSuspended))
	assert.ErrorIs(t, s.UpdatePassStatus(p.ID, models.PassStatusActive, models.PassStatusRevoked), store.ErrConflict)
	assert.ErrorIs(t, s.UpdatePassStatus("missing", models.PassStatusActive, models.PassStatusRevoked), store.ErrNotFound)

	require.NoError(t, s.SetPassInstalled(p.ID, models.PlatformGoogle, true))
	got, _ := s.GetPass(p.ID)
	assert.True(t, got.GoogleInstalled)
	assert.False(t, got.AppleInstalled)
	assert.Equal(t, models.PassStatusSuspended, got.Status)

	assert.Error(t, s.SetPassInstalled(p.ID, "windows", true))
}

func TestPassStore_ListPasses(t *testing.T) {
	s := store.New(testutil.SetupTestDB(t))
	universityID := testutil.SeedUniversity(t, s, "SIS", "MED")
	other := testutil.SeedUniversityNamed(t, s, "Other U", "SIS")

	past := time.Now().UTC().AddDate(0, -1, 0)
	future := time.Now().UTC().AddDate(1, 0, 0)
	seed := []*models.Pass{
		{UniqueIdentifier: "A1", CareerID: "SIS", Name: "Ana Pérez", Email: "ana@uni.edu", PaymentStatus: models.PaymentPaid, EndDueDate: &past},
		{UniqueIdentifier: "B2", CareerID: "SIS", Name: "Bruno Díaz", PaymentStatus: models.PaymentPending, EndDueDate: &future, GoogleInstalled: true},
		{UniqueIdentifier: "C3", CareerID: "MED", Name: "Carla Ruiz", PaymentStatus: models.PaymentOverdue, AppleInstalled: true},
		{UniqueIdentifier: "D_4", CareerID: "MED", Name: "Diego 100%", PaymentStatus: models.PaymentPaid},
	}
	for _, p := range seed {
		p.UniversityID = universityID
		p.EnrollmentYear = 2023
		require.NoError(t, s.CreatePass(p))
	}
	testutil.SeedPass(t, s, other, "A1", "SIS")

	list := func(raw ...string) *models.PassPage {
		t.Helper()
		filters, err := store.ParsePassFilters(raw)
		require.NoError(t, err)
		page, err := s.ListPasses(universityID, store.PassQuery{Filters: filters, SortBy: "uniqueIdentifier"})
		require.NoError(t, err)
		return page
	}
	ids := func(page *models.PassPage) []string {
		out := []string{}
		for _, p := range page.Items {
			out = append(out, p.UniqueIdentifier)
		}
		return out
	}

	assert.Equal(t, []string{"A1", "B2", "C3", "D_4"}, ids(list()))
	assert.Equal(t, []string{"A1"}, ids(list("search:ana@")))
	assert.Equal(t, []string{"D_4"}, ids(list("search:100%")), "LIKE wildcards are matched literally")
	assert.Equal(t, []string{"C3", "D_4"}, ids(list("career:MED")))
	assert.Equal(t, []string{"A1", "D_4"}, ids(list("payment:paid")))
	assert.Equal(t, []string{"A1"}, ids(list("dueBefore:"+time.Now().UTC().Format("2006-01-02"))))
	assert.Equal(t, []string{"B2"}, ids(list("dueAfter:"+time.Now().UTC().Format(time.RFC3339))))
	assert.Equal(t, []string{"B2", "C3"}, ids(list("installed:true")))
	assert.Equal(t, []string{"C3"}, ids(list("installed:apple")))
	assert.Equal(t, []string{"A1", "D_4"}, ids(list("installed:false")))
	assert.Equal(t, []string{"C3"}, ids(list("career:MED", "installed:true")))
	assert.Empty(t, ids(list("status:revoked")))

	page, err := s.ListPasses(universityID, store.PassQuery{Page: 2, PerPage: 3, SortBy: "name", SortDir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, []string{"A1"}, ids(page))
}

func TestPassStore_ListPassesDueBefore(t *testing.T) {
	s := store.New(testutil.SetupTestDB(t))
	universityID := testutil.SeedUniversity(t, s, "SIS")

	past := time.Now().UTC().Add(-time.Hour)
	for i, status := range []string{models.PassStatusActive, models.PassStatusSuspended, models.PassStatusRevoked} {
		p := &models.Pass{UniversityID: universityID, UniqueIdentifier: string(rune('A' + i)), CareerID: "SIS",
			Name: "x", EnrollmentYear: 2020, PaymentStatus: models.PaymentPaid, EndDueDate: &past, Status: status}
		require.NoError(t, s.CreatePass(p))
	}
	testutil.SeedPass(t, s, universityID, "NODATE", "SIS")

	due, err := s.ListPassesDueBefore(time.Now())
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestParsePassFilter(t *testing.T) {
	tests := []struct {
		raw     string
		want    store.PassFilter
		wantErr bool
	}{
		{raw: "status:active", want: store.StatusFilter{Status: "active"}},
		{raw: "payment:overdue", want: store.PaymentFilter{Status: "overdue"}},
		{raw: "career:ING-SIS", want: store.CareerFilter{CareerID: "ING-SIS"}},
		{raw: "search: ana ", want: store.SearchFilter{Term: "ana"}},
		{raw: "search:a:b", want: store.SearchFilter{Term: "a:b"}},
		{raw: "dueBefore:2025-01-31", want: store.DueBeforeFilter{Date: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)}},
		{raw: "installed:google", want: store.InstalledFilter{Installed: true, Platform: "google"}},
		{raw: "installed:false", want: store.InstalledFilter{Installed: false}},
		{raw: "status:pending", wantErr: true},
		{raw: "dueAfter:tomorrow", wantErr: true},
		{raw: "installed:maybe", wantErr: true},
		{raw: "color:red", wantErr: true},
		{raw: "status", wantErr: true},
		{raw: "career:", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := store.ParsePassFilter(tt.raw)
			if tt.wantErr {
				var ferr *store.FilterError
				assert.ErrorAs(t, err, &ferr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
