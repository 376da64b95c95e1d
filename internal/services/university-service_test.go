package services

import (
	"testing"

	"github.com/campus-agora/market-svc/internal/domain"
	"github.com/campus-agora/market-svc/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.University{},
		&domain.UniversityDetail{},
		&domain.Item{},
		&domain.ItemUniversity{},
		&domain.UserUniversity{},
		&domain.VerificationToken{},
		&domain.PasswordResetToken{},
	))

	return db
}

func newUniversityService(t *testing.T) (UniversityService, *gorm.DB) {
	db := setupTestDB(t)
	return NewUniversityService(repository.NewUniversityRepository(db)), db
}

func TestNameForDomain(t *testing.T) {
	svc, _ := newUniversityService(t)

	tests := []struct {
		name     string
		domain   string
		expected string
	}{
		{"known domain", "harvard.edu", "Harvard University"},
		{"known domain uppercase", "MIT.EDU", "Massachusetts Institute of Technology"},
		{"derived name", "gatech.edu", "Gatech University"},
		{"derived multi label", "cs.cmu.edu", "Cmu University"},
		{"leading at sign", "@stanford.edu", "Stanford University"},
		{"empty", "", "Unknown University"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.NameForDomain(tt.domain))
		})
	}
}

func TestResolveByDomainCreatesOnFirstSight(t *testing.T) {
	svc, db := newUniversityService(t)

	u := svc.ResolveByDomain("gatech.edu")
	require.NotNil(t, u)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "Gatech University", u.Name)
	assert.Equal(t, "gatech-university", u.Slug)
	assert.Equal(t, "gatech.edu", u.Domain)

	var count int64
	db.Model(&domain.University{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResolveByDomainIsIdempotent(t *testing.T) {
	svc, db := newUniversityService(t)

	first := svc.ResolveByDomain("mit.edu")
	second := svc.ResolveByDomain("MIT.edu")

	require.NotZero(t, first.ID)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&domain.University{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResolveFromEmail(t *testing.T) {
	svc, _ := newUniversityService(t)

	u, err := svc.ResolveFromEmail("student@berkeley.edu")
	require.NoError(t, err)
	assert.Equal(t, "University of California, Berkeley", u.Name)

	_, err = svc.ResolveFromEmail("not-an-email")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolveByDomainEmptyReturnsSentinel(t *testing.T) {
	svc, _ := newUniversityService(t)

	u := svc.ResolveByDomain("")
	assert.Zero(t, u.ID)
	assert.Equal(t, "unknown", u.Slug)
	assert.Equal(t, "Unknown University", u.Name)
}

func TestLookupByName(t *testing.T) {
	svc, _ := newUniversityService(t)

	// Seed via resolution.
	created := svc.ResolveByDomain("harvard.edu")
	require.NotZero(t, created.ID)

	known, err := svc.LookupByName("Harvard University")
	require.NoError(t, err)
	assert.True(t, known.Exists)
	assert.Equal(t, created.ID, known.ID)
	assert.Equal(t, "harvard-university", known.Slug)

	unknown, err := svc.LookupByName("Atlantis Institute of Magic")
	require.NoError(t, err)
	assert.False(t, unknown.Exists)
	assert.Zero(t, unknown.ID)
	assert.Equal(t, "atlantis-institute-of-magic", unknown.Slug)

	_, err = svc.LookupByName("   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDetails(t *testing.T) {
	svc, db := newUniversityService(t)

	created := svc.ResolveByDomain("stanford.edu")
	require.NotZero(t, created.ID)

	require.NoError(t, db.Create(&domain.UniversityDetail{
		UniversityID: created.ID,
		OfficialName: "Leland Stanford Junior University",
		Location:     "Stanford, CA",
		FoundedYear:  1885,
	}).Error)

	details, err := svc.Details(created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, details.University.ID)
	require.NotNil(t, details.Details)

	detail, ok := details.Details.(*domain.UniversityDetail)
	require.True(t, ok)
	assert.Equal(t, "Leland Stanford Junior University", detail.OfficialName)

	_, err = svc.Details("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
