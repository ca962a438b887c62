package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/billalcoder/skinCare/internal/database/testutil"
	"github.com/billalcoder/skinCare/internal/models"
	apperrors "github.com/billalcoder/skinCare/pkg/errors"
)

func newUserServiceFixture(t *testing.T) *UserService {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewUserService(db)
	require.NoError(t, err)
	return svc
}

func TestCreateLowercasesEmail(t *testing.T) {
	svc := newUserServiceFixture(t)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Name:     "Ayesha",
		Email:    "  Ayesha@Example.COM ",
		Age:      29,
		Gender:   models.GenderFemale,
		SkinType: models.SkinTypeDry,
	})
	require.NoError(t, err)
	require.Equal(t, "ayesha@example.com", user.Email)
	require.False(t, user.IsVerified)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newUserServiceFixture(t)

	input := CreateUserInput{Name: "Ayesha", Email: "ayesha@example.com", Age: 29, Gender: models.GenderFemale, SkinType: models.SkinTypeDry}

	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	require.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)
}

func TestCreateConcurrentDuplicateEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	// Serialize sqlite access so the race resolves at the unique index
	// instead of as a busy error.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	svc, err := NewUserService(db)
	require.NoError(t, err)

	input := CreateUserInput{Name: "Ayesha", Email: "ayesha@example.com", Age: 29, Gender: models.GenderFemale, SkinType: models.SkinTypeDry}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), input)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created, rejected int
	for err := range results {
		if err == nil {
			created++
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)
		rejected++
	}
	require.Equal(t, 1, created)
	require.Equal(t, 1, rejected)
}

func TestCreateDeduplicatesListFields(t *testing.T) {
	svc := newUserServiceFixture(t)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Name:      "Ayesha",
		Email:     "ayesha@example.com",
		Age:       29,
		Gender:    models.GenderFemale,
		SkinType:  models.SkinTypeDry,
		Allergies: []string{"fragrance", " fragrance ", "", "parabens"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"fragrance", "parabens"}, []string(user.Allergies))
}

func TestGetByIDReturnsNotFoundForUnknownUser(t *testing.T) {
	svc := newUserServiceFixture(t)

	_, err := svc.GetByID(context.Background(), "b7f6c1ec-0000-4000-8000-000000000000")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkVerifiedIsIdempotent(t *testing.T) {
	svc := newUserServiceFixture(t)

	user, err := svc.Create(context.Background(), CreateUserInput{Name: "Ayesha", Email: "ayesha@example.com", Age: 29, Gender: models.GenderFemale, SkinType: models.SkinTypeDry})
	require.NoError(t, err)

	require.NoError(t, svc.MarkVerified(context.Background(), user.ID))
	require.NoError(t, svc.MarkVerified(context.Background(), user.ID))

	reloaded, err := svc.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, reloaded.IsVerified)
}

func TestUpdateProfileAppliesOnlyProvidedFields(t *testing.T) {
	svc := newUserServiceFixture(t)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Name:     "Ayesha",
		Email:    "ayesha@example.com",
		Age:      29,
		Gender:   models.GenderFemale,
		SkinType: models.SkinTypeDry,
		Concerns: []string{"acne"},
	})
	require.NoError(t, err)

	newSkinType := models.SkinTypeCombination
	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		SkinType: &newSkinType,
		Concerns: []string{"acne", "dark spots"},
	})
	require.NoError(t, err)
	require.Equal(t, models.SkinTypeCombination, updated.SkinType)
	require.Equal(t, []string{"acne", "dark spots"}, []string(updated.Concerns))
	require.Equal(t, 29, updated.Age)
	require.Equal(t, models.GenderFemale, updated.Gender)
}

func TestUpdateProfileUnknownUserReturnsNotFound(t *testing.T) {
	svc := newUserServiceFixture(t)

	age := 30
	_, err := svc.UpdateProfile(context.Background(), "b7f6c1ec-0000-4000-8000-000000000000", UpdateProfileInput{Age: &age})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCleanupExpiredOTPsClearsOnlyStaleCodes(t *testing.T) {
	svc := newUserServiceFixture(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	stale, err := svc.Create(context.Background(), CreateUserInput{Name: "Stale", Email: "stale@example.com", Age: 20, Gender: models.GenderMale, SkinType: models.SkinTypeOily})
	require.NoError(t, err)
	require.NoError(t, svc.SetPendingOTP(context.Background(), stale.ID, "hash-a", now.Add(-time.Minute)))

	live, err := svc.Create(context.Background(), CreateUserInput{Name: "Live", Email: "live@example.com", Age: 21, Gender: models.GenderMale, SkinType: models.SkinTypeOily})
	require.NoError(t, err)
	require.NoError(t, svc.SetPendingOTP(context.Background(), live.ID, "hash-b", now.Add(5*time.Minute)))

	cleared, err := svc.CleanupExpiredOTPs(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 1, cleared)

	reloaded, err := svc.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	require.False(t, reloaded.HasPendingOTP())

	reloaded, err = svc.GetByID(context.Background(), live.ID)
	require.NoError(t, err)
	require.True(t, reloaded.HasPendingOTP())
}
