package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/billalcoder/skinCare/internal/database/testutil"
	"github.com/billalcoder/skinCare/internal/models"
)

func newSessionFixture(t *testing.T, clock func() time.Time) (*SessionService, *models.User) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtSvc, err := NewJWTService(JWTConfig{Secret: "test-secret", Clock: clock})
	require.NoError(t, err)

	svc, err := NewSessionService(db, jwtSvc, SessionConfig{Clock: clock})
	require.NoError(t, err)

	user := &models.User{Name: "Ayesha", Email: "ayesha@example.com", Age: 29, Gender: "female", SkinType: "dry", IsVerified: true}
	require.NoError(t, db.Create(user).Error)

	return svc, user
}

func TestCreateSessionExpiresSevenDaysOut(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, user := newSessionFixture(t, func() time.Time { return now })

	token, session, err := svc.Create(context.Background(), user.ID, SessionMetadata{
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, now.Add(7*24*time.Hour), session.ExpiresAt.UTC())
	require.Equal(t, "10.0.0.1", session.IPAddress)
}

func TestFindValidByTokenReturnsLiveSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, user := newSessionFixture(t, func() time.Time { return now })

	token, _, err := svc.Create(context.Background(), user.ID, SessionMetadata{})
	require.NoError(t, err)

	found, err := svc.FindValidByToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, user.ID, found.UserID)
}

func TestFindValidByTokenTreatsExpiredAsMissing(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, user := newSessionFixture(t, func() time.Time { return current })

	token, _, err := svc.Create(context.Background(), user.ID, SessionMetadata{})
	require.NoError(t, err)

	current = current.Add(8 * 24 * time.Hour)

	_, err = svc.FindValidByToken(context.Background(), token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteByTokenIsIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, user := newSessionFixture(t, func() time.Time { return now })

	token, _, err := svc.Create(context.Background(), user.ID, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByToken(context.Background(), token))
	require.NoError(t, svc.DeleteByToken(context.Background(), token))
	require.NoError(t, svc.DeleteByToken(context.Background(), "never-issued"))

	_, err = svc.FindValidByToken(context.Background(), token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCleanupExpiredRemovesOnlyDeadSessions(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, user := newSessionFixture(t, func() time.Time { return current })

	staleToken, _, err := svc.Create(context.Background(), user.ID, SessionMetadata{})
	require.NoError(t, err)

	// Second session issued four days later survives the sweep.
	current = current.Add(4 * 24 * time.Hour)
	liveToken, _, err := svc.Create(context.Background(), user.ID, SessionMetadata{})
	require.NoError(t, err)

	current = current.Add(4 * 24 * time.Hour)

	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = svc.FindValidByToken(context.Background(), staleToken)
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.FindValidByToken(context.Background(), liveToken)
	require.NoError(t, err)
}
