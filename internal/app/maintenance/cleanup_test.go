package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/billalcoder/skinCare/internal/auth"
	testutil "github.com/billalcoder/skinCare/internal/database/testutil"
	"github.com/billalcoder/skinCare/internal/models"
	"github.com/billalcoder/skinCare/internal/services"
)

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "cleanup-secret", Clock: clock})
	require.NoError(t, err)
	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{Clock: clock})
	require.NoError(t, err)
	userSvc, err := services.NewUserService(db)
	require.NoError(t, err)

	user := &models.User{Name: "Ayesha", Email: "ayesha@example.com", Age: 29, Gender: models.GenderFemale, SkinType: models.SkinTypeDry, IsVerified: true}
	require.NoError(t, db.Create(user).Error)

	_, expiredSession, err := sessionSvc.Create(context.Background(), user.ID, iauth.SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", expiredSession.ID).
		Update("expires_at", now.Add(-2*time.Hour)).Error)

	_, activeSession, err := sessionSvc.Create(context.Background(), user.ID, iauth.SessionMetadata{})
	require.NoError(t, err)

	// A stale verification code on a second, never-verified account.
	pending := &models.User{Name: "Omar", Email: "omar@example.com", Age: 34, Gender: models.GenderMale, SkinType: models.SkinTypeOily}
	require.NoError(t, db.Create(pending).Error)
	require.NoError(t, userSvc.SetPendingOTP(context.Background(), pending.ID, "stale-hash", now.Add(-time.Hour)))

	c := NewCleaner(sessionSvc, userSvc,
		WithNow(clock),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(context.Background()))

	var gone models.Session
	err = db.First(&gone, "id = ?", expiredSession.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var remaining models.Session
	require.NoError(t, db.First(&remaining, "id = ?", activeSession.ID).Error)

	reloaded, err := userSvc.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	require.False(t, reloaded.HasPendingOTP())
}

func TestCleanerStartRegistersJobs(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "cleanup-secret"})
	require.NoError(t, err)
	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{})
	require.NoError(t, err)
	userSvc, err := services.NewUserService(db)
	require.NoError(t, err)

	sched := cron.New(cron.WithLogger(cron.DiscardLogger))
	c := NewCleaner(sessionSvc, userSvc, WithCron(sched))

	require.NoError(t, c.Start())
	require.Len(t, sched.Entries(), 2)

	<-c.Stop().Done()
}

func TestCleanerRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "cleanup-secret"})
	require.NoError(t, err)
	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{})
	require.NoError(t, err)

	c := NewCleaner(sessionSvc, nil, WithSessionSchedule("not-a-spec"))
	require.Error(t, c.Start())
}
