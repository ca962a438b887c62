package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/billalcoder/skinCare/internal/models"
	"github.com/billalcoder/skinCare/pkg/metrics"
)

var (
	// ErrSessionNotFound indicates that no live session matches the provided token.
	ErrSessionNotFound = errors.New("session: not found")
)

var errSessionCacheMiss = errors.New("session cache miss")

// SessionCache represents a cache backend for session objects keyed by bearer token.
type SessionCache interface {
	Get(ctx context.Context, token string) (*models.Session, error)
	Set(ctx context.Context, session *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// SessionMetadata captures contextual information about the client. It is
// stored for audit purposes only and never consulted for authorization.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	Clock func() time.Time
	Cache SessionCache
}

// SessionService manages creation, validation, and removal of user sessions.
// A session's stored expiry mirrors the token's signature expiry; both must
// hold for a request to be admitted.
type SessionService struct {
	db    *gorm.DB
	jwt   *JWTService
	now   func() time.Time
	cache SessionCache
}

// NewSessionService constructs a session manager backed by the provided database and JWT service.
func NewSessionService(db *gorm.DB, jwtService *JWTService, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("session service: jwt service is required")
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:    db,
		jwt:   jwtService,
		now:   clock,
		cache: cfg.Cache,
	}, nil
}

// Create mints a bearer token for the user and persists the matching session row.
func (s *SessionService) Create(ctx context.Context, userID string, meta SessionMetadata) (string, *models.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return "", nil, errors.New("session service: user id is required")
	}

	token, err := s.jwt.Issue(userID)
	if err != nil {
		return "", nil, fmt.Errorf("session service: issue token: %w", err)
	}

	now := s.now()

	session := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.jwt.TokenTTL()),
		IPAddress: strings.TrimSpace(meta.IPAddress),
		UserAgent: strings.TrimSpace(meta.UserAgent),
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return "", nil, fmt.Errorf("session service: create session: %w", err)
	}

	metrics.ActiveSessions.Inc()

	if s.cache != nil {
		// Cache failures are non-fatal; the database remains authoritative.
		_ = s.cache.Set(ctx, session, s.jwt.TokenTTL())
	}

	return token, session, nil
}

// FindValidByToken returns the session for the token only while it is live.
// Expired or deleted sessions behave identically to never-issued tokens.
func (s *SessionService) FindValidByToken(ctx context.Context, token string) (*models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionNotFound
	}

	now := s.now()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, token); err == nil && cached != nil {
			if cached.ExpiresAt.After(now) {
				return cached, nil
			}
			_ = s.cache.Delete(ctx, token)
			return nil, ErrSessionNotFound
		}
	}

	var session models.Session
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	if !session.ExpiresAt.After(now) {
		return nil, ErrSessionNotFound
	}

	if s.cache != nil {
		if ttl := session.ExpiresAt.Sub(now); ttl > 0 {
			_ = s.cache.Set(ctx, &session, ttl)
		}
	}

	return &session, nil
}

// DeleteByToken removes the session for the token. Deleting a token that was
// never issued, or deleting the same token twice, is not an error.
func (s *SessionService) DeleteByToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	result := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("session service: delete session: %w", result.Error)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, token)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	return nil
}

// CleanupExpired removes sessions whose expiry has passed, bounding storage
// growth for sessions that are never probed again.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now()

	var tokens []string
	if s.cache != nil {
		if err := s.db.WithContext(ctx).
			Model(&models.Session{}).
			Where("expires_at < ?", now).
			Pluck("token", &tokens).Error; err != nil {
			return 0, fmt.Errorf("session service: list expired sessions: %w", err)
		}
	}

	result := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: cleanup expired sessions: %w", result.Error)
	}

	for _, token := range tokens {
		_ = s.cache.Delete(ctx, token)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	return result.RowsAffected, nil
}
