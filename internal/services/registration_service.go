package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/billalcoder/skinCare/internal/auth"
	"github.com/billalcoder/skinCare/internal/models"
	"github.com/billalcoder/skinCare/pkg/crypto"
	apperrors "github.com/billalcoder/skinCare/pkg/errors"
	"github.com/billalcoder/skinCare/pkg/logger"
	"github.com/billalcoder/skinCare/pkg/mail"
	"github.com/billalcoder/skinCare/pkg/metrics"
)

// RegistrationService drives the register/verify flow: creating unverified
// accounts, issuing emailed passcodes, and promoting accounts to verified.
type RegistrationService struct {
	users  *UserService
	otp    *auth.OTPIssuer
	mailer mail.Mailer
	now    func() time.Time
	log    *zap.Logger
}

// RegistrationConfig carries optional collaborators for the service.
type RegistrationConfig struct {
	Mailer mail.Mailer
	Clock  func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(users *UserService, otp *auth.OTPIssuer, cfg RegistrationConfig) (*RegistrationService, error) {
	if users == nil {
		return nil, errors.New("registration service: user service is required")
	}
	if otp == nil {
		return nil, errors.New("registration service: otp issuer is required")
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &RegistrationService{
		users:  users,
		otp:    otp,
		mailer: cfg.Mailer,
		now:    now,
		log:    logger.WithModule("registration"),
	}, nil
}

// Register creates an unverified account and emails a passcode. Registering an
// email that already holds an unverified account replaces the outstanding code
// rather than failing, so a user who lost the first email can simply try
// again. A verified email is rejected outright.
func (s *RegistrationService) Register(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return nil, apperrors.ErrDuplicateIdentity
	case err == nil:
		if err := s.issueOTP(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	user, err := s.users.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyOTP checks the submitted code against the stored hash and, on match,
// marks the account verified and clears the pending code.
func (s *RegistrationService) VerifyOTP(ctx context.Context, email, code string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !user.HasPendingOTP() {
		return nil, apperrors.ErrInvalidOTP
	}
	if s.now().After(*user.OTPExpiresAt) {
		return nil, apperrors.ErrOTPExpired
	}
	if !crypto.VerifyOTP(user.OTPHash, code) {
		return nil, apperrors.ErrInvalidOTP
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.users.ClearPendingOTP(ctx, user.ID); err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.OTPHash = ""
	user.OTPExpiresAt = nil

	return user, nil
}

// issueOTP generates, stores, and emails a fresh passcode. Delivery failures
// do not fail the registration: the stored code stays valid and the user can
// re-register to trigger another send.
func (s *RegistrationService) issueOTP(ctx context.Context, user *models.User) error {
	code, expiresAt, err := s.otp.Generate()
	if err != nil {
		return fmt.Errorf("registration service: issue otp: %w", err)
	}

	hash, err := crypto.HashOTP(code)
	if err != nil {
		return fmt.Errorf("registration service: hash otp: %w", err)
	}

	if err := s.users.SetPendingOTP(ctx, user.ID, hash, expiresAt); err != nil {
		return err
	}

	metrics.OTPIssued.Inc()

	if s.mailer == nil {
		s.log.Warn("no mailer configured, skipping otp delivery", zap.String("user_id", user.ID))
		return nil
	}

	msg := mail.VerificationMessage(user.Name, user.Email, code, expiresAt.Sub(s.now()).Round(time.Minute))
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Warn("failed to deliver otp email",
			zap.String("user_id", user.ID),
			zap.Error(err))
	}

	return nil
}
