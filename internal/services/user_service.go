package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/billalcoder/skinCare/internal/models"
	apperrors "github.com/billalcoder/skinCare/pkg/errors"
)

// CreateUserInput describes the fields accepted when registering a user.
type CreateUserInput struct {
	Name          string
	Email         string
	Age           int
	Gender        string
	SkinType      string
	Qualification string
	Allergies     []string
	Concerns      []string
}

// UpdateProfileInput enumerates mutable profile attributes. Nil pointers leave
// the stored value untouched; verification and OTP state are not reachable
// from here.
type UpdateProfileInput struct {
	Age           *int
	Gender        *string
	SkinType      *string
	Qualification *string
	Allergies     []string
	Concerns      []string
}

// UserService manages identity rows: creation, verification state, pending
// OTP bookkeeping, and profile updates.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Create provisions a new unverified user. The email's unique index is the
// arbiter for concurrent duplicate registrations.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	user := &models.User{
		Name:          strings.TrimSpace(input.Name),
		Email:         email,
		Age:           input.Age,
		Gender:        input.Gender,
		SkinType:      input.SkinType,
		Qualification: strings.TrimSpace(input.Qualification),
		Allergies:     normaliseList(input.Allergies),
		Concerns:      normaliseList(input.Concerns),
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	return user, nil
}

// GetByID loads a user or returns ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}
	return &user, nil
}

// GetByEmail loads a user by the lowercased email natural key.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user by email: %w", err)
	}
	return &user, nil
}

// MarkVerified flips the verification flag. Applying it twice is harmless;
// only the first application has a visible effect.
func (s *UserService) MarkVerified(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_verified", true)
	if result.Error != nil {
		return fmt.Errorf("user service: mark verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetPendingOTP stores the hashed code and its expiry, replacing any code
// still outstanding for the user.
func (s *UserService) SetPendingOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"otp_hash":       otpHash,
			"otp_expires_at": expiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("user service: set pending otp: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ClearPendingOTP removes any outstanding code for the user.
func (s *UserService) ClearPendingOTP(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"otp_hash":       "",
			"otp_expires_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("user service: clear pending otp: %w", err)
	}
	return nil
}

// UpdateProfile applies the supplied changes and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.User, error) {
	updates := map[string]any{}

	if input.Age != nil {
		updates["age"] = *input.Age
	}
	if input.Gender != nil {
		updates["gender"] = *input.Gender
	}
	if input.SkinType != nil {
		updates["skin_type"] = *input.SkinType
	}
	if input.Qualification != nil {
		updates["qualification"] = strings.TrimSpace(*input.Qualification)
	}
	if input.Allergies != nil {
		updates["allergies"] = models.User{Allergies: normaliseList(input.Allergies)}.Allergies
	}
	if input.Concerns != nil {
		updates["concerns"] = models.User{Concerns: normaliseList(input.Concerns)}.Concerns
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("user service: update profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.ErrNotFound
		}
	}

	return s.GetByID(ctx, id)
}

// CleanupExpiredOTPs clears codes whose window has passed so stale hashes do
// not linger on unverified accounts.
func (s *UserService) CleanupExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("otp_expires_at IS NOT NULL AND otp_expires_at < ?", now).
		Updates(map[string]any{
			"otp_hash":       "",
			"otp_expires_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("user service: cleanup expired otps: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func normaliseList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
