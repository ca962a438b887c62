package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/billalcoder/skinCare/internal/auth"
	"github.com/billalcoder/skinCare/internal/services"
	"github.com/billalcoder/skinCare/pkg/errors"
	"github.com/billalcoder/skinCare/pkg/logger"
	"github.com/billalcoder/skinCare/pkg/metrics"
	"github.com/billalcoder/skinCare/pkg/response"
)

// AuthHandler manages the register/verify/login/logout flows.
type AuthHandler struct {
	users        *services.UserService
	registration *services.RegistrationService
	sessions     *iauth.SessionService
}

func NewAuthHandler(users *services.UserService, registration *services.RegistrationService, sessions *iauth.SessionService) *AuthHandler {
	return &AuthHandler{users: users, registration: registration, sessions: sessions}
}

type registerRequest struct {
	Name          string   `json:"name" validate:"required,min=2,max=100"`
	Email         string   `json:"email" validate:"required,email"`
	Age           int      `json:"age" validate:"required,min=10,max=120"`
	Gender        string   `json:"gender" validate:"required,oneof=male female other"`
	SkinType      string   `json:"skin_type" validate:"required,oneof=oily dry combination normal sensitive"`
	Qualification string   `json:"qualification" validate:"max=200"`
	Allergies     []string `json:"allergies" validate:"max=30,dive,max=100"`
	Concerns      []string `json:"concerns" validate:"max=30,dive,max=100"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.registration.Register(c.Request.Context(), services.CreateUserInput{
		Name:          req.Name,
		Email:         req.Email,
		Age:           req.Age,
		Gender:        req.Gender,
		SkinType:      req.SkinType,
		Qualification: req.Qualification,
		Allergies:     req.Allergies,
		Concerns:      req.Concerns,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "registered, check your email for the verification code",
		"user_id": user.ID,
	})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.registration.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "email verified",
		"user_id": user.ID,
	})
}

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	if !user.IsVerified {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrNotVerified)
		return
	}

	token, _, err := h.sessions.Create(c.Request.Context(), user.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user.Public(),
	})
}

// POST /api/auth/logout
//
// Logout is not behind the auth middleware: it returns 200 even when the
// token is absent, malformed, or belongs to a session that is already gone,
// so calling it twice with the same token is safe.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if err := h.sessions.DeleteByToken(c.Request.Context(), token); err != nil {
			logger.WithModule("auth").Warn("session delete on logout failed", zap.Error(err))
		}
	}

	response.Success(c, http.StatusOK, gin.H{"message": "logged out"})
}

// bearerToken extracts the bearer token from the Authorization header, or
// returns empty when the header is missing or not a bearer scheme.
func bearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[7:])
}
