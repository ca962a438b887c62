package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billalcoder/skinCare/internal/middleware"
	"github.com/billalcoder/skinCare/internal/services"
	"github.com/billalcoder/skinCare/pkg/response"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	users *services.UserService
}

func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// GET /api/user/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

type updateProfileRequest struct {
	Age           *int     `json:"age" validate:"omitempty,min=10,max=120"`
	Gender        *string  `json:"gender" validate:"omitempty,oneof=male female other"`
	SkinType      *string  `json:"skin_type" validate:"omitempty,oneof=oily dry combination normal sensitive"`
	Qualification *string  `json:"qualification" validate:"omitempty,max=200"`
	Allergies     []string `json:"allergies" validate:"omitempty,max=30,dive,max=100"`
	Concerns      []string `json:"concerns" validate:"omitempty,max=30,dive,max=100"`
}

// PUT /api/user/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.UserID(c), services.UpdateProfileInput{
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

	response.Success(c, http.StatusOK, user)
}
