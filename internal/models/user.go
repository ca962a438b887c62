package models

import (
	"time"

	"gorm.io/datatypes"
)

// Gender values accepted at registration.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Skin types accepted at registration and profile updates.
const (
	SkinTypeOily        = "oily"
	SkinTypeDry         = "dry"
	SkinTypeCombination = "combination"
	SkinTypeNormal      = "normal"
	SkinTypeSensitive   = "sensitive"
)

// User describes a registered identity together with the skincare profile the
// analysis prompt is personalised with.
type User struct {
	BaseModel

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	Age           int                          `gorm:"not null" json:"age"`
	Gender        string                       `gorm:"not null" json:"gender"`
	SkinType      string                       `gorm:"not null" json:"skin_type"`
	Qualification string                       `json:"qualification"`
	Allergies     datatypes.JSONSlice[string]  `json:"allergies"`
	Concerns      datatypes.JSONSlice[string]  `json:"concerns"`

	IsVerified bool `gorm:"default:false" json:"is_verified"`

	// Pending OTP state. The code is stored hashed and cleared on successful
	// verification; at most one code is outstanding per user.
	OTPHash      string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`
}

// HasPendingOTP reports whether a verification code is outstanding.
func (u *User) HasPendingOTP() bool {
	return u.OTPHash != "" && u.OTPExpiresAt != nil
}

// PublicView returns the subset of user fields exposed after login.
type PublicView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	SkinType string   `json:"skin_type"`
	Concerns []string `json:"concerns"`
}

// Public projects the user into its login response view.
func (u *User) Public() PublicView {
	return PublicView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		SkinType: u.SkinType,
		Concerns: u.Concerns,
	}
}
