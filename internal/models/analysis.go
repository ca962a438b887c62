package models

import (
	"gorm.io/datatypes"
)

// Suitability grades assigned by the AI advisor.
const (
	SuitabilityExcellent  = "excellent"
	SuitabilityGood       = "good"
	SuitabilityModerate   = "moderate"
	SuitabilityPoor       = "poor"
	SuitabilityUnsuitable = "unsuitable"
)

// SuitabilityValues lists the accepted grades in rank order.
var SuitabilityValues = []string{
	SuitabilityExcellent,
	SuitabilityGood,
	SuitabilityModerate,
	SuitabilityPoor,
	SuitabilityUnsuitable,
}

// Analysis is one saved product analysis in a user's history. The raw AI
// response is kept as JSON for the detail view; the extracted metadata columns
// drive list filtering, search, and analytics.
type Analysis struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index:idx_analyses_user_created,priority:1" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	ExtractedText   string         `gorm:"not null" json:"extracted_text"`
	ProductAnalysis string         `gorm:"not null" json:"product_analysis"`
	AIResponse      datatypes.JSON `json:"ai_response,omitempty"`

	Ingredients datatypes.JSONSlice[string] `json:"ingredients"`
	ProductType string                      `json:"product_type"`
	Brand       string                      `json:"brand"`
	Rating      float64                     `json:"rating"`
	Suitability string                      `gorm:"not null" json:"suitability"`
}
