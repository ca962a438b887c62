package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/billalcoder/skinCare/internal/models"
	apperrors "github.com/billalcoder/skinCare/pkg/errors"
	"github.com/billalcoder/skinCare/pkg/response"
)

const (
	defaultHistoryPerPage = 10
	maxHistoryPerPage     = 100
)

// HistoryFilter narrows a history listing. Zero values mean "no filter".
type HistoryFilter struct {
	Page        int
	PerPage     int
	Suitability string
	ProductType string
	Search      string
}

// SuitabilityCount is one bucket of the analytics breakdown.
type SuitabilityCount struct {
	Suitability string `json:"suitability"`
	Count       int64  `json:"count"`
}

// ProductTypeCount is one bucket of the product-type breakdown.
type ProductTypeCount struct {
	ProductType string `json:"product_type"`
	Count       int64  `json:"count"`
}

// HistoryAnalytics aggregates a user's saved analyses.
type HistoryAnalytics struct {
	TotalAnalyses      int64              `json:"total_analyses"`
	AverageRating      float64            `json:"average_rating"`
	BySuitability      []SuitabilityCount `json:"by_suitability"`
	TopProductTypes    []ProductTypeCount `json:"top_product_types"`
	DistinctBrandCount int64              `json:"distinct_brand_count"`
	Recent             []models.Analysis  `json:"recent"`
}

// HistoryService exposes a user's saved analyses: listing with filters and
// search, detail lookup, deletion, and aggregate analytics. Every query is
// scoped to the owning user.
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService constructs a HistoryService instance.
func NewHistoryService(db *gorm.DB) (*HistoryService, error) {
	if db == nil {
		return nil, errors.New("history service: db is required")
	}
	return &HistoryService{db: db}, nil
}

// Save persists a completed analysis into the user's history.
func (s *HistoryService) Save(ctx context.Context, analysis *models.Analysis) error {
	if analysis.UserID == "" {
		return errors.New("history service: analysis user id is required")
	}
	if err := s.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("history service: save analysis: %w", err)
	}
	return nil
}

// List returns one page of the user's history, newest first. The raw AI
// response column is omitted; the detail endpoint serves it.
func (s *HistoryService) List(ctx context.Context, userID string, filter HistoryFilter) ([]models.Analysis, *response.Meta, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = defaultHistoryPerPage
	}
	if perPage > maxHistoryPerPage {
		perPage = maxHistoryPerPage
	}

	var total int64
	if err := s.scoped(ctx, userID, filter).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("history service: count analyses: %w", err)
	}

	var items []models.Analysis
	err := s.scoped(ctx, userID, filter).
		Omit("ai_response").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	if err != nil {
		return nil, nil, fmt.Errorf("history service: list analyses: %w", err)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}

	return items, meta, nil
}

// Get loads one analysis owned by the user, including the raw AI response.
func (s *HistoryService) Get(ctx context.Context, userID, analysisID string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := s.db.WithContext(ctx).
		Take(&analysis, "id = ? AND user_id = ?", analysisID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history service: get analysis: %w", err)
	}
	return &analysis, nil
}

// Delete removes one analysis owned by the user.
func (s *HistoryService) Delete(ctx context.Context, userID, analysisID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", analysisID, userID).
		Delete(&models.Analysis{})
	if result.Error != nil {
		return fmt.Errorf("history service: delete analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Clear removes the user's entire history and reports how many rows went.
func (s *HistoryService) Clear(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Analysis{})
	if result.Error != nil {
		return 0, fmt.Errorf("history service: clear history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Analytics aggregates the user's history into counts and rating summaries.
func (s *HistoryService) Analytics(ctx context.Context, userID string) (*HistoryAnalytics, error) {
	base := s.db.WithContext(ctx).Model(&models.Analysis{}).Where("user_id = ?", userID)

	analytics := &HistoryAnalytics{}

	if err := base.Session(&gorm.Session{}).Count(&analytics.TotalAnalyses).Error; err != nil {
		return nil, fmt.Errorf("history service: count analyses: %w", err)
	}

	if analytics.TotalAnalyses > 0 {
		err := base.Session(&gorm.Session{}).
			Select("AVG(rating)").
			Scan(&analytics.AverageRating).Error
		if err != nil {
			return nil, fmt.Errorf("history service: average rating: %w", err)
		}
	}

	err := base.Session(&gorm.Session{}).
		Select("suitability, COUNT(*) AS count").
		Group("suitability").
		Order("count DESC").
		Scan(&analytics.BySuitability).Error
	if err != nil {
		return nil, fmt.Errorf("history service: suitability breakdown: %w", err)
	}

	err = base.Session(&gorm.Session{}).
		Select("product_type, COUNT(*) AS count").
		Where("product_type <> ''").
		Group("product_type").
		Order("count DESC").
		Limit(5).
		Scan(&analytics.TopProductTypes).Error
	if err != nil {
		return nil, fmt.Errorf("history service: product type breakdown: %w", err)
	}

	err = base.Session(&gorm.Session{}).
		Where("brand <> ''").
		Distinct("brand").
		Count(&analytics.DistinctBrandCount).Error
	if err != nil {
		return nil, fmt.Errorf("history service: distinct brands: %w", err)
	}

	err = base.Session(&gorm.Session{}).
		Omit("ai_response").
		Order("created_at DESC").
		Limit(5).
		Find(&analytics.Recent).Error
	if err != nil {
		return nil, fmt.Errorf("history service: recent analyses: %w", err)
	}

	return analytics, nil
}

// scoped builds the filtered base query for List.
func (s *HistoryService) scoped(ctx context.Context, userID string, filter HistoryFilter) *gorm.DB {
	query := s.db.WithContext(ctx).
		Model(&models.Analysis{}).
		Where("user_id = ?", userID)

	if filter.Suitability != "" {
		query = query.Where("suitability = ?", filter.Suitability)
	}
	if filter.ProductType != "" {
		query = query.Where("product_type = ?", filter.ProductType)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(extracted_text) LIKE ? OR LOWER(product_analysis) LIKE ? OR LOWER(product_type) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(CAST(ingredients AS TEXT)) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	return query
}
