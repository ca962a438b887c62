package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/billalcoder/skinCare/internal/database/testutil"
	"github.com/billalcoder/skinCare/internal/models"
	apperrors "github.com/billalcoder/skinCare/pkg/errors"
)

func newHistoryFixture(t *testing.T) (*HistoryService, *gorm.DB, *models.User) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewHistoryService(db)
	require.NoError(t, err)

	user := &models.User{Name: "Ayesha", Email: "ayesha@example.com", Age: 29, Gender: models.GenderFemale, SkinType: models.SkinTypeDry, IsVerified: true}
	require.NoError(t, db.Create(user).Error)

	return svc, db, user
}

func seedAnalysis(t *testing.T, db *gorm.DB, userID string, mutate func(*models.Analysis)) *models.Analysis {
	t.Helper()

	analysis := &models.Analysis{
		UserID:          userID,
		ExtractedText:   "aqua, glycerin, niacinamide",
		ProductAnalysis: "A gentle moisturiser that suits dry skin.",
		AIResponse:      datatypes.JSON([]byte(`{"raw":true}`)),
		Ingredients:     datatypes.NewJSONSlice([]string{"aqua", "glycerin", "niacinamide"}),
		ProductType:     "moisturiser",
		Brand:           "CeraVe",
		Rating:          4.2,
		Suitability:     models.SuitabilityGood,
	}
	if mutate != nil {
		mutate(analysis)
	}
	require.NoError(t, db.Create(analysis).Error)
	return analysis
}

func TestListPagesNewestFirst(t *testing.T) {
	svc, db, user := newHistoryFixture(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		a := seedAnalysis(t, db, user.ID, func(a *models.Analysis) {
			a.Brand = fmt.Sprintf("Brand-%d", i)
		})
		// Spread creation times so ordering is deterministic.
		require.NoError(t, db.Model(a).Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}

	items, meta, err := svc.List(context.Background(), user.ID, HistoryFilter{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Brand-4", items[0].Brand)
	require.Equal(t, "Brand-3", items[1].Brand)

	require.Equal(t, 5, meta.Total)
	require.Equal(t, 3, meta.TotalPages)
	require.True(t, meta.HasNext)
	require.False(t, meta.HasPrev)

	items, meta, err = svc.List(context.Background(), user.ID, HistoryFilter{Page: 3, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.False(t, meta.HasNext)
	require.True(t, meta.HasPrev)
}

func TestListOmitsRawAIResponse(t *testing.T) {
	svc, db, user := newHistoryFixture(t)
	seedAnalysis(t, db, user.ID, nil)

	items, _, err := svc.List(context.Background(), user.ID, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Empty(t, items[0].AIResponse)
}

func TestListIsScopedToOwner(t *testing.T) {
	svc, db, user := newHistoryFixture(t)

	other := &models.User{Name: "Omar", Email: "omar@example.com", Age: 34, Gender: models.GenderMale, SkinType: models.SkinTypeOily, IsVerified: true}
	require.NoError(t, db.Create(other).Error)

	seedAnalysis(t, db, user.ID, nil)
	seedAnalysis(t, db, other.ID, nil)

	items, meta, err := svc.List(context.Background(), user.ID, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, meta.Total)
	require.Equal(t, user.ID, items[0].UserID)
}

func TestListFiltersBySuitabilityAndProductType(t *testing.T) {
	svc, db, user := newHistoryFixture(t)

	seedAnalysis(t, db, user.ID, func(a *models.Analysis) {
		a.Suitability = models.SuitabilityPoor
		a.ProductType = "cleanser"
	})
	seedAnalysis(t, db, user.ID, nil)

	items, _, err := svc.List(context.Background(), user.ID, HistoryFilter{Suitability: models.SuitabilityPoor})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "cleanser", items[0].ProductType)

	items, _, err = svc.List(context.Background(), user.ID, HistoryFilter{ProductType: "moisturiser"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.SuitabilityGood, items[0].Suitability)
}

func TestListSearchMatchesTextBrandAndIngredients(t *testing.T) {
	svc, db, user := newHistoryFixture(t)

	seedAnalysis(t, db, user.ID, nil)
	seedAnalysis(t, db, user.ID, func(a *models.Analysis) {
		a.ExtractedText = "salicylic acid cleanser"
		a.ProductAnalysis = "Strong exfoliant."
		a.Ingredients = datatypes.NewJSONSlice([]string{"salicylic acid"})
		a.Brand = "The Ordinary"
		a.ProductType = "cleanser"
	})

	items, _, err := svc.List(context.Background(), user.ID, HistoryFilter{Search: "CERAVE"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "CeraVe", items[0].Brand)

	items, _, err = svc.List(context.Background(), user.ID, HistoryFilter{Search: "salicylic"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "The Ordinary", items[0].Brand)

	items, _, err = svc.List(context.Background(), user.ID, HistoryFilter{Search: "retinol"})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestGetReturnsRawAIResponse(t *testing.T) {
	svc, db, user := newHistoryFixture(t)
	saved := seedAnalysis(t, db, user.ID, nil)

	found, err := svc.Get(context.Background(), user.ID, saved.ID)
	require.NoError(t, err)
	require.JSONEq(t, `{"raw":true}`, string(found.AIResponse))
}

func TestGetDoesNotLeakAcrossUsers(t *testing.T) {
	svc, db, user := newHistoryFixture(t)

	other := &models.User{Name: "Omar", Email: "omar@example.com", Age: 34, Gender: models.GenderMale, SkinType: models.SkinTypeOily, IsVerified: true}
	require.NoError(t, db.Create(other).Error)
	saved := seedAnalysis(t, db, other.ID, nil)

	_, err := svc.Get(context.Background(), user.ID, saved.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteRemovesOwnedAnalysisOnly(t *testing.T) {
	svc, db, user := newHistoryFixture(t)
	saved := seedAnalysis(t, db, user.ID, nil)

	require.NoError(t, svc.Delete(context.Background(), user.ID, saved.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), user.ID, saved.ID), apperrors.ErrNotFound)
}

func TestClearRemovesAllHistoryForUser(t *testing.T) {
	svc, db, user := newHistoryFixture(t)

	other := &models.User{Name: "Omar", Email: "omar@example.com", Age: 34, Gender: models.GenderMale, SkinType: models.SkinTypeOily, IsVerified: true}
	require.NoError(t, db.Create(other).Error)

	seedAnalysis(t, db, user.ID, nil)
	seedAnalysis(t, db, user.ID, nil)
	seedAnalysis(t, db, other.ID, nil)

	removed, err := svc.Clear(context.Background(), user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	items, _, err := svc.List(context.Background(), other.ID, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAnalyticsAggregatesHistory(t *testing.T) {
	svc, db, user := newHistoryFixture(t)

	seedAnalysis(t, db, user.ID, func(a *models.Analysis) { a.Rating = 5; a.Suitability = models.SuitabilityExcellent })
	seedAnalysis(t, db, user.ID, func(a *models.Analysis) { a.Rating = 3; a.Suitability = models.SuitabilityGood })
	seedAnalysis(t, db, user.ID, func(a *models.Analysis) {
		a.Rating = 1
		a.Suitability = models.SuitabilityGood
		a.ProductType = "cleanser"
		a.Brand = "The Ordinary"
	})

	analytics, err := svc.Analytics(context.Background(), user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, analytics.TotalAnalyses)
	require.InDelta(t, 3.0, analytics.AverageRating, 0.001)
	require.EqualValues(t, 2, analytics.DistinctBrandCount)

	require.Len(t, analytics.BySuitability, 2)
	require.Equal(t, models.SuitabilityGood, analytics.BySuitability[0].Suitability)
	require.EqualValues(t, 2, analytics.BySuitability[0].Count)

	require.Len(t, analytics.TopProductTypes, 2)
	require.Equal(t, "moisturiser", analytics.TopProductTypes[0].ProductType)
	require.EqualValues(t, 2, analytics.TopProductTypes[0].Count)

	require.Len(t, analytics.Recent, 3)
	require.Empty(t, analytics.Recent[0].AIResponse)
}

func TestAnalyticsEmptyHistory(t *testing.T) {
	svc, _, user := newHistoryFixture(t)

	analytics, err := svc.Analytics(context.Background(), user.ID)
	require.NoError(t, err)
	require.Zero(t, analytics.TotalAnalyses)
	require.Zero(t, analytics.AverageRating)
	require.Empty(t, analytics.BySuitability)
	require.Empty(t, analytics.TopProductTypes)
	require.Empty(t, analytics.Recent)
}
