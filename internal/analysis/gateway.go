package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/billalcoder/skinCare/internal/ai"
	"github.com/billalcoder/skinCare/internal/models"
	"github.com/billalcoder/skinCare/internal/ocr"
	"github.com/billalcoder/skinCare/internal/services"
	apperrors "github.com/billalcoder/skinCare/pkg/errors"
	"github.com/billalcoder/skinCare/pkg/logger"
	"github.com/billalcoder/skinCare/pkg/metrics"
)

// minReadableText is the shortest label text worth analyzing.
const minReadableText = 5

// Request is one analysis submission: either a label image or raw label text.
type Request struct {
	UserID        string
	Image         []byte
	ImageName     string
	ExtractedText string
}

// Advice is the structured payload extracted from the advisor's response.
type Advice struct {
	Analysis    string   `json:"analysis"`
	Ingredients []string `json:"ingredients"`
	ProductType string   `json:"productType"`
	Brand       string   `json:"brand"`
	Rating      float64  `json:"rating"`
	Suitability string   `json:"suitability"`
}

// Result is what the analyze endpoint returns.
type Result struct {
	ExtractedText string `json:"extracted_text"`
	Advice        Advice `json:"analysis"`
	HistoryID     string `json:"history_id"`
}

// Gateway is the single entry point for product analysis: OCR (when an image
// is supplied), prompt construction, the advisor call, response parsing, and
// persistence into history.
type Gateway struct {
	users     *services.UserService
	history   *services.HistoryService
	extractor ocr.Extractor
	advisor   ai.Advisor
	now       func() time.Time
	log       *zap.Logger
}

// GatewayConfig carries optional collaborators for the gateway.
type GatewayConfig struct {
	Extractor ocr.Extractor
	Clock     func() time.Time
}

// NewGateway constructs an analysis gateway. The advisor is mandatory; the
// extractor may be nil when image submissions are not supported.
func NewGateway(users *services.UserService, history *services.HistoryService, advisor ai.Advisor, cfg GatewayConfig) (*Gateway, error) {
	if users == nil {
		return nil, errors.New("analysis: user service is required")
	}
	if history == nil {
		return nil, errors.New("analysis: history service is required")
	}
	if advisor == nil {
		return nil, errors.New("analysis: advisor is required")
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &Gateway{
		users:     users,
		history:   history,
		extractor: cfg.Extractor,
		advisor:   advisor,
		now:       now,
		log:       logger.WithModule("analysis"),
	}, nil
}

// Analyze runs the full pipeline and saves the outcome into the user's
// history. Collaborator failures surface as upstream errors with no partial
// history writes.
func (g *Gateway) Analyze(ctx context.Context, req Request) (*Result, error) {
	started := g.now()

	text, err := g.resolveText(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(text) < minReadableText {
		return nil, apperrors.NewBadRequest("could not detect readable text, please try a clearer image")
	}

	user, err := g.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	raw, err := g.advisor.Advise(ctx, buildPrompt(user, text))
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("ai").Inc()
		g.log.Error("advisor call failed", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, apperrors.ErrUpstreamFailure.WithInternal(err)
	}

	advice := parseAdvice(raw, g.log)

	stored, err := json.Marshal(advice)
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	entry := &models.Analysis{
		UserID:          user.ID,
		ExtractedText:   text,
		ProductAnalysis: advice.Analysis,
		AIResponse:      datatypes.JSON(stored),
		Ingredients:     datatypes.NewJSONSlice(advice.Ingredients),
		ProductType:     advice.ProductType,
		Brand:           advice.Brand,
		Rating:          advice.Rating,
		Suitability:     advice.Suitability,
	}
	if err := g.history.Save(ctx, entry); err != nil {
		return nil, err
	}

	metrics.AnalysisDuration.Observe(g.now().Sub(started).Seconds())

	return &Result{
		ExtractedText: text,
		Advice:        advice,
		HistoryID:     entry.ID,
	}, nil
}

// resolveText prefers the image flow and falls back to caller-supplied text.
func (g *Gateway) resolveText(ctx context.Context, req Request) (string, error) {
	if len(req.Image) > 0 {
		if g.extractor == nil {
			return "", apperrors.NewBadRequest("image analysis is not available, submit extractedText instead")
		}
		text, err := g.extractor.ExtractText(ctx, req.Image, req.ImageName)
		if err != nil {
			metrics.UpstreamFailures.WithLabelValues("ocr").Inc()
			g.log.Error("ocr extraction failed", zap.String("user_id", req.UserID), zap.Error(err))
			return "", apperrors.ErrUpstreamFailure.WithInternal(err)
		}
		return strings.TrimSpace(text), nil
	}
	return strings.TrimSpace(req.ExtractedText), nil
}

// parseAdvice extracts the JSON object from the advisor's reply. Models often
// wrap JSON in markdown fences; those are stripped first. A reply that still
// does not parse is preserved verbatim as the analysis text with a moderate
// suitability, matching the contract that analysis never fails on formatting.
func parseAdvice(raw string, log *zap.Logger) Advice {
	cleaned := stripFences(raw)

	var advice Advice
	if err := json.Unmarshal([]byte(cleaned), &advice); err != nil || strings.TrimSpace(advice.Analysis) == "" {
		if err != nil {
			log.Warn("advisor reply was not valid json, storing fallback", zap.Error(err))
		}
		return Advice{
			Analysis:    strings.TrimSpace(raw),
			Ingredients: []string{},
			Rating:      0,
			Suitability: models.SuitabilityModerate,
		}
	}

	if advice.Ingredients == nil {
		advice.Ingredients = []string{}
	}
	if advice.ProductType == "" {
		advice.ProductType = "Unknown"
	}
	if advice.Brand == "" {
		advice.Brand = "Unknown"
	}
	if !validSuitability(advice.Suitability) {
		advice.Suitability = models.SuitabilityModerate
	}
	if advice.Rating < 0 {
		advice.Rating = 0
	}
	if advice.Rating > 5 {
		advice.Rating = 5
	}

	return advice
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

func validSuitability(value string) bool {
	for _, v := range models.SuitabilityValues {
		if v == value {
			return true
		}
	}
	return false
}
