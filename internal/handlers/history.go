package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/billalcoder/skinCare/internal/middleware"
	"github.com/billalcoder/skinCare/internal/services"
	"github.com/billalcoder/skinCare/pkg/errors"
	"github.com/billalcoder/skinCare/pkg/response"
)

// HistoryHandler serves the authenticated user's analysis history.
type HistoryHandler struct {
	history *services.HistoryService
}

func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// GET /api/history
func (h *HistoryHandler) List(c *gin.Context) {
	filter := services.HistoryFilter{
		Page:        parseIntQuery(c, "page", 1),
		PerPage:     parseIntQuery(c, "limit", 0),
		Suitability: strings.TrimSpace(c.Query("suitability")),
		ProductType: strings.TrimSpace(c.Query("product_type")),
	}

	items, meta, err := h.history.List(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, meta)
}

// GET /api/history/search
func (h *HistoryHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Error(c, errors.NewBadRequest("q is required"))
		return
	}

	filter := services.HistoryFilter{
		Page:    parseIntQuery(c, "page", 1),
		PerPage: parseIntQuery(c, "limit", 0),
		Search:  query,
	}

	items, meta, err := h.history.List(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, meta)
}

// GET /api/history/analytics
func (h *HistoryHandler) Analytics(c *gin.Context) {
	analytics, err := h.history.Analytics(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, analytics)
}

// GET /api/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	entry, err := h.history.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// DELETE /api/history/:id
func (h *HistoryHandler) Delete(c *gin.Context) {
	if err := h.history.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "analysis deleted"})
}

// DELETE /api/history
func (h *HistoryHandler) Clear(c *gin.Context) {
	removed, err := h.history.Clear(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "history cleared",
		"removed": removed,
	})
}
