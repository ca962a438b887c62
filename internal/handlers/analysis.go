package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/billalcoder/skinCare/internal/analysis"
	"github.com/billalcoder/skinCare/internal/middleware"
	"github.com/billalcoder/skinCare/pkg/errors"
	"github.com/billalcoder/skinCare/pkg/response"
)

// maxImageBytes caps uploaded label images at 5 MiB, buffered in memory.
const maxImageBytes = 5 << 20

// AnalysisHandler exposes the single product-analysis endpoint.
type AnalysisHandler struct {
	gateway *analysis.Gateway
}

func NewAnalysisHandler(gateway *analysis.Gateway) *AnalysisHandler {
	return &AnalysisHandler{gateway: gateway}
}

// POST /api/skin/analyze
//
// Accepts either a multipart `image` field or an `extractedText` value
// (multipart field, form value, or JSON body).
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	req := analysis.Request{UserID: middleware.UserID(c)}

	contentType := c.ContentType()
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		file, header, err := c.Request.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			if header.Size > maxImageBytes {
				response.Error(c, errors.NewBadRequest("image must be 5 MiB or smaller"))
				return
			}
			image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
			if err != nil {
				response.Error(c, errors.NewBadRequest("could not read uploaded image"))
				return
			}
			if len(image) > maxImageBytes {
				response.Error(c, errors.NewBadRequest("image must be 5 MiB or smaller"))
				return
			}
			req.Image = image
			req.ImageName = header.Filename
		case err == http.ErrMissingFile:
			req.ExtractedText = c.PostForm("extractedText")
		default:
			response.Error(c, errors.NewBadRequest("invalid multipart payload"))
			return
		}
	case contentType == "application/json":
		var body struct {
			ExtractedText string `json:"extractedText"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.Error(c, errors.NewBadRequest("invalid JSON payload"))
			return
		}
		req.ExtractedText = body.ExtractedText
	default:
		req.ExtractedText = c.PostForm("extractedText")
	}

	result, err := h.gateway.Analyze(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
