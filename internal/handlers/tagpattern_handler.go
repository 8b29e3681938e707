package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/pagination"
	"paisa/internal/services"
)

// TagPatternHandler handles learned auto-tagging rules.
type TagPatternHandler struct {
	autotagService services.AutotagServicer
}

// NewTagPatternHandler creates a new TagPatternHandler.
func NewTagPatternHandler(autotagService services.AutotagServicer) *TagPatternHandler {
	return &TagPatternHandler{autotagService: autotagService}
}

// ListPatterns lists learned patterns, newest first.
func (h *TagPatternHandler) ListPatterns(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patterns, err := h.autotagService.GetPatterns(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, patterns)
}

// DeletePattern removes a learned pattern.
func (h *TagPatternHandler) DeletePattern(c *gin.Context) {
	if err := h.autotagService.DeletePattern(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pattern deleted"})
}
