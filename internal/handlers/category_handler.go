package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
	"paisa/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Type     string  `json:"type" binding:"required,category_type"`
	Icon     string  `json:"icon" binding:"max=50"`
	Color    string  `json:"color" binding:"omitempty,hex_color"`
	ParentID *string `json:"parent_id"`
}

// CreateCategory creates a new category or subcategory.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(
		req.Name,
		models.CategoryType(req.Type),
		req.Icon,
		req.Color,
		req.ParentID,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// ListCategories lists categories. ?tree=true nests children under parents.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var categoryType *models.CategoryType
	if v := c.Query("type"); v != "" {
		t := models.CategoryType(v)
		categoryType = &t
	}

	var (
		categories []models.Category
		err        error
	)
	if c.Query("tree") == "true" {
		categories, err = h.categoryService.GetCategoryTree(categoryType)
	} else {
		categories, err = h.categoryService.GetCategories(categoryType)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory retrieves a single category.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.GetCategoryByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategoryRequest represents the request payload for updating a category.
type UpdateCategoryRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Icon     *string `json:"icon" binding:"omitempty,max=50"`
	Color    *string `json:"color" binding:"omitempty,hex_color"`
	ParentID *string `json:"parent_id"`
}

// UpdateCategory updates a category's editable fields.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Param("id"), req.Name, req.Icon, req.Color, req.ParentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory deletes an unused category.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
