package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/services"
)

// AuthHandler handles password setup, login, and session management.
type AuthHandler struct {
	authService services.AuthServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthServicer) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Status reports whether initial password setup has been done. Public.
func (h *AuthHandler) Status(c *gin.Context) {
	set, err := h.authService.PasswordSet()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"password_set": set})
}

// SetupRequest represents the request payload for first-run password setup.
type SetupRequest struct {
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// Setup stores the password on first run.
func (h *AuthHandler) Setup(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.authService.SetupPassword(req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Password set"})
}

// LoginRequest represents the request payload for logging in.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login verifies the password and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	token, expiresAt, err := h.authService.Login(req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}

func bearerToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(token); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ChangePasswordRequest represents the request payload for changing the password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// ChangePassword swaps the password and revokes all sessions.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.authService.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed. Please login again"})
}

// ResetDataRequest represents the request payload for a factory reset.
type ResetDataRequest struct {
	Password string `json:"password" binding:"required"`
}

// ResetData wipes all financial data after re-verifying the password.
func (h *AuthHandler) ResetData(c *gin.Context) {
	var req ResetDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.authService.ResetAllData(req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All data reset"})
}
