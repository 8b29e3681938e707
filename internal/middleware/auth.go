package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/services"
)

func abortUnauthorized(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	} else {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    apperrors.ErrUnauthorized.Code,
				"message": apperrors.ErrUnauthorized.Message,
			},
		})
	}
	c.Abort()
}

// AuthMiddleware validates the bearer session token against stored sessions.
func AuthMiddleware(auth services.AuthServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, apperrors.ErrUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, apperrors.ErrUnauthorized)
			return
		}

		if err := auth.ValidateToken(parts[1]); err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Next()
	}
}
