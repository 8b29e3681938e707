package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/middleware"
	"paisa/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	passwordSetFn    func() (bool, error)
	setupPasswordFn  func(password string) error
	changePasswordFn func(currentPassword, newPassword string) error
	loginFn          func(password string) (string, time.Time, error)
	logoutFn         func(token string) error
	validateTokenFn  func(token string) error
	resetAllDataFn   func(password string) error
}

func (m *mockAuthService) PasswordSet() (bool, error) {
	if m.passwordSetFn != nil {
		return m.passwordSetFn()
	}
	return true, nil
}

func (m *mockAuthService) SetupPassword(password string) error {
	if m.setupPasswordFn != nil {
		return m.setupPasswordFn(password)
	}
	return nil
}

func (m *mockAuthService) ChangePassword(currentPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(currentPassword, newPassword)
	}
	return nil
}

func (m *mockAuthService) Login(password string) (string, time.Time, error) {
	if m.loginFn != nil {
		return m.loginFn(password)
	}
	return "token", time.Now().Add(time.Hour), nil
}

func (m *mockAuthService) Logout(token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(token)
	}
	return nil
}

func (m *mockAuthService) ValidateToken(token string) error {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(token)
	}
	return nil
}

func (m *mockAuthService) ResetAllData(password string) error {
	if m.resetAllDataFn != nil {
		return m.resetAllDataFn(password)
	}
	return nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func performRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error.Code
}

// --- tests ---

func TestAuthHandler_Setup(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{})
		router := gin.New()
		router.POST("/auth/setup", h.Setup)

		w := performRequest(router, http.MethodPost, "/auth/setup", `{"password":"longenough"}`, nil)
		if w.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("short_password_fails_binding", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{})
		router := gin.New()
		router.POST("/auth/setup", h.Setup)

		w := performRequest(router, http.MethodPost, "/auth/setup", `{"password":"short"}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("already_set", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{
			setupPasswordFn: func(string) error { return apperrors.ErrPasswordAlreadySet },
		})
		router := gin.New()
		router.POST("/auth/setup", h.Setup)

		w := performRequest(router, http.MethodPost, "/auth/setup", `{"password":"longenough"}`, nil)
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "PASSWORD_ALREADY_SET" {
			t.Errorf("expected PASSWORD_ALREADY_SET, got %s", code)
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns_token", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{
			loginFn: func(password string) (string, time.Time, error) {
				if password != "opensesame" {
					return "", time.Time{}, apperrors.ErrInvalidCredentials
				}
				return "abc123", time.Now().Add(time.Hour), nil
			},
		})
		router := gin.New()
		router.POST("/auth/login", h.Login)

		w := performRequest(router, http.MethodPost, "/auth/login", `{"password":"opensesame"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var body struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Token != "abc123" {
			t.Errorf("expected token abc123, got %q", body.Token)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{
			loginFn: func(string) (string, time.Time, error) {
				return "", time.Time{}, apperrors.ErrInvalidCredentials
			},
		})
		router := gin.New()
		router.POST("/auth/login", h.Login)

		w := performRequest(router, http.MethodPost, "/auth/login", `{"password":"nope"}`, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	newProtected := func(svc *mockAuthService) *gin.Engine {
		router := gin.New()
		router.Use(middleware.AuthMiddleware(svc))
		router.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})
		return router
	}

	t.Run("missing_header", func(t *testing.T) {
		w := performRequest(newProtected(&mockAuthService{}), http.MethodGet, "/ping", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		w := performRequest(newProtected(&mockAuthService{}), http.MethodGet, "/ping", "",
			map[string]string{"Authorization": "Token abc"})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("expired_session", func(t *testing.T) {
		svc := &mockAuthService{
			validateTokenFn: func(string) error { return apperrors.ErrSessionExpired },
		}
		w := performRequest(newProtected(svc), http.MethodGet, "/ping", "",
			map[string]string{"Authorization": "Bearer abc"})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "SESSION_EXPIRED" {
			t.Errorf("expected SESSION_EXPIRED, got %s", code)
		}
	})

	t.Run("valid_token", func(t *testing.T) {
		var seen string
		svc := &mockAuthService{
			validateTokenFn: func(token string) error {
				seen = token
				return nil
			},
		}
		w := performRequest(newProtected(svc), http.MethodGet, "/ping", "",
			map[string]string{"Authorization": "Bearer abc123"})
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if seen != "abc123" {
			t.Errorf("expected token abc123 passed to service, got %q", seen)
		}
	})
}
