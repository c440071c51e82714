//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/handler/middleware"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/pkg/jwt"
	"refund-settlement-engine/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T, svc *jwt.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := middleware.NewAuthMiddleware(usecase.NewTokenValidator(svc))

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	g := r.Group("/api", auth.RequireAuth())
	g.GET("/me", func(c *gin.Context) {
		actor, ok := middleware.GetActor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	g.GET("/admin", auth.RequireRoleAtLeast(user.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	g.GET("/staff", auth.RequireRoleAtLeast(user.RoleOwner), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)
	r := newAuthRouter(t, svc)
	id := uuid.New()
	token, err := svc.GenerateToken(id, user.RoleOwner)
	require.NoError(t, err)

	t.Run("valid token exposes the actor", func(t *testing.T) {
		w := get(r, "/api/me", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.String())
		assert.Contains(t, w.Body.String(), `"role":"owner"`)
	})

	t.Run("missing token", func(t *testing.T) {
		w := get(r, "/api/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Access token required")
	})

	t.Run("forged token", func(t *testing.T) {
		forged, err := jwt.NewService("other", time.Hour).GenerateToken(id, user.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, get(r, "/api/me", forged).Code)
	})

	t.Run("role hierarchy", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, get(r, "/api/staff", token).Code)
		assert.Equal(t, http.StatusForbidden, get(r, "/api/admin", token).Code)

		adminToken, err := svc.GenerateToken(uuid.New(), user.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, get(r, "/api/admin", adminToken).Code)
	})
}

func TestErrorHandler_MapsPrivateErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(errs.NewKind("refund is locked", errs.ErrInvalidState))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errs.New("connection refused"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "refund is locked")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestCustomRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CustomRecovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL"`)
}
