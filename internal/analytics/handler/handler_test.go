package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/platform/httpkit"
	"travel_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextRolesKey, []string{auth.RoleSales})
		c.Next()
	})
	h := New(nil, validator.New())
	engine.GET("/analytics/me", h.Me)
	engine.GET("/analytics/agents/:id", h.Agent)
	return engine
}

func TestRejectsBadInput(t *testing.T) {
	engine := newEngine()
	cases := []string{
		"/analytics/agents/nope",
		"/analytics/me?from=01-06-2026",
		"/analytics/agents/" + uuid.NewString() + "?to=2026-13-01",
	}
	for _, path := range cases {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}
