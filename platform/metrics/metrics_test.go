package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordFollowUp("dead")
	m.RecordCache("exchange_rate", true)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.RecordFollowUp("confirmed_advance_paid")

	engine := gin.New()
	engine.Use(m.Middleware())
	engine.GET("/leads/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leads/abc", nil))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`crm_follow_ups_recorded_total{action="confirmed_advance_paid"} 1`,
		`http_requests_total{method="GET",path="/leads/:id",status="200"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}
