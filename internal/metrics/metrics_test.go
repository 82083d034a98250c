package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/services/:slug", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/api/services/:slug", "200"))
	for _, slug := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/services/"+slug, nil))
	}
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/api/services/:slug", "200"))
	if after-before != 2 {
		t.Fatalf("expected 2 requests on the route pattern, got %v", after-before)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if got := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/boom", "418")); got < 1 {
		t.Fatalf("expected the HTTPError code to be recorded, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	EmailsSent.Inc()

	e := echo.New()
	e.GET("/metrics", Handler())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cybersite_campaign_emails_sent_total") {
		t.Fatalf("metrics output is missing the email counter")
	}
}
