package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func limitedRequest(e *echo.Echo, rl *RateLimiter, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/submit-report", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := rl.RateLimitMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(3)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, limitedRequest(e, rl, "10.0.0.1").Code)
	}

	rec := limitedRequest(e, rl, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"`+RateLimitMessage+`"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, limitedRequest(e, rl, "10.0.0.2").Code)

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, limitedRequest(e, rl, "10.0.0.1").Code)
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(5)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	limitedRequest(e, rl, "10.0.0.1")
	now = now.Add(time.Hour)
	limitedRequest(e, rl, "10.0.0.2")
	assert.Equal(t, 2, rl.VisitorCount())

	now = now.Add(90 * time.Minute)
	rl.evictIdle()
	assert.Equal(t, 1, rl.VisitorCount())
}
