package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"emergencyreport/pkg/errors"
)

func uploadRequest(e *echo.Echo, maxUpload int64, size int) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/submit-report", bytes.NewReader(make([]byte, size)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := UploadLimit(maxUpload, errors.Attachment("File too large. Maximum size is 1MB.", nil))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestUploadLimitPassesBodiesWithinBudget(t *testing.T) {
	e := echo.New()

	rec := uploadRequest(e, 1024*1024, 1024*1024+512)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadLimitAnswersOversizedBodiesAsAttachmentErrors(t *testing.T) {
	e := echo.New()

	rec := uploadRequest(e, 1024*1024, 3*1024*1024)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"File too large. Maximum size is 1MB."}`, rec.Body.String())
}

func TestBodyLimitSize(t *testing.T) {
	assert.Equal(t, "11264K", BodyLimitSize(10*1024*1024))
}
