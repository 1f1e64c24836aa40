package response

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "emergencyreport/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestErrorClientErrorHasNoDetails(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, apperrors.Validation(MissingFieldsMessage, io.EOF)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())
}

func TestErrorServerErrorHasDetails(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, apperrors.Storage("Failed to submit report", io.ErrShortWrite)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to submit report","details":"short write"}`, rec.Body.String())
}

func TestErrorValidatorErrors(t *testing.T) {
	c, rec := newContext()
	type form struct {
		Email string `validate:"required"`
	}

	err := validator.New().Struct(form{})
	require.Error(t, err)
	require.NoError(t, Error(c, err))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())
}

func TestErrorUnknown(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, io.ErrClosedPipe))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "io: read/write on closed pipe")
}

func TestSubmitted(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Submitted(c, "ok", "1700000000000"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"ok","reportId":"1700000000000"}`, rec.Body.String())
}
