package response

import (
	"errors"
	"net/http"

	apperrors "emergencyreport/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const MissingFieldsMessage = "Missing required fields"

type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SubmitBody struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ReportID string `json:"reportId"`
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func Submitted(c echo.Context, message, reportID string) error {
	return c.JSON(http.StatusOK, SubmitBody{
		Success:  true,
		Message:  message,
		ReportID: reportID,
	})
}

// Error writes err using the service's error shape. Client errors carry only a
// message; server errors add the underlying cause as details.
func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: MissingFieldsMessage})
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body := ErrorBody{Error: appErr.Message}
		if appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
			body.Details = appErr.Err.Error()
		}
		return c.JSON(appErr.Status, body)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, ErrorBody{Error: http.StatusText(httpErr.Code)})
	}

	return c.JSON(http.StatusInternalServerError, ErrorBody{
		Error:   "An error occurred",
		Details: err.Error(),
	})
}

// HTTPErrorHandler routes errors that escape handlers through Error.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if writeErr := Error(c, err); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
