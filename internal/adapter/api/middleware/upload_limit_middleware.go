package middleware

import (
	stderrors "errors"
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"emergencyreport/pkg/response"
)

// formHeadroom leaves room for the form fields next to a maximum-size picture.
const formHeadroom = 1024 * 1024

// UploadLimit caps the request body of an upload route. A body over the cap
// is answered with tooLarge through the usual error shape rather than echo's
// bare 413.
func UploadLimit(maxUploadBytes int64, tooLarge error) echo.MiddlewareFunc {
	bodyLimit := echomw.BodyLimit(BodyLimitSize(maxUploadBytes))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := bodyLimit(next)
		return func(c echo.Context) error {
			err := limited(c)
			if err != nil && stderrors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
				return response.Error(c, tooLarge)
			}
			return err
		}
	}
}

// BodyLimitSize renders the byte budget for a picture of maxUploadBytes in
// echo's BodyLimit notation.
func BodyLimitSize(maxUploadBytes int64) string {
	return strconv.FormatInt((maxUploadBytes+formHeadroom)/1024, 10) + "K"
}
