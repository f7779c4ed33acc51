package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// envelope is the shape of every API response: exactly one of Data or Error is set.
type envelope struct {
	Data  any       `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Existing *connection.Connection `json:"existing,omitempty"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Data: data})
}

func statusForCode(code connection.ErrorCode) int {
	switch code {
	case connection.CodeConnectionExists, connection.CodeInvalidTransition:
		return http.StatusConflict
	case connection.CodeNotFound:
		return http.StatusNotFound
	case connection.CodeNotAuthorized:
		return http.StatusForbidden
	case connection.CodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(connection.CodeInvalidRequest)
	case http.StatusForbidden:
		return string(connection.CodeNotAuthorized)
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

// handleError renders every error returned by a handler or middleware.
// Domain errors keep their code; anything unrecognised is an opaque 500.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := &apiError{Code: "INTERNAL", Message: "internal server error"}

	var domainErr *connection.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &domainErr):
		status = statusForCode(domainErr.Code)
		body = &apiError{Code: string(domainErr.Code), Message: domainErr.Message, Existing: domainErr.Existing}
	case errors.Is(err, profile.ErrNotFound):
		status = http.StatusNotFound
		body = &apiError{Code: "PROFILE_NOT_FOUND", Message: err.Error()}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body = &apiError{Code: codeForStatus(status), Message: fmt.Sprint(httpErr.Message)}
	}

	if status >= http.StatusInternalServerError && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"method": c.Request().Method, "path": c.Path()}).WithError(err).Error("request failed")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, envelope{Error: body})
}
