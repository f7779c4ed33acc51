package httpserver

import (
	"net/http"
	"strconv"

	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/flinkapp/flink/internal/core/domain/visibility"
	"github.com/flinkapp/flink/internal/infrastructure/httpserver/helpers"
	"github.com/labstack/echo/v4"
)

type profileResponse struct {
	Profile    *profile.PublicProfile `json:"profile"`
	Visibility *visibility.Decision   `json:"visibility"`
}

func (s *Server) viewProfile(c echo.Context) error {
	handle := c.Param("handle")
	if handle == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "handle is required")
	}

	pub, decision, err := s.visibility.ViewProfile(c.Request().Context(), helpers.GetViewerID(c), handle)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return echo.NewHTTPError(http.StatusForbidden, "profile is private")
	}
	return respond(c, http.StatusOK, profileResponse{Profile: pub, Visibility: decision})
}

func (s *Server) searchProfiles(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	results, err := s.visibility.SearchProfiles(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, results)
}
