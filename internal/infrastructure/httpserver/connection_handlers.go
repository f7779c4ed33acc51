package httpserver

import (
	"context"
	"net/http"

	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/flinkapp/flink/internal/infrastructure/httpserver/helpers"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// statusResponse reports the relationship between the caller and another user.
// Status is "none" when no record exists.
type statusResponse struct {
	Status     string                 `json:"status"`
	Connection *connection.Connection `json:"connection"`
}

func (s *Server) sendFriendRequest(c echo.Context) error {
	senderID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req connection.SendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid receiver_id")
	}
	if receiverID == senderID {
		return connection.ErrSelfConnection
	}

	// privacy is read server-side; clients cannot choose the initial status
	receiver, err := s.profiles.GetByUserID(c.Request().Context(), receiverID)
	if err != nil {
		return err
	}

	created, err := s.connections.SendFriendRequest(c.Request().Context(), senderID, receiverID, receiver.Private)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, created)
}

func (s *Server) acceptFriendRequest(c echo.Context) error {
	return s.answer(c, s.connections.AcceptFriendRequest)
}

func (s *Server) rejectFriendRequest(c echo.Context) error {
	return s.answer(c, s.connections.RejectFriendRequest)
}

func (s *Server) removeConnection(c echo.Context) error {
	return s.answer(c, s.connections.RemoveConnection)
}

// answer runs a write keyed by the :id path parameter on behalf of the caller.
func (s *Server) answer(c echo.Context, op func(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error)) error {
	actorID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	connectionID, err := helpers.GetUUIDParam(c, "id")
	if err != nil {
		return err
	}
	conn, err := op(c.Request().Context(), connectionID, actorID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, conn)
}

func (s *Server) listConnections(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	list, err := s.connections.GetUserConnections(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list)
}

func (s *Server) listPendingRequests(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	list, err := s.connections.GetPendingRequests(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list)
}

func (s *Server) listSentRequests(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	list, err := s.connections.GetSentRequests(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list)
}

func (s *Server) connectionStats(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	stats, err := s.connections.GetConnectionStats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stats)
}

func (s *Server) connectionStatus(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	otherID, err := helpers.GetUUIDParam(c, "user_id")
	if err != nil {
		return err
	}
	conn, err := s.connections.GetConnectionStatus(c.Request().Context(), userID, otherID)
	if err != nil {
		return err
	}
	resp := statusResponse{Status: "none", Connection: conn}
	if conn != nil {
		resp.Status = conn.Status.String()
	}
	return respond(c, http.StatusOK, resp)
}

// listUserConnections returns another user's friends. Private profiles only
// list friends to the owner and their accepted connections.
func (s *Server) listUserConnections(c echo.Context) error {
	viewerID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	ownerID, err := helpers.GetUUIDParam(c, "id")
	if err != nil {
		return err
	}

	owner, err := s.profiles.GetByUserID(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	d, err := s.visibility.CanViewProfile(c.Request().Context(), viewerID, owner.UserID, owner.Private)
	if err != nil {
		return err
	}
	if !d.CanViewExtendedFields {
		return echo.NewHTTPError(http.StatusForbidden, "profile is private")
	}

	list, err := s.connections.GetUserConnections(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list)
}
