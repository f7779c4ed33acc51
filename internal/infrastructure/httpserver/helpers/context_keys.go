package helpers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ctxKey string

const (
	keyUserID    ctxKey = "user_id"
	keyUserEmail ctxKey = "user_email"
	keyUserRole  ctxKey = "user_role"
)

func SetUserID(c echo.Context, id uuid.UUID) { c.Set(string(keyUserID), id) }
func GetUserIDRaw(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(string(keyUserID))
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SetUserEmail(c echo.Context, email string) { c.Set(string(keyUserEmail), email) }
func GetUserEmailRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyUserEmail))
	s, ok := v.(string)
	return s, ok
}

func SetUserRole(c echo.Context, role string) { c.Set(string(keyUserRole), role) }
func GetUserRoleRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyUserRole))
	r, ok := v.(string)
	return r, ok
}
