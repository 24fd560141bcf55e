package httpserver

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func pagination(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}
	return page, (page - 1) * size, size
}

func GetID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// currentUser returns the id the auth middleware stored for this request.
func currentUser(c echo.Context) (uuid.UUID, error) {
	raw, _ := c.Get(authmw.UserIDKey).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad user id in token: %w", err)
	}
	return id, nil
}
