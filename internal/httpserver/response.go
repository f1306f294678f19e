package httpserver

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/middleware/auth"
	"github.com/Skotchmaster/konveksi/internal/service"
)

// respond writes the success envelope: {"success": true, ...payload}.
func respond(c echo.Context, status int, payload echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Validationf("%s must be a positive integer", name)
	}
	return uint(id), nil
}

func queryInt(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// pageParams reads page and size, accepting limit as an alias of size.
func pageParams(c echo.Context) (int, int) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 0)
	if size == 0 {
		size = queryInt(c, "limit", 0)
	}
	return page, size
}

func caller(c echo.Context) (service.Caller, error) {
	id, ok := auth.UserID(c)
	if !ok {
		return service.Caller{}, domain.ErrUnauthenticated
	}
	return service.Caller{UserID: id, Role: auth.Role(c)}, nil
}
