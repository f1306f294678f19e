package auth

import "github.com/labstack/echo/v4"

// RequireAdmin checks the role stored for the token's user. A customer whose
// token claims admin is still refused.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(PolicyAdmin, next)
}
