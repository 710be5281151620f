// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/honguyenminh/is216-library-manager/model"
)

// Identity extracts the authenticated caller's id and role from the parsed
// token the jwt middleware put in the context.
func Identity(c echo.Context) (string, model.UserRole, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return "", "", errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid jwt claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errors.New("sub missing in claims")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", "", errors.New("role missing in claims")
	}
	return sub, model.UserRole(role), nil
}

// CallerID returns the user id stored by the identity middleware.
func CallerID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

// CallerRole returns the role stored by the identity middleware.
func CallerRole(c echo.Context) model.UserRole {
	r, _ := c.Get("user_role").(model.UserRole)
	return r
}
