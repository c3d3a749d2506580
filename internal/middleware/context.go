package middleware

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims returns the verified claim set the Protected middleware stored
// in context locals for this request.
func Claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	t, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("no token in context")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// UserID extracts the authenticated user's numeric id from the verified
// claims. Handlers must take identity from here, never from
// client-supplied parameters.
func UserID(c *fiber.Ctx) (uint, error) {
	claims, err := Claims(c)
	if err != nil {
		return 0, err
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errors.New("missing sub claim")
	}

	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, errors.New("malformed sub claim")
	}
	return uint(id), nil
}
