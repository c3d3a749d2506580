package middleware

import (
	"github.com/dhkim-dev/markethub-backend/internal/config"
	"github.com/dhkim-dev/markethub-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// Protected gates a route group on a valid bearer token. A missing
// header, wrong scheme, bad signature or expired token all fail with the
// same 401 before the handler runs; on success the parsed token lands in
// context locals for UserID.
func Protected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(
				dto.Fail("authentication required"))
		},
	})
}
