package apps

import (
	"github.com/dhkim-dev/markethub-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin is one resource app mounted behind the shared auth gate. The
// router it receives is already JWT-protected; each app enforces its own
// ownership rules against the identity the gate attached.
type Plugin interface {
	// ID returns the unique app identifier.
	ID() string

	// Models returns the GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the app's routes on the given Fiber group.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
