package todo

import (
	"github.com/dhkim-dev/markethub-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TodoPlugin struct{}

func New() *TodoPlugin {
	return &TodoPlugin{}
}

func (p *TodoPlugin) ID() string { return "todo" }

func (p *TodoPlugin) Models() []interface{} {
	return []interface{}{&Todo{}}
}

func (p *TodoPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewTodoHandler(NewTodoService(db))

	router.Post("/todos", handler.Create)
	router.Get("/todos", handler.List)
	router.Put("/todos/:id", handler.Update)
	router.Delete("/todos/:id", handler.Delete)
}
