package market

import (
	"github.com/dhkim-dev/markethub-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MarketPlugin struct{}

func New() *MarketPlugin {
	return &MarketPlugin{}
}

func (p *MarketPlugin) ID() string { return "market" }

func (p *MarketPlugin) Models() []interface{} {
	return []interface{}{
		&Product{},
		&Like{},
		&ChatRoom{},
		&ChatMessage{},
	}
}

func (p *MarketPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewProductHandler(NewProductService(db), NewChatService(db))

	router.Post("/products", handler.Create)
	router.Get("/products", handler.List)
	router.Get("/products/:id", handler.Get)
	router.Put("/products/:id", handler.Update)
	router.Delete("/products/:id", handler.Delete)

	router.Post("/products/:id/like", handler.ToggleLike)
	router.Get("/likes", handler.LikedProducts)

	router.Post("/products/:id/chat", handler.OpenChat)
	router.Get("/chat/rooms", handler.ChatRooms)
	router.Get("/chat/rooms/:id/messages", handler.Messages)
	router.Post("/chat/rooms/:id/messages", handler.SendMessage)
}
