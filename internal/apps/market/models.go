package market

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusSelling  = "selling"
	StatusReserved = "reserved"
	StatusSold     = "sold"
)

// Product is a marketplace listing. UserID is the owner column every
// mutation is checked against.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Title       string         `gorm:"size:100;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int            `gorm:"not null" json:"price"`
	Location    string         `gorm:"size:100" json:"location"`
	Images      datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"images"`
	Status      string         `gorm:"size:20;not null;default:'selling'" json:"status"`
	Views       int            `gorm:"default:0" json:"views"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like is one user's like on one product; the pair is unique so a
// repeat request toggles instead of stacking.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_likes_user_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRoom links a buyer to a product's seller. One room per
// (product, buyer) pair; repeat requests return the existing room.
type ChatRoom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_chat_rooms_product_buyer" json:"product_id"`
	BuyerID   uint      `gorm:"not null;index;uniqueIndex:idx_chat_rooms_product_buyer" json:"buyer_id"`
	SellerID  uint      `gorm:"not null;index" json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index" json:"room_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// --- DTOs ---

type CreateProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
}

type UpdateProductRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *int      `json:"price"`
	Location    *string   `json:"location"`
	Images      *[]string `json:"images"`
	Status      *string   `json:"status"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

type LikeToggleResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}
