package market

import (
	"encoding/json"
	"errors"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrNotOwner        = errors.New("you do not own this product")
	ErrNotParticipant  = errors.New("you are not part of this chat")
	ErrInvalidStatus   = errors.New("status must be selling, reserved or sold")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrSelfChat        = errors.New("cannot open a chat on your own product")
	ErrMissingFields   = errors.New("title and price are required")
)

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func imagesJSON(images []string) datatypes.JSON {
	if images == nil {
		images = []string{}
	}
	b, _ := json.Marshal(images)
	return datatypes.JSON(b)
}

func validStatus(s string) bool {
	return s == StatusSelling || s == StatusReserved || s == StatusSold
}

func (s *ProductService) Create(userID uint, req CreateProductRequest) (*Product, error) {
	if req.Title == "" || req.Price <= 0 {
		return nil, ErrMissingFields
	}

	product := Product{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Images:      imagesJSON(req.Images),
		Status:      StatusSelling,
	}
	if err := s.db.Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) List(status string, limit, offset int) ([]Product, int64, error) {
	query := s.db.Model(&Product{})
	if status != "" {
		if !validStatus(status) {
			return nil, 0, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []Product
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&products).Error
	return products, total, err
}

// Get returns one product and bumps its view counter.
func (s *ProductService) Get(id uint) (*Product, error) {
	var product Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	// The listing is still useful if the counter bump fails.
	if err := s.db.Model(&product).UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		slog.Warn("failed to bump view counter", "product_id", product.ID, "error", err)
	} else {
		product.Views++
	}
	return &product, nil
}

func (s *ProductService) Update(userID, id uint, req UpdateProductRequest) (*Product, error) {
	if req.Price != nil && *req.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if req.Status != nil && !validStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}

	var product Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.UserID != userID {
		return nil, ErrNotOwner
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Images != nil {
		fields["images"] = imagesJSON(*req.Images)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}

	if len(fields) > 0 {
		if err := s.db.Model(&product).Updates(fields).Error; err != nil {
			return nil, err
		}
		// Re-read so the response reflects the applied columns.
		if err := s.db.First(&product, "id = ?", id).Error; err != nil {
			return nil, err
		}
	}
	return &product, nil
}

func (s *ProductService) Delete(userID, id uint) error {
	var product Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if product.UserID != userID {
		return ErrNotOwner
	}
	return s.db.Delete(&product).Error
}

// ToggleLike likes the product, or removes the like if one exists.
func (s *ProductService) ToggleLike(userID, productID uint) (*LikeToggleResponse, error) {
	if err := s.db.First(&Product{}, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var liked bool
	var like Like
	err := s.db.First(&like, "user_id = ? AND product_id = ?", userID, productID).Error
	switch {
	case err == nil:
		if err := s.db.Delete(&like).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&Like{UserID: userID, ProductID: productID}).Error; err != nil {
			return nil, err
		}
		liked = true
	default:
		return nil, err
	}

	var count int64
	if err := s.db.Model(&Like{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return nil, err
	}
	return &LikeToggleResponse{Liked: liked, LikeCount: count}, nil
}

// LikedProducts lists the products the user has liked, newest like first.
func (s *ProductService) LikedProducts(userID uint) ([]Product, error) {
	var products []Product
	err := s.db.
		Joins("JOIN likes ON likes.product_id = products.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC").
		Find(&products).Error
	return products, err
}

type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// OpenRoom creates (or returns) the room between the caller and the
// product's seller.
func (s *ChatService) OpenRoom(buyerID, productID uint) (*ChatRoom, error) {
	var product Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.UserID == buyerID {
		return nil, ErrSelfChat
	}

	var room ChatRoom
	err := s.db.First(&room, "product_id = ? AND buyer_id = ?", productID, buyerID).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room = ChatRoom{ProductID: productID, BuyerID: buyerID, SellerID: product.UserID}
	if err := s.db.Create(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *ChatService) Rooms(userID uint) ([]ChatRoom, error) {
	var rooms []ChatRoom
	err := s.db.
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

func (s *ChatService) room(userID, roomID uint) (*ChatRoom, error) {
	var room ChatRoom
	if err := s.db.First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.BuyerID != userID && room.SellerID != userID {
		return nil, ErrNotParticipant
	}
	return &room, nil
}

// Messages returns room messages newer than afterID, oldest first, for
// client-side polling.
func (s *ChatService) Messages(userID, roomID, afterID uint) ([]ChatMessage, error) {
	if _, err := s.room(userID, roomID); err != nil {
		return nil, err
	}

	var messages []ChatMessage
	query := s.db.Where("room_id = ?", roomID)
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	err := query.Order("id ASC").Find(&messages).Error
	return messages, err
}

func (s *ChatService) Send(userID, roomID uint, content string) (*ChatMessage, error) {
	if content == "" {
		return nil, errors.New("message content is required")
	}
	if _, err := s.room(userID, roomID); err != nil {
		return nil, err
	}

	message := ChatMessage{RoomID: roomID, SenderID: userID, Content: content}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}
