package market

import (
	"errors"
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to the database named by TEST_DATABASE_DSN, or skips.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping database integration test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := db.AutoMigrate(&Product{}, &Like{}, &ChatRoom{}, &ChatMessage{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		var ids []uint
		db.Unscoped().Model(&Product{}).Where("title LIKE 'market_test_%'").Pluck("id", &ids)
		if len(ids) == 0 {
			return
		}
		var roomIDs []uint
		db.Model(&ChatRoom{}).Where("product_id IN ?", ids).Pluck("id", &roomIDs)
		if len(roomIDs) > 0 {
			db.Where("room_id IN ?", roomIDs).Delete(&ChatMessage{})
		}
		db.Where("product_id IN ?", ids).Delete(&ChatRoom{})
		db.Where("product_id IN ?", ids).Delete(&Like{})
		db.Unscoped().Where("id IN ?", ids).Delete(&Product{})
	})
	return db
}

func seedProduct(t *testing.T, svc *ProductService, ownerID uint, title string) *Product {
	t.Helper()
	product, err := svc.Create(ownerID, CreateProductRequest{Title: "market_test_" + title, Price: 10000})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return product
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestCreateRequiresTitleAndPrice(t *testing.T) {
	svc := NewProductService(nil)

	tests := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing title", CreateProductRequest{Price: 1000}},
		{"zero price", CreateProductRequest{Title: "lamp"}},
		{"negative price", CreateProductRequest{Title: "lamp", Price: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(1, tt.req); !errors.Is(err, ErrMissingFields) {
				t.Errorf("Create() error = %v, want ErrMissingFields", err)
			}
		})
	}
}

func TestUpdateRejectsNonPositivePrice(t *testing.T) {
	svc := NewProductService(nil)

	for _, price := range []int{0, -500} {
		if _, err := svc.Update(1, 1, UpdateProductRequest{Price: intPtr(price)}); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("Update(price=%d) error = %v, want ErrInvalidPrice", price, err)
		}
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := NewProductService(nil)

	if _, err := svc.Update(1, 1, UpdateProductRequest{Status: strPtr("vanished")}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Update() error = %v, want ErrInvalidStatus", err)
	}
}

func TestGetBumpsViewCounter(t *testing.T) {
	svc := NewProductService(openTestDB(t))

	product := seedProduct(t, svc, 1001, "viewed_lamp")

	first, err := svc.Get(product.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := svc.Get(product.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if second.Views != first.Views+1 {
		t.Errorf("Views = %d after %d, want an increment per fetch", second.Views, first.Views)
	}

	if _, err := svc.Get(0); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrProductNotFound", err)
	}
}

func TestUpdateAndDeleteRejectNonOwner(t *testing.T) {
	svc := NewProductService(openTestDB(t))

	const owner, stranger = 1001, 1002
	product := seedProduct(t, svc, owner, "owned_lamp")

	if _, err := svc.Update(stranger, product.ID, UpdateProductRequest{Title: strPtr("market_test_stolen")}); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Update() by non-owner error = %v, want ErrNotOwner", err)
	}
	if err := svc.Delete(stranger, product.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Delete() by non-owner error = %v, want ErrNotOwner", err)
	}

	// The owner still can.
	updated, err := svc.Update(owner, product.ID, UpdateProductRequest{Price: intPtr(8000), Status: strPtr(StatusReserved)})
	if err != nil {
		t.Fatalf("Update() by owner error = %v", err)
	}
	if updated.Price != 8000 || updated.Status != StatusReserved {
		t.Errorf("Update() applied = (%d, %s), want (8000, reserved)", updated.Price, updated.Status)
	}
	if err := svc.Delete(owner, product.ID); err != nil {
		t.Errorf("Delete() by owner error = %v", err)
	}
}

func TestToggleLikeOnAndOff(t *testing.T) {
	svc := NewProductService(openTestDB(t))

	const owner, liker = 1001, 1002
	product := seedProduct(t, svc, owner, "liked_lamp")

	first, err := svc.ToggleLike(liker, product.ID)
	if err != nil {
		t.Fatalf("first ToggleLike() error = %v", err)
	}
	if !first.Liked || first.LikeCount != 1 {
		t.Errorf("first toggle = (%v, %d), want (true, 1)", first.Liked, first.LikeCount)
	}

	second, err := svc.ToggleLike(liker, product.ID)
	if err != nil {
		t.Fatalf("second ToggleLike() error = %v", err)
	}
	if second.Liked || second.LikeCount != 0 {
		t.Errorf("second toggle = (%v, %d), want (false, 0)", second.Liked, second.LikeCount)
	}

	if _, err := svc.ToggleLike(liker, 0); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("ToggleLike(missing product) error = %v, want ErrProductNotFound", err)
	}
}

func TestLikedProductsListsOnlyOwnLikes(t *testing.T) {
	svc := NewProductService(openTestDB(t))

	const owner, liker, other = 1001, 1002, 1003
	lamp := seedProduct(t, svc, owner, "lamp_for_likes")
	chair := seedProduct(t, svc, owner, "chair_for_likes")

	if _, err := svc.ToggleLike(liker, lamp.ID); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if _, err := svc.ToggleLike(other, chair.ID); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	liked, err := svc.LikedProducts(liker)
	if err != nil {
		t.Fatalf("LikedProducts() error = %v", err)
	}
	if len(liked) != 1 || liked[0].ID != lamp.ID {
		t.Errorf("LikedProducts() = %d items, want only the lamp", len(liked))
	}
}

func TestChatRoomReusedPerProductAndBuyer(t *testing.T) {
	db := openTestDB(t)
	products := NewProductService(db)
	chat := NewChatService(db)

	const seller, buyer = 1001, 1002
	product := seedProduct(t, products, seller, "chat_lamp")

	room, err := chat.OpenRoom(buyer, product.ID)
	if err != nil {
		t.Fatalf("OpenRoom() error = %v", err)
	}
	if room.SellerID != seller || room.BuyerID != buyer {
		t.Errorf("room parties = (%d, %d), want (%d, %d)", room.SellerID, room.BuyerID, seller, buyer)
	}

	again, err := chat.OpenRoom(buyer, product.ID)
	if err != nil {
		t.Fatalf("second OpenRoom() error = %v", err)
	}
	if again.ID != room.ID {
		t.Errorf("second OpenRoom() ID = %d, want existing room %d", again.ID, room.ID)
	}

	if _, err := chat.OpenRoom(seller, product.ID); !errors.Is(err, ErrSelfChat) {
		t.Errorf("OpenRoom() on own product error = %v, want ErrSelfChat", err)
	}
}

func TestChatAccessLimitedToParticipants(t *testing.T) {
	db := openTestDB(t)
	products := NewProductService(db)
	chat := NewChatService(db)

	const seller, buyer, stranger = 1001, 1002, 1003
	product := seedProduct(t, products, seller, "private_chat_lamp")

	room, err := chat.OpenRoom(buyer, product.ID)
	if err != nil {
		t.Fatalf("OpenRoom() error = %v", err)
	}
	if _, err := chat.Send(buyer, room.ID, "is this still available?"); err != nil {
		t.Fatalf("Send() by buyer error = %v", err)
	}
	if _, err := chat.Send(seller, room.ID, "yes it is"); err != nil {
		t.Fatalf("Send() by seller error = %v", err)
	}

	if _, err := chat.Messages(stranger, room.ID, 0); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("Messages() by stranger error = %v, want ErrNotParticipant", err)
	}
	if _, err := chat.Send(stranger, room.ID, "let me in"); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("Send() by stranger error = %v, want ErrNotParticipant", err)
	}

	messages, err := chat.Messages(seller, room.ID, 0)
	if err != nil {
		t.Fatalf("Messages() by seller error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Messages() = %d items, want 2", len(messages))
	}

	// Polling with the last seen id returns only what came after.
	newer, err := chat.Messages(buyer, room.ID, messages[0].ID)
	if err != nil {
		t.Fatalf("Messages(after) error = %v", err)
	}
	if len(newer) != 1 || newer[0].Content != "yes it is" {
		t.Errorf("Messages(after) = %d items, want just the reply", len(newer))
	}
}
