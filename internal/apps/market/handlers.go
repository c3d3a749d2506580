package market

import (
	"errors"
	"strconv"

	"github.com/dhkim-dev/markethub-backend/internal/dto"
	"github.com/dhkim-dev/markethub-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	products *ProductService
	chat     *ChatService
}

func NewProductHandler(products *ProductService, chat *ChatService) *ProductHandler {
	return &ProductHandler{products: products, chat: chat}
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid request body"))
	}

	product, err := h.products.Create(userID, req)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to create product"))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(product))
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	products, total, err := h.products.List(c.Query("status"), limit, offset)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to list products"))
	}

	return c.JSON(dto.OK(ProductListResponse{Products: products, Total: total, Limit: limit, Offset: offset}))
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}

	product, err := h.products.Get(id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to fetch product"))
	}
	return c.JSON(dto.OK(product))
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}

	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid request body"))
	}

	product, err := h.products.Update(userID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail(err.Error()))
		case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidPrice):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to update product"))
	}
	return c.JSON(dto.OK(product))
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}

	if err := h.products.Delete(userID, id); err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to delete product"))
	}
	return c.JSON(dto.OK(fiber.Map{"deleted": id}))
}

func (h *ProductHandler) ToggleLike(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}

	result, err := h.products.ToggleLike(userID, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to toggle like"))
	}
	return c.JSON(dto.OK(result))
}

func (h *ProductHandler) LikedProducts(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}

	products, err := h.products.LikedProducts(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to list likes"))
	}
	return c.JSON(dto.OK(products))
}

func (h *ProductHandler) OpenChat(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}

	room, err := h.chat.OpenRoom(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, ErrSelfChat):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to open chat"))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(room))
}

func (h *ProductHandler) ChatRooms(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}

	rooms, err := h.chat.Rooms(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to list chat rooms"))
	}
	return c.JSON(dto.OK(rooms))
}

func (h *ProductHandler) Messages(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}
	roomID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}

	after, _ := strconv.ParseUint(c.Query("after", "0"), 10, 64)

	messages, err := h.chat.Messages(userID, roomID, uint(after))
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to fetch messages"))
	}
	return c.JSON(dto.OK(messages))
}

func (h *ProductHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}
	roomID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid request body"))
	}

	message, err := h.chat.Send(userID, roomID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(message))
}
