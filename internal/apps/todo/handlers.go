package todo

import (
	"errors"
	"strconv"

	"github.com/dhkim-dev/markethub-backend/internal/dto"
	"github.com/dhkim-dev/markethub-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type TodoHandler struct {
	service *TodoService
}

func NewTodoHandler(service *TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

func (h *TodoHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}

	var req CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid request body"))
	}

	todo, err := h.service.Create(userID, req)
	if err != nil {
		if errors.Is(err, ErrMissingContent) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to create todo"))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(todo))
}

func (h *TodoHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}

	todos, err := h.service.List(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to list todos"))
	}
	return c.JSON(dto.OK(todos))
}

func (h *TodoHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid id"))
	}

	var req UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid request body"))
	}

	todo, err := h.service.Update(userID, uint(id), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTodoNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		case errors.Is(err, ErrMissingContent):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to update todo"))
	}
	return c.JSON(dto.OK(todo))
}

func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid id"))
	}

	if err := h.service.Delete(userID, uint(id)); err != nil {
		if errors.Is(err, ErrTodoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("failed to delete todo"))
	}
	return c.JSON(dto.OK(fiber.Map{"deleted": id}))
}
