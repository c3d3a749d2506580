package handlers

import (
	"errors"
	"log/slog"
	"net/url"

	"github.com/dhkim-dev/markethub-backend/internal/config"
	"github.com/dhkim-dev/markethub-backend/internal/dto"
	"github.com/dhkim-dev/markethub-backend/internal/middleware"
	"github.com/dhkim-dev/markethub-backend/internal/oauth"
	"github.com/dhkim-dev/markethub-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	providers   map[string]oauth.Provider
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, providers map[string]oauth.Provider, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, providers: providers, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid request body"))
	}

	user, tok, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.Fail(err.Error()))
		}
		if errors.Is(err, services.ErrMissingFields) || errors.Is(err, services.ErrWeakPassword) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		slog.Error("register failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("internal server error"))
	}

	return c.JSON(dto.OK(dto.AuthData{Token: tok, User: user}))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid request body"))
	}

	user, tok, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(err.Error()))
		}
		if errors.Is(err, services.ErrMissingFields) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		slog.Error("login failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("internal server error"))
	}

	return c.JSON(dto.OK(dto.AuthData{Token: tok, User: user}))
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}

	user, err := h.authService.Profile(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		}
		slog.Error("profile fetch failed", "error", err, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("internal server error"))
	}

	return c.JSON(dto.OK(user))
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid request body"))
	}

	user, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail(err.Error()))
		}
		slog.Error("profile update failed", "error", err, "user_id", userID)
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("could not update profile"))
	}

	return c.JSON(dto.OK(user))
}

// OAuthLogin redirects the browser to the provider's consent page.
func (h *AuthHandler) OAuthLogin(c *fiber.Ctx) error {
	provider, ok := h.providers[c.Params("provider")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail("unknown provider"))
	}
	return c.Redirect(provider.LoginURL(c.Query("state")), fiber.StatusFound)
}

// OAuthCallback finishes the authorization-code flow. The browser lands
// here via full-page redirect, so every failure degrades to a redirect
// carrying a message instead of a JSON error.
func (h *AuthHandler) OAuthCallback(c *fiber.Ctx) error {
	provider, ok := h.providers[c.Params("provider")]
	if !ok {
		return h.redirectError(c, "unknown provider")
	}

	code := c.Query("code")
	if code == "" {
		return h.redirectError(c, "authorization code missing")
	}

	info, err := provider.Exchange(c.Context(), code)
	if err != nil {
		slog.Error("oauth exchange failed", "provider", provider.Name(), "error", err)
		return h.redirectError(c, "could not sign in with "+provider.Name())
	}

	_, tok, err := h.authService.FederatedSignIn(info)
	if err != nil {
		slog.Error("federated sign-in failed", "provider", provider.Name(), "error", err)
		return h.redirectError(c, "could not sign in with "+provider.Name())
	}

	return c.Redirect(h.cfg.OAuthSuccessURL+"?token="+url.QueryEscape(tok), fiber.StatusFound)
}

func (h *AuthHandler) redirectError(c *fiber.Ctx, message string) error {
	return c.Redirect(h.cfg.OAuthErrorURL+"?message="+url.QueryEscape(message), fiber.StatusFound)
}
