package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// @Summary Telegram login
// @Description Verify Telegram Web App init data and issue an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param authRequest body dto.TelegramAuthRequest true "Raw init data"
// @Success 200 {object} shared.Response{data=dto.AuthResponse}
// @Router /api/v1/auth/telegram [post]
func (h *AuthHandler) TelegramLogin(c *fiber.Ctx) error {
	var req dto.TelegramAuthRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authSvc.AuthenticateTelegram(c.UserContext(), req.InitData)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Login successful", resp)
}
