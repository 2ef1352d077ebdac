package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

type ChatHandler struct {
	chatSvc        ChatServiceInterface
	progressionSvc ProgressionServiceInterface
}

func NewChatHandler(chatSvc ChatServiceInterface, progressionSvc ProgressionServiceInterface) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc, progressionSvc: progressionSvc}
}

// @Summary Send message
// @Description Records the message and returns the character's answer. If generation or saving the reply fails, success is false and a fallback reply is returned.
// @Tags chat
// @Accept json
// @Produce json
// @Security Bearer
// @Param characterId path string true "Character ID"
// @Param messageRequest body dto.SendMessageRequest true "Message"
// @Success 200 {object} shared.Response{data=dto.SendMessageResponse}
// @Failure 429 {object} shared.Response{data=shared.DailyLimitDetails}
// @Router /api/v1/chat/{characterId}/messages [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.chatSvc.SendMessage(c.UserContext(), userID, c.Params("characterId"), req.Text)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Get chat history
// @Tags chat
// @Produce json
// @Security Bearer
// @Param characterId path string true "Character ID"
// @Success 200 {object} shared.Response{data=[]dto.ChatMessageResponse}
// @Router /api/v1/chat/{characterId}/history [get]
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	history, err := h.progressionSvc.GetHistory(c.UserContext(), userID, c.Params("characterId"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, history)
}

// @Summary Clear chat history
// @Tags chat
// @Produce json
// @Security Bearer
// @Param characterId path string true "Character ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/chat/{characterId}/history [delete]
func (h *ChatHandler) ClearHistory(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.progressionSvc.ClearHistory(c.UserContext(), userID, c.Params("characterId")); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "History cleared", nil)
}

// @Summary Recalculate sympathy
// @Description Recomputes affinity from stored history with recency weighting
// @Tags chat
// @Produce json
// @Security Bearer
// @Param characterId path string true "Character ID"
// @Success 200 {object} shared.Response{data=dto.RecalculateResponse}
// @Router /api/v1/chat/{characterId}/recalculate [post]
func (h *ChatHandler) RecalculateSympathy(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	characterID := c.Params("characterId")
	sympathy, err := h.progressionSvc.RecalculateSympathy(c.UserContext(), userID, characterID)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, dto.RecalculateResponse{CharacterID: characterID, Sympathy: sympathy})
}
