package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

type PhotoHandler struct {
	progressionSvc ProgressionServiceInterface
}

func NewPhotoHandler(progressionSvc ProgressionServiceInterface) *PhotoHandler {
	return &PhotoHandler{progressionSvc: progressionSvc}
}

// @Summary Request photo by chance
// @Description Draws against the character's affinity. Does not consume the daily photo quota.
// @Tags photos
// @Produce json
// @Security Bearer
// @Param characterId path string true "Character ID"
// @Success 200 {object} shared.Response{data=dto.PhotoChanceResponse}
// @Router /api/v1/photos/{characterId}/chance [post]
func (h *PhotoHandler) RequestByChance(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	resp, err := h.progressionSvc.RequestPhotoByChance(c.UserContext(), userID, c.Params("characterId"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Unlock photo with credits
// @Tags photos
// @Accept json
// @Produce json
// @Security Bearer
// @Param characterId path string true "Character ID"
// @Param unlockRequest body dto.UnlockPhotoRequest true "Photo key"
// @Success 200 {object} shared.Response{data=dto.UnlockPhotoResponse}
// @Failure 402 {object} shared.Response{data=shared.InsufficientFundsDetails}
// @Router /api/v1/photos/{characterId}/unlock [post]
func (h *PhotoHandler) Unlock(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.UnlockPhotoRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.progressionSvc.UnlockPhotoWithCredits(c.UserContext(), userID, c.Params("characterId"), req.Photo)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}
