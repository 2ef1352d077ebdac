package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

type CharacterHandler struct {
	catalogSvc CatalogServiceInterface
}

func NewCharacterHandler(catalogSvc CatalogServiceInterface) *CharacterHandler {
	return &CharacterHandler{catalogSvc: catalogSvc}
}

// @Summary List characters
// @Description Active companion characters in display order
// @Tags characters
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.CharacterResponse}
// @Router /api/v1/characters [get]
func (h *CharacterHandler) ListCharacters(c *fiber.Ctx) error {
	characters, err := h.catalogSvc.ListCharacters(c.UserContext())
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, characters)
}

// @Summary Get character
// @Tags characters
// @Produce json
// @Param id path string true "Character ID"
// @Success 200 {object} shared.Response{data=dto.CharacterResponse}
// @Failure 404 {object} shared.Response
// @Router /api/v1/characters/{id} [get]
func (h *CharacterHandler) GetCharacter(c *fiber.Ctx) error {
	character, err := h.catalogSvc.GetCharacter(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, character)
}
